package repos

import (
	"github.com/pusdatin/satudata-backend/internal/data/repos/datasets"
	"github.com/pusdatin/satudata-backend/internal/data/repos/org"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type BidangRepo = org.BidangRepo

type DatasetRepo = datasets.DatasetRepo
type DatasetColumnRepo = datasets.DatasetColumnRepo
type DatasetFileRepo = datasets.DatasetFileRepo
type DatasetRecordRepo = datasets.DatasetRecordRepo
type DatasetReviewRepo = datasets.DatasetReviewRepo

type DatasetListFilter = datasets.ListFilter

func NewBidangRepo(db *gorm.DB, log *logger.Logger) BidangRepo { return org.NewBidangRepo(db, log) }

func NewDatasetRepo(db *gorm.DB, log *logger.Logger) DatasetRepo {
	return datasets.NewDatasetRepo(db, log)
}
func NewDatasetColumnRepo(db *gorm.DB, log *logger.Logger) DatasetColumnRepo {
	return datasets.NewDatasetColumnRepo(db, log)
}
func NewDatasetFileRepo(db *gorm.DB, log *logger.Logger) DatasetFileRepo {
	return datasets.NewDatasetFileRepo(db, log)
}
func NewDatasetRecordRepo(db *gorm.DB, log *logger.Logger) DatasetRecordRepo {
	return datasets.NewDatasetRecordRepo(db, log)
}
func NewDatasetReviewRepo(db *gorm.DB, log *logger.Logger) DatasetReviewRepo {
	return datasets.NewDatasetReviewRepo(db, log)
}
