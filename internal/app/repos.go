package app

import (
	"gorm.io/gorm"

	"github.com/pusdatin/satudata-backend/internal/data/repos"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type Repos struct {
	Bidang   repos.BidangRepo
	Datasets repos.DatasetRepo
	Columns  repos.DatasetColumnRepo
	Files    repos.DatasetFileRepo
	Records  repos.DatasetRecordRepo
	Reviews  repos.DatasetReviewRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Bidang:   repos.NewBidangRepo(db, log),
		Datasets: repos.NewDatasetRepo(db, log),
		Columns:  repos.NewDatasetColumnRepo(db, log),
		Files:    repos.NewDatasetFileRepo(db, log),
		Records:  repos.NewDatasetRecordRepo(db, log),
		Reviews:  repos.NewDatasetReviewRepo(db, log),
	}
}
