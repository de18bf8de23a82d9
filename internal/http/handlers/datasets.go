package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/http/middleware"
	"github.com/pusdatin/satudata-backend/internal/http/response"
	"github.com/pusdatin/satudata-backend/internal/platform/apierr"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
	"github.com/pusdatin/satudata-backend/internal/services"
)

type DatasetHandler struct {
	log      *logger.Logger
	datasets services.DatasetService
}

func NewDatasetHandler(log *logger.Logger, datasets services.DatasetService) *DatasetHandler {
	return &DatasetHandler{log: log.With("handler", "DatasetHandler"), datasets: datasets}
}

type createDatasetRequest struct {
	Kind string `json:"kind"`
	domainagg.DatasetMetadata
	Columns []domainagg.ColumnSpec `json:"columns"`
}

// POST /api/datasets
func (h *DatasetHandler) CreateDataset(c *gin.Context) {
	var req createDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_request", err))
		return
	}
	detail, err := h.datasets.Create(c.Request.Context(), domainagg.CreateDatasetInput{
		Actor:    middleware.ActorFrom(c),
		Kind:     datasets.Kind(strings.ToUpper(strings.TrimSpace(req.Kind))),
		Metadata: req.DatasetMetadata,
		Columns:  req.Columns,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, detail)
}

// GET /api/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	bidangID, err := optionalUUID(c.Query("bidang_id"))
	if err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_bidang_id", err))
		return
	}
	page, size, err := pageParams(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.datasets.List(c.Request.Context(), services.DatasetListInput{
		Actor:    middleware.ActorFrom(c),
		Status:   datasets.Status(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		BidangID: bidangID,
		Search:   c.Query("q"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/datasets/:id
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	detail, err := h.datasets.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// PATCH /api/datasets/:id
func (h *DatasetHandler) UpdateDataset(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	var patch domainagg.MetadataPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_request", err))
		return
	}
	d, err := h.datasets.Update(c.Request.Context(), domainagg.UpdateDatasetInput{
		Actor:     middleware.ActorFrom(c),
		DatasetID: id,
		Patch:     patch,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dataset": d})
}

// GET /api/datasets/:id/columns
func (h *DatasetHandler) ListColumns(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	cols, err := h.datasets.ListColumns(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"columns": cols})
}

// GET /api/datasets/:id/files
func (h *DatasetHandler) ListFiles(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	files, err := h.datasets.ListFiles(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"files": files})
}

// GET /api/datasets/:id/records
func (h *DatasetHandler) ListRecords(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	page, size, err := pageParams(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.datasets.ListRecords(c.Request.Context(), middleware.ActorFrom(c), id, page, size)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/datasets/:id/reviews
func (h *DatasetHandler) ListReviews(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	reviews, err := h.datasets.ListReviews(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviews": reviews})
}

// GET /api/datasets/:id/template
func (h *DatasetHandler) DownloadTemplate(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	name, body, err := h.datasets.TemplateCSV(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

func datasetID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil || id == uuid.Nil {
		response.RespondErr(c, apierr.BadRequest("invalid_id", errors.New("dataset id must be a uuid")))
		return uuid.Nil, false
	}
	return id, true
}

func optionalUUID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

// pageParams reads page and page_size; clamping happens below the handler.
func pageParams(c *gin.Context) (int, int, error) {
	page, err := optionalInt(c.Query("page"))
	if err != nil {
		return 0, 0, apierr.BadRequest("invalid_page", err)
	}
	size, err := optionalInt(c.Query("page_size"))
	if err != nil {
		return 0, 0, apierr.BadRequest("invalid_page_size", err)
	}
	return page, size, nil
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
