package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/http/middleware"
	"github.com/pusdatin/satudata-backend/internal/http/response"
	"github.com/pusdatin/satudata-backend/internal/platform/apierr"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
	"github.com/pusdatin/satudata-backend/internal/services"
)

type LifecycleHandler struct {
	log      *logger.Logger
	datasets services.DatasetService
}

func NewLifecycleHandler(log *logger.Logger, datasets services.DatasetService) *LifecycleHandler {
	return &LifecycleHandler{log: log.With("handler", "LifecycleHandler"), datasets: datasets}
}

type transitionRequest struct {
	Reason string `json:"reason"`
}

func (h *LifecycleHandler) Submit(c *gin.Context)         { h.transition(c, datasets.OpSubmit) }
func (h *LifecycleHandler) Revise(c *gin.Context)         { h.transition(c, datasets.OpRevise) }
func (h *LifecycleHandler) ApproveKabid(c *gin.Context)   { h.transition(c, datasets.OpApproveKabid) }
func (h *LifecycleHandler) RejectKabid(c *gin.Context)    { h.transition(c, datasets.OpRejectKabid) }
func (h *LifecycleHandler) VerifyPusdatin(c *gin.Context) { h.transition(c, datasets.OpVerifyPusdatin) }
func (h *LifecycleHandler) RejectPusdatin(c *gin.Context) { h.transition(c, datasets.OpRejectPusdatin) }

func (h *LifecycleHandler) transition(c *gin.Context, op datasets.Operation) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	var req transitionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondErr(c, apierr.BadRequest("invalid_request", err))
			return
		}
	}
	res, err := h.datasets.Transition(c.Request.Context(), op, domainagg.TransitionInput{
		Actor:     middleware.ActorFrom(c),
		DatasetID: id,
		Reason:    req.Reason,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"dataset_id":  res.DatasetID,
		"operation":   res.Operation,
		"from_status": res.FromStatus,
		"status":      res.ToStatus,
		"review_id":   res.ReviewID,
		"at":          res.At,
	})
}

// GET /api/queues/kabid
func (h *LifecycleHandler) KabidQueue(c *gin.Context) {
	in, ok := queueInput(c)
	if !ok {
		return
	}
	out, err := h.datasets.KabidQueue(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, queueBody(out))
}

// GET /api/queues/pusdatin
func (h *LifecycleHandler) PusdatinQueue(c *gin.Context) {
	in, ok := queueInput(c)
	if !ok {
		return
	}
	out, err := h.datasets.PusdatinQueue(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, queueBody(out))
}

func queueInput(c *gin.Context) (domainagg.QueueInput, bool) {
	bidangID, err := optionalUUID(c.Query("bidang_id"))
	if err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_bidang_id", err))
		return domainagg.QueueInput{}, false
	}
	page, size, err := pageParams(c)
	if err != nil {
		response.RespondErr(c, err)
		return domainagg.QueueInput{}, false
	}
	return domainagg.QueueInput{
		Actor:    middleware.ActorFrom(c),
		Filter:   domainagg.QueueFilter{Search: strings.TrimSpace(c.Query("q")), BidangID: bidangID},
		Page:     page,
		PageSize: size,
	}, true
}

func queueBody(p domainagg.QueuePage) gin.H {
	return gin.H{
		"items":     p.Items,
		"total":     p.Total,
		"page":      p.Page,
		"page_size": p.PageSize,
	}
}
