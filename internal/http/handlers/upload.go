package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pusdatin/satudata-backend/internal/http/middleware"
	"github.com/pusdatin/satudata-backend/internal/http/response"
	"github.com/pusdatin/satudata-backend/internal/platform/apierr"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
	"github.com/pusdatin/satudata-backend/internal/services"
)

// multipartOverhead is allowed on top of the file limit for form boundaries and fields.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	log      *logger.Logger
	uploads  services.DatasetUploadService
	maxBytes int64
}

func NewUploadHandler(log *logger.Logger, uploads services.DatasetUploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{log: log.With("handler", "UploadHandler"), uploads: uploads, maxBytes: maxBytes}
}

// POST /api/datasets/:id/files
func (h *UploadHandler) UploadFile(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondErr(c, apierr.New(http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Errorf("upload exceeds %d bytes", h.maxBytes)))
			return
		}
		response.RespondErr(c, apierr.BadRequest("invalid_multipart_form", errors.New(`multipart field "file" is required`)))
		return
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		response.RespondErr(c, apierr.New(http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Errorf("upload exceeds %d bytes", h.maxBytes)))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_multipart_form", err))
		return
	}
	defer f.Close()

	res, err := h.uploads.Upload(c.Request.Context(), middleware.ActorFrom(c), id, services.UploadedFileInfo{
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		SizeBytes:    fh.Size,
		Reader:       f,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, res)
}
