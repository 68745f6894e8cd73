package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/diagramkit/diagram"
	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/export"
	"github.com/kbukum/diagramkit/server"
)

type exportRequest struct {
	Code    string         `json:"code"`
	Options export.Options `json:"options"`
}

// Download exports and streams the artifact as an attachment.
func (h *Handler) Download(c *gin.Context) {
	var req exportRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Code == "" {
		h.fail(c, noCode())
		return
	}

	res, err := h.deps.Exporter.Export(c.Request.Context(), req.Code, req.Options)
	if err != nil {
		h.fail(c, err)
		return
	}
	data, err := base64.StdEncoding.DecodeString(res.Data)
	if err != nil {
		h.fail(c, apperrors.Internal(err))
		return
	}
	metadata, err := json.Marshal(res.Metadata)
	if err != nil {
		h.fail(c, apperrors.Internal(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Header("X-Export-Metadata", string(metadata))
	c.Data(http.StatusOK, res.ContentType, data)
}

// Presets lists formats, themes and quality presets.
func (h *Handler) Presets(c *gin.Context) {
	server.RespondOK(c, h.deps.Exporter.Presets())
}

type estimateRequest struct {
	Format  diagram.Format `json:"format"`
	Quality string         `json:"quality"`
}

// Estimate returns the approximate size of an export.
func (h *Handler) Estimate(c *gin.Context) {
	req := estimateRequest{Format: diagram.FormatPNG, Quality: "high"}
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	server.RespondOK(c, export.EstimateSize(req.Format, req.Quality))
}

type batchRequest struct {
	Code    string           `json:"code"`
	Configs []export.Options `json:"configs" validate:"max=20"`
}

// Batch exports one diagram in several configurations.
func (h *Handler) Batch(c *gin.Context) {
	var req batchRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Code == "" {
		h.fail(c, noCode())
		return
	}
	if req.Configs == nil {
		h.fail(c, apperrors.New(apperrors.ErrCodeMissingField, "Export configurations required", http.StatusBadRequest).
			WithDetail("field", "configs"))
		return
	}
	server.RespondOK(c, gin.H{"results": h.deps.Exporter.BatchExport(c.Request.Context(), req.Code, req.Configs)})
}

// Preview exports as SVG for the preview pane.
func (h *Handler) Preview(c *gin.Context) {
	var req exportRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Code == "" {
		h.fail(c, noCode())
		return
	}
	res, err := h.deps.Exporter.Preview(c.Request.Context(), req.Code, req.Options)
	if err != nil {
		h.fail(c, err)
		return
	}
	server.RespondOK(c, gin.H{
		"success":     true,
		"data":        res.Data,
		"contentType": res.ContentType,
		"metadata":    res.Metadata,
	})
}
