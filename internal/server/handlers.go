package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/ingest"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handlers struct {
	uploader  Uploader
	analyzer  Analyzer
	exporter  Exporter
	assistant Assistant
	db        Pinger
	maxBytes  int64
	logger    *zap.Logger
}

type UploadResponse struct {
	Message string `json:"message"`
	*ingest.Result
}

type StartAnalysisRequest struct {
	ForestID string `json:"forest_id"`
}

type ChatRequest struct {
	Message  string `json:"message"`
	ForestID string `json:"forest_id,omitempty"`
}

// Upload accepts a multipart "file" and an optional "forest_id" form value.
func (h *Handlers) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		RespondError(c, common.InputRejected("No file part", err))
		return
	}
	forestID, err := optionalUUID(c.PostForm("forest_id"), "forest_id")
	if err != nil {
		RespondError(c, err)
		return
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		RespondError(c, common.InputRejected(fmt.Sprintf("File exceeds the %d byte limit", h.maxBytes), nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		RespondError(c, common.InputRejected("Failed to read upload", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		RespondError(c, common.InputRejected("Failed to read upload", err))
		return
	}

	res, err := h.uploader.Ingest(c.Request.Context(), ingest.Request{
		Filename: fh.Filename,
		Data:     data,
		ForestID: forestID,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, UploadResponse{Message: "File processed successfully", Result: res})
}

// StartAnalysis answers 422 with the completeness report when data is insufficient.
func (h *Handlers) StartAnalysis(c *gin.Context) {
	var req StartAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, common.InputRejected("Invalid request body", err))
		return
	}
	forestID, err := requiredUUID(req.ForestID, "forest_id")
	if err != nil {
		RespondError(c, err)
		return
	}

	out, err := h.analyzer.Start(c.Request.Context(), forestID)
	if err != nil {
		RespondError(c, err)
		return
	}
	if out.Status == constants.AnalysisStatusInsufficient {
		c.JSON(http.StatusUnprocessableEntity, out)
		return
	}
	RespondOK(c, out)
}

func (h *Handlers) ListAnalyses(c *gin.Context) {
	forestID, err := requiredUUID(c.Param("id"), "forest id")
	if err != nil {
		RespondError(c, err)
		return
	}
	list, err := h.analyzer.History(c.Request.Context(), forestID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"forest_id": forestID, "analyses": list})
}

func (h *Handlers) ExportAnalyses(c *gin.Context) {
	forestID, err := requiredUUID(c.Param("id"), "forest id")
	if err != nil {
		RespondError(c, err)
		return
	}
	data, err := h.exporter.ExportAnalysesXLSX(c.Request.Context(), forestID)
	if err != nil {
		RespondError(c, err)
		return
	}
	name := fmt.Sprintf("analyses-%s.xlsx", forestID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, common.InputRejected("Invalid request body", err))
		return
	}
	forestID, err := optionalUUID(req.ForestID, "forest_id")
	if err != nil {
		RespondError(c, err)
		return
	}
	ans, err := h.assistant.Ask(c.Request.Context(), req.Message, forestID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, ans)
}

func (h *Handlers) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context(), 2*time.Second); err != nil {
			h.logger.Warn("healthz.db.failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	RespondOK(c, gin.H{"status": "ok"})
}

func requiredUUID(raw, name string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, common.InputRejected(name+" is required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.InputRejected(name+" must be a UUID", err)
	}
	return id, nil
}

func optionalUUID(raw, name string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := requiredUUID(raw, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
