package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"

	"rfp-backend/internal/ingestion"
	"rfp-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// Runner is satisfied by *ingestion.Service
type Runner interface {
	Run(ctx context.Context, opts ingestion.Options) (*ingestion.Report, error)
}

// IngestionHandler triggers a mailbox scan over HTTP
type IngestionHandler struct {
	runner Runner
}

func NewIngestionHandler(runner Runner) *IngestionHandler {
	return &IngestionHandler{runner: runner}
}

// Run scans unseen vendor replies
// POST /api/rfp/ingestion/run
func (h *IngestionHandler) Run(c *gin.Context) {
	var opts ingestion.Options
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if err := opts.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.runner.Run(c.Request.Context(), opts)
	if err != nil && report != nil && isInterrupted(err) {
		// messages already handled stay handled, so the partial report goes back too
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Ingestion interrupted",
			"details": err.Error(),
			"report":  report,
		})
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *IngestionHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/ingestion/run", h.Run)
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
