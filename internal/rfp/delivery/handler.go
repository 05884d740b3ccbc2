package delivery

import (
	"fmt"
	"net/http"
	"strconv"

	"rfp-backend/internal/rfp/domain"
	"rfp-backend/internal/rfp/usecase"
	"rfp-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RFPHandler handles RFP, proposal, comparison and recommendation requests
type RFPHandler struct {
	rfpUsecase      usecase.RFPUsecase
	proposalUsecase usecase.ProposalUsecase
}

func NewRFPHandler(rfpUsecase usecase.RFPUsecase, proposalUsecase usecase.ProposalUsecase) *RFPHandler {
	return &RFPHandler{
		rfpUsecase:      rfpUsecase,
		proposalUsecase: proposalUsecase,
	}
}

type CreateFromTextRequest struct {
	Text string `json:"text"`
}

type SendRFPRequest struct {
	VendorIDs []uint `json:"vendor_ids"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}

// CreateFromText extracts an RFP from natural language
// POST /api/rfp/create-from-text
func (h *RFPHandler) CreateFromText(c *gin.Context) {
	var req CreateFromTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.rfpUsecase.CreateRFPFromText(c.Request.Context(), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":             "RFP created successfully",
		"rfp":                 result.RFP,
		"extraction_metadata": result.Metadata,
	})
}

// ListRFPs returns RFPs newest first
// GET /api/rfp/rfps?status=draft
func (h *RFPHandler) ListRFPs(c *gin.Context) {
	rfps, err := h.rfpUsecase.ListRFPs(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if rfps == nil {
		rfps = []*domain.RFP{}
	}

	c.JSON(http.StatusOK, gin.H{
		"rfps":  rfps,
		"total": len(rfps),
	})
}

// CreateRFP stores a manually entered RFP
// POST /api/rfp/rfps
func (h *RFPHandler) CreateRFP(c *gin.Context) {
	var req usecase.CreateRFPInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rfp, err := h.rfpUsecase.CreateRFP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, rfp)
}

// GetRFP returns an RFP with its items
// GET /api/rfp/rfps/:id
func (h *RFPHandler) GetRFP(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	rfp, err := h.rfpUsecase.GetRFP(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, rfp)
}

// UpdateRFP PUT /api/rfp/rfps/:id
func (h *RFPHandler) UpdateRFP(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var req usecase.UpdateRFPInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rfp, err := h.rfpUsecase.UpdateRFP(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, rfp)
}

// DeleteRFP DELETE /api/rfp/rfps/:id
func (h *RFPHandler) DeleteRFP(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.rfpUsecase.DeleteRFP(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "RFP deleted successfully"})
}

// SendRFPEmails invites vendors by email
// POST /api/rfp/rfps/:id/send-rfp-emails
func (h *RFPHandler) SendRFPEmails(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var req SendRFPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.rfpUsecase.SendToVendors(c.Request.Context(), id, req.VendorIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "RFP emails sent successfully"
	if len(result.FailedVendors) > 0 {
		message = fmt.Sprintf("Sent %d emails, %d failed", result.EmailsSent, len(result.FailedVendors))
	}

	body := gin.H{
		"message":       message,
		"rfp_id":        result.RFP.ID,
		"rfp_title":     result.RFP.Title,
		"rfp_status":    result.RFP.Status,
		"emails_sent":   result.EmailsSent,
		"total_vendors": result.TotalVendors,
	}
	if len(result.FailedVendors) > 0 {
		body["failed_vendors"] = result.FailedVendors
	}
	c.JSON(http.StatusOK, body)
}

// CloseRFP POST /api/rfp/rfps/:id/close
func (h *RFPHandler) CloseRFP(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	rfp, err := h.rfpUsecase.CloseRFP(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, rfp)
}

// ListProposals returns the proposals of one RFP
// GET /api/rfp/proposals?rfp_id=1
func (h *RFPHandler) ListProposals(c *gin.Context) {
	rfpID, err := strconv.ParseUint(c.Query("rfp_id"), 10, 64)
	if err != nil || rfpID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": "rfp_id query parameter is required"})
		return
	}

	proposals, err := h.proposalUsecase.ListProposals(c.Request.Context(), uint(rfpID))
	if err != nil {
		response.Error(c, err)
		return
	}
	if proposals == nil {
		proposals = []*domain.Proposal{}
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     len(proposals),
	})
}

// CreateProposal records a proposal received outside the mailbox
// POST /api/rfp/proposals
func (h *RFPHandler) CreateProposal(c *gin.Context) {
	var req usecase.CreateProposalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	proposal, err := h.proposalUsecase.CreateProposal(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// GetProposal GET /api/rfp/proposals/:id
func (h *RFPHandler) GetProposal(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalUsecase.GetProposal(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// GetComparison GET /api/rfp/comparison/:rfp_id
func (h *RFPHandler) GetComparison(c *gin.Context) {
	id, ok := response.ParseID(c, "rfp_id")
	if !ok {
		return
	}

	view, err := h.rfpUsecase.GetComparison(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ExportComparison downloads the comparison as a spreadsheet
// GET /api/rfp/comparison/:rfp_id/export
func (h *RFPHandler) ExportComparison(c *gin.Context) {
	id, ok := response.ParseID(c, "rfp_id")
	if !ok {
		return
	}

	view, err := h.rfpUsecase.GetComparison(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := BuildComparisonWorkbook(view)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rfp-%d-comparison.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetRecommendation POST /api/rfp/ai-recommendation/:rfp_id
func (h *RFPHandler) GetRecommendation(c *gin.Context) {
	id, ok := response.ParseID(c, "rfp_id")
	if !ok {
		return
	}

	result, err := h.rfpUsecase.GetRecommendation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes mounts the RFP endpoints on group
func (h *RFPHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/create-from-text", h.CreateFromText)

	rfps := group.Group("/rfps")
	{
		rfps.GET("", h.ListRFPs)
		rfps.POST("", h.CreateRFP)
		rfps.GET("/:id", h.GetRFP)
		rfps.PUT("/:id", h.UpdateRFP)
		rfps.DELETE("/:id", h.DeleteRFP)
		rfps.POST("/:id/send-rfp-emails", h.SendRFPEmails)
		rfps.POST("/:id/close", h.CloseRFP)
	}

	proposals := group.Group("/proposals")
	{
		proposals.GET("", h.ListProposals)
		proposals.POST("", h.CreateProposal)
		proposals.GET("/:id", h.GetProposal)
	}

	group.GET("/comparison/:rfp_id", h.GetComparison)
	group.GET("/comparison/:rfp_id/export", h.ExportComparison)
	group.POST("/ai-recommendation/:rfp_id", h.GetRecommendation)
}
