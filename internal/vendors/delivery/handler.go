package delivery

import (
	"net/http"

	"rfp-backend/internal/vendors/repository"
	"rfp-backend/internal/vendors/usecase"
	"rfp-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// VendorHandler handles vendor directory HTTP requests
type VendorHandler struct {
	vendorUsecase usecase.VendorUsecase
}

func NewVendorHandler(vendorUsecase usecase.VendorUsecase) *VendorHandler {
	return &VendorHandler{
		vendorUsecase: vendorUsecase,
	}
}

// ListVendors returns vendors, optionally filtered
// GET /api/rfp/vendors?name=dell&email=dell.com
func (h *VendorHandler) ListVendors(c *gin.Context) {
	vendors, err := h.vendorUsecase.ListVendors(c.Request.Context(), repository.ListFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vendors": vendors,
		"total":   len(vendors),
	})
}

// CreateVendor registers a vendor
// POST /api/rfp/vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req usecase.VendorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	vendor, err := h.vendorUsecase.CreateVendor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, vendor)
}

// GetVendor returns one vendor
// GET /api/rfp/vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	vendor, err := h.vendorUsecase.GetVendor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, vendor)
}

// UpdateVendor changes name, email or contact person
// PUT /api/rfp/vendors/:id
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var req usecase.VendorUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	vendor, err := h.vendorUsecase.UpdateVendor(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, vendor)
}

// DeleteVendor removes a vendor and its proposals
// DELETE /api/rfp/vendors/:id
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.vendorUsecase.DeleteVendor(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully"})
}

// RegisterRoutes mounts the vendor endpoints on group
func (h *VendorHandler) RegisterRoutes(group *gin.RouterGroup) {
	vendors := group.Group("/vendors")
	{
		vendors.GET("", h.ListVendors)
		vendors.POST("", h.CreateVendor)
		vendors.GET("/:id", h.GetVendor)
		vendors.PUT("/:id", h.UpdateVendor)
		vendors.DELETE("/:id", h.DeleteVendor)
	}
}
