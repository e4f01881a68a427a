package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
	"github.com/sm8ta/webike_workshop_service/internal/core/services"
)

type InventoryHandler struct {
	inventoryService *services.InventoryService
	logger           ports.LoggerPort
	metrics          ports.MetricsPort
}

type ProductResponse struct {
	RepairType *domain.RepairType    `json:"repair_type"`
	Item       *domain.InventoryItem `json:"inventory_item"`
}

type AdjustRequest struct {
	Delta int `json:"delta" example:"-1"`
}

// UpdateInventoryRequest applies only the fields that are set.
type UpdateInventoryRequest struct {
	Quantity       *int             `json:"quantity,omitempty"`
	MinStockLevel  *int             `json:"min_stock_level,omitempty"`
	PurchasePrice  *decimal.Decimal `json:"purchase_price,omitempty"`
	UnlimitedStock *bool            `json:"unlimited_stock,omitempty"`
	GroupID        *uuid.UUID       `json:"group_id,omitempty"`
	ClearGroup     bool             `json:"clear_group,omitempty"`
}

type FieldEditRequest struct {
	Field domain.InventoryField `json:"field" binding:"required" example:"quantity"`
	Value string               `json:"value" example:"12"`
}

func NewInventoryHandler(inventoryService *services.InventoryService, logger ports.LoggerPort, metrics ports.MetricsPort) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
		metrics:          metrics,
	}
}

// @Summary List repair types
// @Tags catalog
// @Security BearerAuth
// @Produce json
// @Param model query string false "Only repair types for this bike model"
// @Success 200 {array} domain.RepairType "Repair types"
// @Failure 400 {object} errorResponse "Unknown model"
// @Router /repair-types [get]
func (h *InventoryHandler) ListRepairTypes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var model *domain.BikeModel
	if q := c.Query("model"); q != "" {
		m := domain.BikeModel(q)
		model = &m
	}
	types, err := h.inventoryService.ListRepairTypes(c.Request.Context(), model)
	if err != nil {
		handleServiceError(c, err, "Failed to list repair types")
		return
	}
	c.JSON(http.StatusOK, types)
}

// @Summary Create a product
// @Description Creates a repair type together with its inventory row
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.Product true "Product"
// @Success 201 {object} ProductResponse "Product created"
// @Failure 400 {object} errorResponse "Invalid product"
// @Failure 409 {object} errorResponse "Name already taken"
// @Router /products [post]
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req domain.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create product", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	rt, item, err := h.inventoryService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, ProductResponse{RepairType: rt, Item: item})
}

// @Summary Delete a repair type
// @Description Removes the repair type, its inventory row and its registrations
// @Tags catalog
// @Security BearerAuth
// @Produce json
// @Param id path string true "Repair type ID"
// @Success 200 {object} successResponse "Repair type deleted"
// @Failure 403 {object} errorResponse "Protected repair type"
// @Router /repair-types/{id} [delete]
func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteProduct(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Failed to delete repair type")
		return
	}
	newSuccessResponse(c, http.StatusOK, "Repair type deleted", nil)
}

// @Summary Stock overview
// @Tags inventory
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.StockLine "Stock per item"
// @Router /inventory [get]
func (h *InventoryHandler) StockOverview(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	lines, err := h.inventoryService.StockOverview(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to load stock overview")
		return
	}
	c.JSON(http.StatusOK, lines)
}

// @Summary Stock status of one item
// @Tags inventory
// @Security BearerAuth
// @Produce json
// @Param id path string true "Inventory item ID"
// @Success 200 {object} domain.StockLine "Stock line"
// @Failure 404 {object} errorResponse "Item not found"
// @Router /inventory/{id} [get]
func (h *InventoryHandler) ItemStatus(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	line, err := h.inventoryService.ItemStatus(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to load item")
		return
	}
	c.JSON(http.StatusOK, line)
}

// @Summary Adjust stock
// @Description Adds delta to the quantity. The result never drops below zero.
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Inventory item ID"
// @Param request body AdjustRequest true "Delta"
// @Success 200 {object} domain.InventoryItem "Item updated"
// @Router /inventory/{id}/adjust [post]
func (h *InventoryHandler) AdjustQuantity(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	item, err := h.inventoryService.AdjustQuantity(c.Request.Context(), id, req.Delta)
	if err != nil {
		handleServiceError(c, err, "Failed to adjust stock")
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary Update an inventory item
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Inventory item ID"
// @Param request body UpdateInventoryRequest true "Fields to change"
// @Success 200 {object} domain.InventoryItem "Item updated"
// @Router /inventory/{id} [put]
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	ctx := c.Request.Context()
	var (
		item *domain.InventoryItem
		err  error
	)
	steps := []func() (*domain.InventoryItem, error){}
	if req.Quantity != nil {
		steps = append(steps, func() (*domain.InventoryItem, error) {
			return h.inventoryService.SetQuantity(ctx, id, *req.Quantity)
		})
	}
	if req.MinStockLevel != nil {
		steps = append(steps, func() (*domain.InventoryItem, error) {
			return h.inventoryService.SetMinStockLevel(ctx, id, *req.MinStockLevel)
		})
	}
	if req.PurchasePrice != nil {
		steps = append(steps, func() (*domain.InventoryItem, error) {
			return h.inventoryService.SetPurchasePrice(ctx, id, *req.PurchasePrice)
		})
	}
	if req.UnlimitedStock != nil {
		steps = append(steps, func() (*domain.InventoryItem, error) {
			return h.inventoryService.SetUnlimited(ctx, id, *req.UnlimitedStock)
		})
	}
	if req.GroupID != nil || req.ClearGroup {
		steps = append(steps, func() (*domain.InventoryItem, error) {
			return h.inventoryService.AssignGroup(ctx, id, req.GroupID)
		})
	}
	if len(steps) == 0 {
		newErrorResponse(c, http.StatusBadRequest, "No fields to update")
		return
	}

	for _, step := range steps {
		if item, err = step(); err != nil {
			handleServiceError(c, err, "Failed to update item")
			return
		}
	}
	c.JSON(http.StatusOK, item)
}

// @Summary Schedule a field edit
// @Description Text-field edits are debounced. Only the last edit of a field is written.
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Inventory item ID"
// @Param request body FieldEditRequest true "Field and raw value"
// @Success 202 {object} successResponse "Edit scheduled"
// @Failure 400 {object} errorResponse "Invalid value"
// @Router /inventory/{id}/fields [patch]
func (h *InventoryHandler) ScheduleEdit(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req FieldEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.inventoryService.ScheduleEdit(id, req.Field, req.Value); err != nil {
		handleServiceError(c, err, "Failed to schedule edit")
		return
	}
	newSuccessResponse(c, http.StatusAccepted, "Edit scheduled", nil)
}

// @Summary List inventory groups
// @Tags inventory
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.InventoryGroup "Groups"
// @Router /inventory/groups [get]
func (h *InventoryHandler) ListGroups(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	groups, err := h.inventoryService.ListGroups(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list groups")
		return
	}
	c.JSON(http.StatusOK, groups)
}

// @Summary Create an inventory group
// @Tags inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.InventoryGroup true "Group"
// @Success 201 {object} domain.InventoryGroup "Group created"
// @Router /inventory/groups [post]
func (h *InventoryHandler) CreateGroup(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req domain.InventoryGroup
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	group, err := h.inventoryService.CreateGroup(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to create group")
		return
	}
	c.JSON(http.StatusCreated, group)
}
