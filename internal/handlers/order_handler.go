package handlers

import (
	"errors"
	"net/http"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	order, err := h.orderService.CreatePrescriptionOrder(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) GetOrdersByUser(c *gin.Context) {
	id, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	orders, err := h.orderService.GetOrdersByUser(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

func (h *OrderHandler) GetOrdersByStatus(c *gin.Context) {
	status := models.PrescriptionOrderStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "status query parameter required"})
		return
	}

	orders, err := h.orderService.GetOrdersByStatus(status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status    models.PrescriptionOrderStatus `json:"status"`
		Notes     string                         `json:"notes"`
		UpdatedBy *uint                          `json:"updated_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if err := h.orderService.UpdateOrderStatus(id, req.Status, req.Notes, req.UpdatedBy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *OrderHandler) VerifyOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		PharmacistID uint                        `json:"pharmacist_id"`
		Decision     models.VerificationDecision `json:"decision"`
		Notes        string                      `json:"notes"`
		Items        []models.ItemVerification   `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if err := h.orderService.VerifyPrescriptionOrder(id, req.PharmacistID, req.Decision, req.Notes, req.Items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ActorID uint   `json:"actor_id"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if err := h.orderService.CancelOrder(id, req.ActorID, req.Reason); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrNotCancellable) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *OrderHandler) GetOrderItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	item, err := h.orderService.GetOrderItem(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Order item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (h *OrderHandler) GetOrderWorkflow(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	view, err := h.orderService.GetOrderWorkflow(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "workflow": view})
}
