package handlers

import (
	"net/http"
	"strconv"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/services"

	"github.com/gin-gonic/gin"
)

type APIHandler struct {
	userService         services.UserService
	prescriptionService services.PrescriptionService
	extractionService   services.ExtractionService
	matchingService     services.MatchingService
	cartService         services.CartService
	catalogService      services.CatalogService
	checkoutService     services.CheckoutService
}

func NewAPIHandler(
	userService services.UserService,
	prescriptionService services.PrescriptionService,
	extractionService services.ExtractionService,
	matchingService services.MatchingService,
	cartService services.CartService,
	catalogService services.CatalogService,
	checkoutService services.CheckoutService,
) *APIHandler {
	return &APIHandler{
		userService:         userService,
		prescriptionService: prescriptionService,
		extractionService:   extractionService,
		matchingService:     matchingService,
		cartService:         cartService,
		catalogService:      catalogService,
		checkoutService:     checkoutService,
	}
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// Prescription endpoints

func (h *APIHandler) CreatePrescription(c *gin.Context) {
	var prescription models.Prescription
	if err := c.ShouldBindJSON(&prescription); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if err := h.prescriptionService.CreatePrescription(&prescription); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prescription": prescription})
}

func (h *APIHandler) GetPrescription(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	prescription, err := h.prescriptionService.GetPrescriptionByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Prescription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prescription": prescription})
}

func (h *APIHandler) ExtractPrescription(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DocumentURL string `json:"document_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	extracted, err := h.extractionService.ExtractFromDocument(id, req.DocumentURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "extracted_medicines": extracted})
}

// MatchPrescription runs the matcher across every extracted medicine on a
// prescription and returns per-item results plus the availability rollup.
func (h *APIHandler) MatchPrescription(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	results, summary, err := h.prescriptionService.MatchPrescription(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results, "summary": summary})
}

// MatchMedicines matches a caller-supplied medicine list without an uploaded
// prescription, for manual entry and search-as-you-type flows.
func (h *APIHandler) MatchMedicines(c *gin.Context) {
	var req struct {
		Medicines []models.ExtractedMedicine `json:"medicines"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Medicines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	results := h.matchingService.MatchExtractedMedicines(req.Medicines)
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results, "summary": h.matchingService.Summarize(results)})
}

// Cart endpoints

func (h *APIHandler) AddPrescriptionItemsToCart(c *gin.Context) {
	var req struct {
		UserID         uint                               `json:"user_id"`
		PrescriptionID uint                               `json:"prescription_id"`
		Selections     []models.PrescriptionItemSelection `json:"selections"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	added, err := h.cartService.AddPrescriptionItemsToCart(req.UserID, req.PrescriptionID, req.Selections)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": added})
}

func (h *APIHandler) GetCart(c *gin.Context) {
	id, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	items, err := h.cartService.GetActiveCart(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items, "pricing": h.cartService.CalculatePrescriptionPricing(items)})
}

func (h *APIHandler) UpdateCartItemQuantity(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if err := h.cartService.UpdateItemQuantity(id, req.Quantity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *APIHandler) RemoveCartItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ValidateCart re-runs the checkout gate against current prescription state.
func (h *APIHandler) ValidateCart(c *gin.Context) {
	id, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	items, err := h.cartService.GetActiveCart(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "validation": h.cartService.ValidateCartForCheckout(items)})
}

func (h *APIHandler) CheckSubstitution(c *gin.Context) {
	var req struct {
		OriginalID   uint `json:"original_id"`
		SubstituteID uint `json:"substitute_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	check, err := h.cartService.CheckSubstitutionAllowed(req.OriginalID, req.SubstituteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "check": check})
}

// Checkout session endpoints

func (h *APIHandler) StartCheckout(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	sessionID, err := h.checkoutService.StartCheckout(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": sessionID})
}

func (h *APIHandler) GetCheckoutSession(c *gin.Context) {
	session, err := h.checkoutService.GetCheckout(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Checkout session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

func (h *APIHandler) CompleteCheckout(c *gin.Context) {
	order, err := h.checkoutService.CompleteCheckout(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *APIHandler) CancelCheckout(c *gin.Context) {
	if err := h.checkoutService.CancelCheckout(c.Param("session_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Catalog admin endpoints

func (h *APIHandler) ListMedicines(c *gin.Context) {
	medicines, err := h.catalogService.ListMedicines()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medicines": medicines})
}

func (h *APIHandler) GetMedicine(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	medicine, err := h.catalogService.GetMedicine(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Medicine not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medicine": medicine})
}

func (h *APIHandler) CreateMedicine(c *gin.Context) {
	var medicine models.Medicine
	if err := c.ShouldBindJSON(&medicine); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if err := h.catalogService.CreateMedicine(&medicine); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medicine": medicine})
}

func (h *APIHandler) UpdateMedicine(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var medicine models.Medicine
	if err := c.ShouldBindJSON(&medicine); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}
	medicine.ID = id

	if err := h.catalogService.UpdateMedicine(&medicine); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medicine": medicine})
}

func (h *APIHandler) DeleteMedicine(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteMedicine(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// User admin endpoints

func (h *APIHandler) CreateUser(c *gin.Context) {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Role        string `json:"role"`
		Password    string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		IsActive:    true,
	}
	if user.Role == "" {
		user.Role = string(models.RoleCustomer)
	}

	if err := h.userService.CreateUser(user, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *APIHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (h *APIHandler) GetUser(c *gin.Context) {
	id, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *APIHandler) UpdateUser(c *gin.Context) {
	id, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	var req struct {
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phone_number"`
		Role        *string `json:"role"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.userService.UpdateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *APIHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
