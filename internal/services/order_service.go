package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"

	"github.com/google/uuid"
)

// workflowStepDef is one row of the canonical forward workflow table. The
// progress view is derived by replaying this table against the order's
// current status and the workflow log.
type workflowStepDef struct {
	Status        models.PrescriptionOrderStatus
	Title         string
	Description   string
	EstimatedTime string
}

var workflowDefinition = []workflowStepDef{
	{models.OrderPlaced, "Order Placed", "Your order has been received", "Just now"},
	{models.OrderPrescriptionReview, "Prescription Review", "Prescription is being checked", "15-30 mins"},
	{models.OrderPharmacistVerification, "Pharmacist Verification", "A licensed pharmacist is verifying your medicines", "30-60 mins"},
	{models.OrderApproved, "Approved", "Your order has been approved", "1 hour"},
	{models.OrderPreparing, "Preparing", "Medicines are being prepared", "1-2 hours"},
	{models.OrderQualityCheck, "Quality Check", "Final quality verification", "2-3 hours"},
	{models.OrderPacked, "Packed", "Your order has been packed", "3-4 hours"},
	{models.OrderDispatched, "Dispatched", "Order handed over for delivery", "4-6 hours"},
	{models.OrderInTransit, "In Transit", "Your order is on the way", "Same day"},
	{models.OrderOutForDelivery, "Out for Delivery", "Delivery partner is nearby", "Within hours"},
	{models.OrderDelivered, "Delivered", "Order delivered successfully", ""},
}

// ErrNotCancellable is returned when an order has moved past the point where
// cancellation is still possible. Handlers match on it to map the refusal to
// a conflict response.
var ErrNotCancellable = errors.New("Order cannot be cancelled at this stage")

// cancellableStatuses lists the states a customer or admin can still cancel
// from. Anything at or past preparing has left the pharmacy queue.
var cancellableStatuses = map[models.PrescriptionOrderStatus]bool{
	models.OrderPlaced:                 true,
	models.OrderPrescriptionReview:     true,
	models.OrderPharmacistVerification: true,
	models.OrderApproved:               true,
}

func statusIndex(status models.PrescriptionOrderStatus) int {
	for i, def := range workflowDefinition {
		if def.Status == status {
			return i
		}
	}
	return -1
}

type CreateOrderRequest struct {
	UserID          uint   `json:"user_id"`
	PrescriptionID  *uint  `json:"prescription_id"`
	CartItemIDs     []uint `json:"cart_item_ids"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryType    string `json:"delivery_type"`
	PaymentStatus   string `json:"payment_status"`
}

type OrderService interface {
	CreatePrescriptionOrder(req CreateOrderRequest) (*models.PrescriptionOrder, error)
	GetOrderByID(id uint) (*models.PrescriptionOrder, error)
	GetOrderItem(itemID uint) (*models.PrescriptionOrderItem, error)
	GetOrdersByUser(userID uint) ([]models.PrescriptionOrder, error)
	GetOrdersByStatus(status models.PrescriptionOrderStatus) ([]models.PrescriptionOrder, error)
	UpdateOrderStatus(orderID uint, status models.PrescriptionOrderStatus, notes string, updatedBy *uint) error
	VerifyPrescriptionOrder(orderID, pharmacistID uint, decision models.VerificationDecision, notes string, itemDecisions []models.ItemVerification) error
	CancelOrder(orderID, actorID uint, reason string) error
	GetOrderWorkflow(orderID uint) (*models.OrderWorkflowView, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	cartService CartService
	userService UserService
	notifier    NotificationService
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	cartService CartService,
	userService UserService,
	notifier NotificationService,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		cartService: cartService,
		userService: userService,
		notifier:    notifier,
	}
}

func (s *orderService) CreatePrescriptionOrder(req CreateOrderRequest) (*models.PrescriptionOrder, error) {
	cartItems, err := s.cartRepo.GetActiveByUser(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for user %d: %w", req.UserID, err)
	}

	selected := cartItems
	if len(req.CartItemIDs) > 0 {
		wanted := make(map[uint]bool, len(req.CartItemIDs))
		for _, id := range req.CartItemIDs {
			wanted[id] = true
		}
		selected = selected[:0]
		for _, item := range cartItems {
			if wanted[item.ID] {
				selected = append(selected, item)
			}
		}
	}
	if len(selected) == 0 {
		return nil, errors.New("no active cart items to order")
	}

	// Checkout gate runs here again: prescription state can change between
	// add-to-cart and order placement.
	validation := s.cartService.ValidateCartForCheckout(selected)
	if !validation.Valid {
		return nil, fmt.Errorf("cart validation failed: %s", strings.Join(validation.Errors, "; "))
	}

	pricing := s.cartService.CalculatePrescriptionPricing(selected)

	order := &models.PrescriptionOrder{
		OrderNumber:          generateOrderNumber(),
		UserID:               req.UserID,
		PrescriptionID:       req.PrescriptionID,
		OrderType:            classifyOrderType(selected),
		Status:               models.OrderPlaced,
		TotalAmount:          pricing.Total,
		PrescriptionDiscount: pricing.PrescriptionDiscount,
		DeliveryCharges:      pricing.DeliveryCharges,
		PaymentStatus:        req.PaymentStatus,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryType:         req.DeliveryType,
		EstimatedDelivery:    estimateDelivery(req.DeliveryType),
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = "pending"
	}
	if order.DeliveryType == "" {
		order.DeliveryType = "standard"
	}

	var cartItemIDs []uint
	for _, item := range selected {
		cartItemIDs = append(cartItemIDs, item.ID)
		itemID := item.ID
		order.Items = append(order.Items, models.PrescriptionOrderItem{
			MedicineID:         item.MedicineID,
			MedicineName:       item.MedicineName,
			PrescriptionItemID: &itemID,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			TotalPrice:         item.UnitPrice * float64(item.Quantity),
			FulfillmentStatus:  models.FulfillmentPending,
		})
	}

	step := &models.OrderWorkflowStep{
		Status: models.OrderPlaced,
		Notes:  "Order placed successfully",
	}
	if err := s.orderRepo.CreateWithWorkflow(order, step, cartItemIDs); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyOrderStatus(order, NotifyStatusUpdate,
			fmt.Sprintf("Order %s placed successfully", order.OrderNumber))
	}
	return order, nil
}

func (s *orderService) GetOrderByID(id uint) (*models.PrescriptionOrder, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrderItem looks one order line up directly, for item-level fulfillment
// tracking after verification.
func (s *orderService) GetOrderItem(itemID uint) (*models.PrescriptionOrderItem, error) {
	return s.orderRepo.GetItem(itemID)
}

func (s *orderService) GetOrdersByUser(userID uint) ([]models.PrescriptionOrder, error) {
	return s.orderRepo.GetByUserID(userID)
}

func (s *orderService) GetOrdersByStatus(status models.PrescriptionOrderStatus) ([]models.PrescriptionOrder, error) {
	return s.orderRepo.GetByStatus(status)
}

func (s *orderService) UpdateOrderStatus(orderID uint, status models.PrescriptionOrderStatus, notes string, updatedBy *uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("order %d not found: %w", orderID, err)
	}

	if err := validateTransition(order.Status, status); err != nil {
		return err
	}

	step := &models.OrderWorkflowStep{Notes: notes, UpdatedBy: updatedBy}
	if err := s.orderRepo.UpdateStatusWithStep(orderID, status, step); err != nil {
		return fmt.Errorf("failed to update order %d status: %w", orderID, err)
	}

	if s.notifier != nil {
		order.Status = status
		notifyType := NotifyStatusUpdate
		if status == models.OrderInTransit || status == models.OrderOutForDelivery || status == models.OrderDelivered {
			notifyType = NotifyDeliveryUpdate
		}
		s.notifier.NotifyOrderStatus(order, notifyType,
			fmt.Sprintf("Order %s is now %s", order.OrderNumber, status))
	}
	return nil
}

func (s *orderService) VerifyPrescriptionOrder(orderID, pharmacistID uint, decision models.VerificationDecision, notes string, itemDecisions []models.ItemVerification) error {
	if err := s.userService.ValidateUserRole(pharmacistID, models.RolePharmacist); err != nil {
		return fmt.Errorf("verification denied: %w", err)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("order %d not found: %w", orderID, err)
	}
	switch order.Status {
	case models.OrderPlaced, models.OrderPrescriptionReview, models.OrderPharmacistVerification:
	default:
		return fmt.Errorf("order is not awaiting verification (status: %s)", order.Status)
	}

	// requires_substitution still resolves to approved: substitution is a
	// form of approval, not rejection.
	overall := models.OrderApproved
	if decision == models.DecisionRejected {
		overall = models.OrderRejected
	}

	itemsByID := make(map[uint]*models.PrescriptionOrderItem, len(order.Items))
	for i := range order.Items {
		itemsByID[order.Items[i].ID] = &order.Items[i]
	}

	var updatedItems []models.PrescriptionOrderItem
	for _, d := range itemDecisions {
		item, ok := itemsByID[d.OrderItemID]
		if !ok {
			return fmt.Errorf("order item %d does not belong to order %d", d.OrderItemID, orderID)
		}

		if d.SubstituteMedicineID != nil {
			check, err := s.cartService.CheckSubstitutionAllowed(item.MedicineID, *d.SubstituteMedicineID)
			if err != nil {
				return fmt.Errorf("substitution check failed for item %d: %w", d.OrderItemID, err)
			}
			if !check.Allowed {
				return fmt.Errorf("substitution not allowed for item %d: %s", d.OrderItemID, check.Reason)
			}
			item.Substituted = true
			item.SubstituteMedicineID = d.SubstituteMedicineID
			item.SubstituteReason = d.SubstituteReason
		}

		item.FulfillmentStatus = d.FulfillmentStatus
		item.PharmacistNotes = d.Notes
		updatedItems = append(updatedItems, *item)
	}

	itemsJSON, err := json.Marshal(itemDecisions)
	if err != nil {
		return fmt.Errorf("failed to encode verification decisions: %w", err)
	}
	verification := &models.PrescriptionVerification{
		OrderID:      orderID,
		PharmacistID: pharmacistID,
		Decision:     decision,
		Notes:        notes,
		ItemsJSON:    string(itemsJSON),
	}

	order.Status = overall
	order.PharmacistVerified = overall == models.OrderApproved
	order.PharmacistVerifiedBy = &pharmacistID
	order.PharmacistNotes = notes

	stepNotes := fmt.Sprintf("Pharmacist verification: %s", decision)
	if notes != "" {
		stepNotes = stepNotes + " - " + notes
	}
	step := &models.OrderWorkflowStep{Status: overall, Notes: stepNotes, UpdatedBy: &pharmacistID}

	if err := s.orderRepo.ApplyVerification(order, updatedItems, verification, step); err != nil {
		return fmt.Errorf("failed to apply verification for order %d: %w", orderID, err)
	}

	if s.notifier != nil {
		message := fmt.Sprintf("Order %s has been approved by the pharmacist", order.OrderNumber)
		if overall == models.OrderRejected {
			message = fmt.Sprintf("Order %s was rejected during pharmacist verification", order.OrderNumber)
		}
		s.notifier.NotifyOrderStatus(order, NotifyStatusUpdate, message)
	}
	return nil
}

func (s *orderService) CancelOrder(orderID, actorID uint, reason string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("order %d not found: %w", orderID, err)
	}

	if !cancellableStatuses[order.Status] {
		return ErrNotCancellable
	}

	actor, err := s.userService.GetUserByID(actorID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", actorID, err)
	}
	if actor.Role != string(models.RoleAdmin) && order.UserID != actorID {
		return errors.New("insufficient permissions to cancel this order")
	}

	notes := "Order cancelled"
	if reason != "" {
		notes = "Order cancelled: " + reason
	}
	step := &models.OrderWorkflowStep{Notes: notes, UpdatedBy: &actorID}
	if err := s.orderRepo.UpdateStatusWithStep(orderID, models.OrderCancelled, step); err != nil {
		return fmt.Errorf("failed to cancel order %d: %w", orderID, err)
	}

	if s.notifier != nil {
		order.Status = models.OrderCancelled
		s.notifier.NotifyOrderStatus(order, NotifyCancellation,
			fmt.Sprintf("Order %s has been cancelled", order.OrderNumber))
	}
	return nil
}

// GetOrderWorkflow derives the progress view. It is never stored: the view
// always reflects the current status plus whatever log entries exist.
func (s *orderService) GetOrderWorkflow(orderID uint) (*models.OrderWorkflowView, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("order %d not found: %w", orderID, err)
	}

	steps, err := s.orderRepo.GetWorkflowSteps(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow log for order %d: %w", orderID, err)
	}
	logged := make(map[models.PrescriptionOrderStatus]models.OrderWorkflowStep, len(steps))
	for _, step := range steps {
		if _, ok := logged[step.Status]; !ok {
			logged[step.Status] = step
		}
	}

	currentIdx := statusIndex(order.Status)

	view := &models.OrderWorkflowView{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CurrentStatus: order.Status,
	}
	for i, def := range workflowDefinition {
		viewStep := models.OrderWorkflowViewStep{
			Status:        def.Status,
			Title:         def.Title,
			Description:   def.Description,
			EstimatedTime: def.EstimatedTime,
			Completed:     currentIdx >= 0 && i <= currentIdx,
			Active:        currentIdx >= 0 && i == currentIdx,
		}
		if entry, ok := logged[def.Status]; ok {
			ts := entry.CreatedAt
			viewStep.Timestamp = &ts
			viewStep.Notes = entry.Notes
		}
		view.Steps = append(view.Steps, viewStep)
	}
	return view, nil
}

// validateTransition rejects impossible status moves. Forward moves follow
// the canonical table order; side branches have their own entry conditions.
func validateTransition(from, to models.PrescriptionOrderStatus) error {
	if from == to {
		return fmt.Errorf("order is already %s", from)
	}

	switch to {
	case models.OrderCancelled:
		if !cancellableStatuses[from] {
			return ErrNotCancellable
		}
		return nil
	case models.OrderRefunded:
		if !cancellableStatuses[from] && from != models.OrderCancelled && from != models.OrderRejected {
			return fmt.Errorf("order cannot be refunded from status %s", from)
		}
		return nil
	case models.OrderRejected:
		if from != models.OrderPharmacistVerification && from != models.OrderPrescriptionReview {
			return fmt.Errorf("order cannot be rejected from status %s", from)
		}
		return nil
	}

	fromIdx, toIdx := statusIndex(from), statusIndex(to)
	if fromIdx < 0 {
		return fmt.Errorf("order in terminal status %s cannot move to %s", from, to)
	}
	if toIdx < 0 || toIdx <= fromIdx {
		return fmt.Errorf("invalid status transition from %s to %s", from, to)
	}
	return nil
}

func classifyOrderType(items []models.PrescriptionCartItem) models.OrderType {
	prescription := 0
	for _, item := range items {
		if item.PrescriptionID != nil {
			prescription++
		}
	}
	switch {
	case prescription == 0:
		return models.OrderTypeRegular
	case prescription == len(items):
		return models.OrderTypePrescription
	default:
		return models.OrderTypeMixed
	}
}

func generateOrderNumber() string {
	return "OM" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func estimateDelivery(deliveryType string) *time.Time {
	hours := 72
	if deliveryType == "express" {
		hours = 24
	}
	eta := time.Now().Add(time.Duration(hours) * time.Hour)
	return &eta
}
