package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
)

type orderTestEnv struct {
	cartRepo  *fakeCartRepo
	prescRepo *fakePrescriptionRepo
	orderRepo *fakeOrderRepo
	notifier  *fakeNotifier
	svc       OrderService
}

func newOrderTestEnv() *orderTestEnv {
	cartRepo := newFakeCartRepo()
	prescRepo := newFakePrescriptionRepo()
	orderRepo := newFakeOrderRepo(cartRepo, prescRepo)
	medicineRepo := &fakeMedicineRepo{
		medicines: []models.Medicine{
			{ID: 1, Name: "Amoxicillin 500mg", GenericName: "Amoxicillin", TherapeuticClass: "Antibiotic", SalePrice: 95, StockQty: 45, PrescriptionRequired: true},
			{ID: 2, Name: "Mox 500", GenericName: "Amoxicillin", TherapeuticClass: "Antibiotic", SalePrice: 80, StockQty: 60, PrescriptionRequired: true},
			{ID: 3, Name: "Glycomet 500", GenericName: "Metformin", TherapeuticClass: "Antidiabetic", SalePrice: 38, StockQty: 150, PrescriptionRequired: true},
		},
	}
	userRepo := newFakeUserRepo(
		&models.User{ID: 7, Username: "asha", Role: string(models.RoleCustomer)},
		&models.User{ID: 8, Username: "ravi", Role: string(models.RoleCustomer)},
		&models.User{ID: 20, Username: "pharmacist", Role: string(models.RolePharmacist)},
		&models.User{ID: 30, Username: "admin", Role: string(models.RoleAdmin)},
	)
	cartService := NewCartService(cartRepo, medicineRepo, prescRepo, nil, 5.0, 40.0, 200.0)
	notifier := &fakeNotifier{}
	svc := NewOrderService(orderRepo, cartRepo, cartService, NewUserService(userRepo), notifier)

	return &orderTestEnv{
		cartRepo:  cartRepo,
		prescRepo: prescRepo,
		orderRepo: orderRepo,
		notifier:  notifier,
		svc:       svc,
	}
}

// placeOrder seeds a verified prescription with one cart item and places an
// order for user 7.
func (env *orderTestEnv) placeOrder(t *testing.T) *models.PrescriptionOrder {
	t.Helper()
	env.prescRepo.Create(validPrescription(1, 7))
	env.cartRepo.Create(&models.PrescriptionCartItem{
		UserID:               7,
		MedicineID:           1,
		MedicineName:         "Amoxicillin 500mg",
		Quantity:             2,
		UnitPrice:            95,
		Status:               string(models.CartItemActive),
		PrescriptionID:       uintPtr(1),
		RequiresPrescription: true,
	})

	order, err := env.svc.CreatePrescriptionOrder(CreateOrderRequest{
		UserID:          7,
		PrescriptionID:  uintPtr(1),
		DeliveryAddress: "12 MG Road, Kurnool",
	})
	if err != nil {
		t.Fatalf("failed to place order: %v", err)
	}
	return order
}

func (env *orderTestEnv) setStatus(orderID uint, status models.PrescriptionOrderStatus) {
	env.orderRepo.orders[orderID].Status = status
}

func TestCreatePrescriptionOrder(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)

	if order.Status != models.OrderPlaced {
		t.Errorf("status: got %s, want placed", order.Status)
	}
	if !strings.HasPrefix(order.OrderNumber, "OM") || len(order.OrderNumber) != 12 {
		t.Errorf("bad order number %q", order.OrderNumber)
	}
	if order.OrderType != models.OrderTypePrescription {
		t.Errorf("order type: got %s, want prescription", order.OrderType)
	}
	if len(order.Items) != 1 || order.Items[0].TotalPrice != 190 {
		t.Errorf("unexpected items: %+v", order.Items)
	}
	// 190 subtotal, 5% prescription discount, 40 delivery under the threshold
	if order.TotalAmount != 220.5 {
		t.Errorf("total: got %v, want 220.5", order.TotalAmount)
	}

	// Placement consumes the cart and moves the prescription along.
	active, _ := env.cartRepo.GetActiveByUser(7)
	if len(active) != 0 {
		t.Errorf("cart items must be marked ordered, %d still active", len(active))
	}
	prescription, _ := env.prescRepo.GetByID(1)
	if prescription.Status != string(models.PrescriptionProcessing) {
		t.Errorf("prescription status: got %s, want processing", prescription.Status)
	}
	if prescription.OrderID == nil || *prescription.OrderID != order.ID {
		t.Error("prescription must link back to the order")
	}

	steps := env.orderRepo.stepsFor(order.ID)
	if len(steps) != 1 || steps[0].Status != models.OrderPlaced || steps[0].Notes != "Order placed successfully" {
		t.Errorf("unexpected workflow log: %+v", steps)
	}

	if len(env.notifier.sent) != 1 || !strings.HasPrefix(env.notifier.sent[0], "status_update: ") {
		t.Errorf("unexpected notifications: %v", env.notifier.sent)
	}
}

func TestCreateOrderBlockedByValidation(t *testing.T) {
	env := newOrderTestEnv()
	rejected := validPrescription(1, 7)
	rejected.Status = string(models.PrescriptionRejected)
	env.prescRepo.Create(rejected)
	env.cartRepo.Create(&models.PrescriptionCartItem{
		UserID: 7, MedicineID: 1, Quantity: 1, UnitPrice: 95,
		Status:         string(models.CartItemActive),
		PrescriptionID: uintPtr(1), RequiresPrescription: true,
	})

	_, err := env.svc.CreatePrescriptionOrder(CreateOrderRequest{UserID: 7})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("unexpected error: %v", err)
	}
	active, _ := env.cartRepo.GetActiveByUser(7)
	if len(active) != 1 {
		t.Error("failed placement must not consume the cart")
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newOrderTestEnv()
	if _, err := env.svc.CreatePrescriptionOrder(CreateOrderRequest{UserID: 7}); err == nil {
		t.Fatal("expected error for empty cart")
	}
}

func TestCancelOrderFromEarlyStatuses(t *testing.T) {
	for _, status := range []models.PrescriptionOrderStatus{
		models.OrderPlaced,
		models.OrderPrescriptionReview,
		models.OrderPharmacistVerification,
		models.OrderApproved,
	} {
		env := newOrderTestEnv()
		order := env.placeOrder(t)
		env.setStatus(order.ID, status)

		if err := env.svc.CancelOrder(order.ID, 7, "changed my mind"); err != nil {
			t.Errorf("cancel from %s: unexpected error: %v", status, err)
			continue
		}
		stored, _ := env.orderRepo.GetByID(order.ID)
		if stored.Status != models.OrderCancelled {
			t.Errorf("cancel from %s: status is %s", status, stored.Status)
		}
	}
}

func TestCancelOrderBlockedPastApproval(t *testing.T) {
	blocked := []models.PrescriptionOrderStatus{
		models.OrderPreparing,
		models.OrderQualityCheck,
		models.OrderPacked,
		models.OrderDispatched,
		models.OrderInTransit,
		models.OrderOutForDelivery,
		models.OrderDelivered,
		models.OrderRejected,
		models.OrderCancelled,
		models.OrderRefunded,
	}
	for _, status := range blocked {
		env := newOrderTestEnv()
		order := env.placeOrder(t)
		env.setStatus(order.ID, status)

		err := env.svc.CancelOrder(order.ID, 7, "")
		if err == nil {
			t.Errorf("cancel from %s should fail", status)
			continue
		}
		if !errors.Is(err, ErrNotCancellable) {
			t.Errorf("cancel from %s: expected ErrNotCancellable, got %v", status, err)
		}
		if err.Error() != "Order cannot be cancelled at this stage" {
			t.Errorf("cancel from %s: unexpected error %q", status, err.Error())
		}
		stored, _ := env.orderRepo.GetByID(order.ID)
		if stored.Status != status {
			t.Errorf("cancel from %s: status must be untouched, got %s", status, stored.Status)
		}
	}
}

func TestCancelOrderPermissions(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)

	if err := env.svc.CancelOrder(order.ID, 8, ""); err == nil {
		t.Error("another customer must not cancel the order")
	}

	if err := env.svc.CancelOrder(order.ID, 30, "stock issue"); err != nil {
		t.Errorf("admin cancel failed: %v", err)
	}
	stored, _ := env.orderRepo.GetByID(order.ID)
	if stored.Status != models.OrderCancelled {
		t.Errorf("status: got %s, want cancelled", stored.Status)
	}
}

func TestVerifyOrderApproves(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)
	env.setStatus(order.ID, models.OrderPharmacistVerification)

	decisions := []models.ItemVerification{
		{OrderItemID: order.Items[0].ID, FulfillmentStatus: models.FulfillmentVerified},
	}
	if err := env.svc.VerifyPrescriptionOrder(order.ID, 20, models.DecisionApproved, "all good", decisions); err != nil {
		t.Fatalf("verification failed: %v", err)
	}

	stored, _ := env.orderRepo.GetByID(order.ID)
	if stored.Status != models.OrderApproved {
		t.Errorf("status: got %s, want approved", stored.Status)
	}
	if !stored.PharmacistVerified {
		t.Error("order must be flagged pharmacist-verified")
	}
	if stored.PharmacistVerifiedBy == nil || *stored.PharmacistVerifiedBy != 20 {
		t.Error("verifying pharmacist must be recorded")
	}
	if stored.Items[0].FulfillmentStatus != models.FulfillmentVerified {
		t.Errorf("item status: got %s, want verified", stored.Items[0].FulfillmentStatus)
	}
	if len(env.orderRepo.verifications) != 1 || env.orderRepo.verifications[0].Decision != models.DecisionApproved {
		t.Errorf("verification audit row missing: %+v", env.orderRepo.verifications)
	}
}

func TestVerifyOrderSubstitutionResolvesToApproved(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)
	env.setStatus(order.ID, models.OrderPharmacistVerification)

	decisions := []models.ItemVerification{
		{
			OrderItemID:          order.Items[0].ID,
			FulfillmentStatus:    models.FulfillmentSubstituted,
			SubstituteMedicineID: uintPtr(2),
			SubstituteReason:     "Original brand out of stock",
		},
	}
	err := env.svc.VerifyPrescriptionOrder(order.ID, 20, models.DecisionRequiresSubstitution, "substituted", decisions)
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}

	stored, _ := env.orderRepo.GetByID(order.ID)
	if stored.Status != models.OrderApproved {
		t.Errorf("substitution must approve the order, got %s", stored.Status)
	}
	if !stored.PharmacistVerified {
		t.Error("substituted order must still be pharmacist-verified")
	}
	item := stored.Items[0]
	if !item.Substituted || item.SubstituteMedicineID == nil || *item.SubstituteMedicineID != 2 {
		t.Errorf("substitution not recorded on the item: %+v", item)
	}
	if item.FulfillmentStatus != models.FulfillmentSubstituted {
		t.Errorf("item status: got %s, want substituted", item.FulfillmentStatus)
	}
}

func TestVerifyOrderBlocksDisallowedSubstitution(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)
	env.setStatus(order.ID, models.OrderPharmacistVerification)

	decisions := []models.ItemVerification{
		{
			OrderItemID:          order.Items[0].ID,
			FulfillmentStatus:    models.FulfillmentSubstituted,
			SubstituteMedicineID: uintPtr(3), // different generic and class
		},
	}
	err := env.svc.VerifyPrescriptionOrder(order.ID, 20, models.DecisionRequiresSubstitution, "", decisions)
	if err == nil {
		t.Fatal("unrelated substitute must be refused")
	}
	if !strings.Contains(err.Error(), "substitution not allowed") {
		t.Errorf("unexpected error: %v", err)
	}
	stored, _ := env.orderRepo.GetByID(order.ID)
	if stored.Status != models.OrderPharmacistVerification {
		t.Errorf("refused verification must not change status, got %s", stored.Status)
	}
}

func TestVerifyOrderRejection(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)

	err := env.svc.VerifyPrescriptionOrder(order.ID, 20, models.DecisionRejected, "illegible prescription", nil)
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	stored, _ := env.orderRepo.GetByID(order.ID)
	if stored.Status != models.OrderRejected {
		t.Errorf("status: got %s, want rejected", stored.Status)
	}
	if stored.PharmacistVerified {
		t.Error("rejected order must not be flagged verified")
	}
}

func TestVerifyOrderRoleGate(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)

	if err := env.svc.VerifyPrescriptionOrder(order.ID, 7, models.DecisionApproved, "", nil); err == nil {
		t.Error("customers must not verify orders")
	}
	if err := env.svc.VerifyPrescriptionOrder(order.ID, 30, models.DecisionApproved, "", nil); err != nil {
		t.Errorf("admin verification failed: %v", err)
	}
}

func TestVerifyOrderWrongStage(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)
	env.setStatus(order.ID, models.OrderPreparing)

	if err := env.svc.VerifyPrescriptionOrder(order.ID, 20, models.DecisionApproved, "", nil); err == nil {
		t.Error("orders past verification must not be re-verified")
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)

	if err := env.svc.UpdateOrderStatus(order.ID, models.OrderPrescriptionReview, "queued for review", nil); err != nil {
		t.Fatalf("forward transition failed: %v", err)
	}
	if err := env.svc.UpdateOrderStatus(order.ID, models.OrderPlaced, "", nil); err == nil {
		t.Error("backward transition must fail")
	}
	if err := env.svc.UpdateOrderStatus(order.ID, models.OrderPrescriptionReview, "", nil); err == nil {
		t.Error("no-op transition must fail")
	}

	// Skipping forward stages is allowed; the log records what happened.
	if err := env.svc.UpdateOrderStatus(order.ID, models.OrderInTransit, "", nil); err != nil {
		t.Fatalf("forward skip failed: %v", err)
	}
	last := env.notifier.sent[len(env.notifier.sent)-1]
	if !strings.HasPrefix(last, "delivery_update: ") {
		t.Errorf("in-transit updates should notify as delivery updates, got %q", last)
	}

	env.setStatus(order.ID, models.OrderDelivered)
	if err := env.svc.UpdateOrderStatus(order.ID, models.OrderCancelled, "", nil); err == nil {
		t.Error("delivered orders must not be cancellable")
	}
}

func TestGetOrderItem(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)

	item, err := env.svc.GetOrderItem(order.Items[0].ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if item.OrderID != order.ID || item.MedicineName != "Amoxicillin 500mg" {
		t.Errorf("unexpected item: %+v", item)
	}

	if _, err := env.svc.GetOrderItem(999); err == nil {
		t.Error("unknown item must error")
	}
}

func TestGetOrderWorkflowProgress(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)
	env.svc.UpdateOrderStatus(order.ID, models.OrderPrescriptionReview, "", nil)
	env.svc.UpdateOrderStatus(order.ID, models.OrderPharmacistVerification, "", nil)

	view, err := env.svc.GetOrderWorkflow(order.ID)
	if err != nil {
		t.Fatalf("failed to load workflow: %v", err)
	}
	if view.CurrentStatus != models.OrderPharmacistVerification {
		t.Errorf("current status: got %s", view.CurrentStatus)
	}
	if len(view.Steps) != len(workflowDefinition) {
		t.Fatalf("expected %d steps, got %d", len(workflowDefinition), len(view.Steps))
	}

	for i, step := range view.Steps {
		wantCompleted := i <= 2
		if step.Completed != wantCompleted {
			t.Errorf("step %d (%s): completed = %v", i, step.Status, step.Completed)
		}
		if step.Active != (i == 2) {
			t.Errorf("step %d (%s): active = %v", i, step.Status, step.Active)
		}
	}
	if view.Steps[0].Timestamp == nil || view.Steps[0].Notes != "Order placed successfully" {
		t.Error("logged steps must carry their timestamp and notes")
	}
	if view.Steps[4].Timestamp != nil {
		t.Error("unreached steps must not carry a timestamp")
	}
}

func TestGetOrderWorkflowCancelled(t *testing.T) {
	env := newOrderTestEnv()
	order := env.placeOrder(t)
	if err := env.svc.CancelOrder(order.ID, 7, "no longer needed"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	view, err := env.svc.GetOrderWorkflow(order.ID)
	if err != nil {
		t.Fatalf("failed to load workflow: %v", err)
	}
	if view.CurrentStatus != models.OrderCancelled {
		t.Errorf("current status: got %s", view.CurrentStatus)
	}
	for i, step := range view.Steps {
		if step.Completed || step.Active {
			t.Errorf("step %d (%s): cancelled orders show no progress", i, step.Status)
		}
	}
}
