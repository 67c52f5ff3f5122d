package services

import (
	"fmt"
	"log"
	"time"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/redis"

	"github.com/google/uuid"
)

// CheckoutSessionStore holds in-flight checkout state between cart validation
// and order placement.
type CheckoutSessionStore interface {
	SetCheckoutSession(sessionID string, data *redis.CheckoutSession, ttl time.Duration) error
	GetCheckoutSession(sessionID string) (*redis.CheckoutSession, error)
	DeleteCheckoutSession(sessionID string) error
}

// CheckoutService parks a validated order request under a session id so the
// client can confirm later. Sessions expire on their own; completing one
// places the order and discards the session.
type CheckoutService interface {
	StartCheckout(req CreateOrderRequest) (string, error)
	GetCheckout(sessionID string) (*redis.CheckoutSession, error)
	CompleteCheckout(sessionID string) (*models.PrescriptionOrder, error)
	CancelCheckout(sessionID string) error
}

type checkoutService struct {
	store        CheckoutSessionStore
	orderService OrderService
	sessionTTL   time.Duration
}

func NewCheckoutService(store CheckoutSessionStore, orderService OrderService, sessionTTL time.Duration) CheckoutService {
	return &checkoutService{store: store, orderService: orderService, sessionTTL: sessionTTL}
}

func (s *checkoutService) StartCheckout(req CreateOrderRequest) (string, error) {
	sessionID := uuid.NewString()
	now := time.Now()
	session := &redis.CheckoutSession{
		UserID:          req.UserID,
		PrescriptionID:  req.PrescriptionID,
		CartItemIDs:     req.CartItemIDs,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryType:    req.DeliveryType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SetCheckoutSession(sessionID, session, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to store checkout session: %w", err)
	}
	return sessionID, nil
}

func (s *checkoutService) GetCheckout(sessionID string) (*redis.CheckoutSession, error) {
	return s.store.GetCheckoutSession(sessionID)
}

func (s *checkoutService) CompleteCheckout(sessionID string) (*models.PrescriptionOrder, error) {
	session, err := s.store.GetCheckoutSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("checkout session %s not found: %w", sessionID, err)
	}

	order, err := s.orderService.CreatePrescriptionOrder(CreateOrderRequest{
		UserID:          session.UserID,
		PrescriptionID:  session.PrescriptionID,
		CartItemIDs:     session.CartItemIDs,
		DeliveryAddress: session.DeliveryAddress,
		DeliveryType:    session.DeliveryType,
	})
	if err != nil {
		return nil, err
	}

	// The session already served its purpose; a failed delete just leaves it
	// to expire.
	if err := s.store.DeleteCheckoutSession(sessionID); err != nil {
		log.Printf("checkout: failed to delete session %s after order placement: %v", sessionID, err)
	}
	return order, nil
}

func (s *checkoutService) CancelCheckout(sessionID string) error {
	return s.store.DeleteCheckoutSession(sessionID)
}
