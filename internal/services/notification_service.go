package services

import (
	"log"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/pkg/notify"
)

type NotificationType string

const (
	NotifyStatusUpdate   NotificationType = "status_update"
	NotifyDeliveryUpdate NotificationType = "delivery_update"
	NotifyCancellation   NotificationType = "cancellation"
)

// NotificationService dispatches order updates over the external channel.
// Dispatch failures are logged and swallowed: a notification must never fail
// the workflow transition that triggered it.
type NotificationService interface {
	NotifyOrderStatus(order *models.PrescriptionOrder, notifyType NotificationType, message string)
}

type notificationService struct {
	client   *notify.Client
	userRepo repository.UserRepository
}

func NewNotificationService(client *notify.Client, userRepo repository.UserRepository) NotificationService {
	return &notificationService{client: client, userRepo: userRepo}
}

func (s *notificationService) NotifyOrderStatus(order *models.PrescriptionOrder, notifyType NotificationType, message string) {
	if s.client == nil {
		return
	}

	req := &notify.DispatchRequest{
		OrderID: order.ID,
		Type:    string(notifyType),
		Message: message,
	}

	if user, err := s.userRepo.GetByID(order.UserID); err == nil {
		req.Phone = user.PhoneNumber
		req.Email = user.Email
	} else {
		log.Printf("notify: user %d lookup failed for order %d: %v", order.UserID, order.ID, err)
	}

	if _, err := s.client.Dispatch(req); err != nil {
		log.Printf("notify: dispatch failed for order %d (%s): %v", order.ID, notifyType, err)
	}
}
