package services

import (
	"errors"
	"strings"
	"time"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/realtime"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/redis"

	"gorm.io/gorm"
)

// In-memory fakes standing in for the remote stores.

type fakeMedicineRepo struct {
	medicines []models.Medicine
	failNames map[string]bool
}

func (r *fakeMedicineRepo) failing(name string) bool {
	return r.failNames != nil && r.failNames[strings.ToLower(name)]
}

func (r *fakeMedicineRepo) Create(m *models.Medicine) error {
	if m.ID == 0 {
		m.ID = uint(len(r.medicines) + 1)
	}
	r.medicines = append(r.medicines, *m)
	return nil
}

func (r *fakeMedicineRepo) GetByID(id uint) (*models.Medicine, error) {
	for i := range r.medicines {
		if r.medicines[i].ID == id {
			m := r.medicines[i]
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMedicineRepo) FindExact(name string) ([]models.Medicine, error) {
	if r.failing(name) {
		return nil, errors.New("store unavailable")
	}
	var out []models.Medicine
	for _, m := range r.medicines {
		if strings.EqualFold(m.Name, name) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMedicineRepo) FindByGeneric(token string) ([]models.Medicine, error) {
	var out []models.Medicine
	for _, m := range r.medicines {
		if token != "" && strings.Contains(strings.ToLower(m.GenericName), strings.ToLower(token)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMedicineRepo) FindByBrand(name string) ([]models.Medicine, error) {
	var out []models.Medicine
	for _, m := range r.medicines {
		if m.Brand != "" && strings.Contains(strings.ToLower(m.Brand), strings.ToLower(name)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMedicineRepo) SearchSimilar(name string) ([]models.Medicine, error) {
	var out []models.Medicine
	for _, m := range r.medicines {
		for _, token := range strings.Fields(strings.ToLower(name)) {
			if strings.Contains(strings.ToLower(m.Name), token) {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeMedicineRepo) FindGenericAlternatives(token string, maxPrice float64, limit int) ([]models.Medicine, error) {
	var out []models.Medicine
	for _, m := range r.medicines {
		name := strings.ToLower(m.GenericName) + " " + strings.ToLower(m.Name)
		if token != "" && strings.Contains(name, strings.ToLower(token)) && m.SalePrice < maxPrice {
			out = append(out, m)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].SalePrice < out[i].SalePrice {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMedicineRepo) Update(m *models.Medicine) error {
	for i := range r.medicines {
		if r.medicines[i].ID == m.ID {
			r.medicines[i] = *m
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMedicineRepo) Delete(id uint) error {
	for i := range r.medicines {
		if r.medicines[i].ID == id {
			r.medicines = append(r.medicines[:i], r.medicines[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMedicineRepo) GetAll() ([]models.Medicine, error) {
	return r.medicines, nil
}

type fakePrescriptionRepo struct {
	prescriptions map[uint]*models.Prescription
	extracted     map[uint][]models.ExtractedMedicine
}

func newFakePrescriptionRepo() *fakePrescriptionRepo {
	return &fakePrescriptionRepo{
		prescriptions: make(map[uint]*models.Prescription),
		extracted:     make(map[uint][]models.ExtractedMedicine),
	}
}

func (r *fakePrescriptionRepo) Create(p *models.Prescription) error {
	if p.ID == 0 {
		p.ID = uint(len(r.prescriptions) + 1)
	}
	r.prescriptions[p.ID] = p
	return nil
}

func (r *fakePrescriptionRepo) GetByID(id uint) (*models.Prescription, error) {
	p, ok := r.prescriptions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePrescriptionRepo) GetByUserID(userID uint) ([]models.Prescription, error) {
	var out []models.Prescription
	for _, p := range r.prescriptions {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePrescriptionRepo) UpdateStatus(id uint, status models.PrescriptionStatus, orderID *uint) error {
	p, ok := r.prescriptions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = string(status)
	if orderID != nil {
		p.OrderID = orderID
	}
	return nil
}

func (r *fakePrescriptionRepo) Update(p *models.Prescription) error {
	r.prescriptions[p.ID] = p
	return nil
}

func (r *fakePrescriptionRepo) AddFile(f *models.PrescriptionFile) error {
	p, ok := r.prescriptions[f.PrescriptionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Files = append(p.Files, *f)
	return nil
}

func (r *fakePrescriptionRepo) CreateExtractedMedicines(items []models.ExtractedMedicine) error {
	for _, item := range items {
		r.extracted[item.PrescriptionID] = append(r.extracted[item.PrescriptionID], item)
	}
	return nil
}

func (r *fakePrescriptionRepo) GetExtractedMedicines(prescriptionID uint) ([]models.ExtractedMedicine, error) {
	return r.extracted[prescriptionID], nil
}

type fakeCartRepo struct {
	items     map[uint]*models.PrescriptionCartItem
	nextID    uint
	createErr error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[uint]*models.PrescriptionCartItem), nextID: 1}
}

func (r *fakeCartRepo) Create(item *models.PrescriptionCartItem) error {
	if r.createErr != nil {
		return r.createErr
	}
	item.ID = r.nextID
	r.nextID++
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeCartRepo) GetByID(id uint) (*models.PrescriptionCartItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeCartRepo) GetActiveByUser(userID uint) ([]models.PrescriptionCartItem, error) {
	var out []models.PrescriptionCartItem
	for id := uint(1); id < r.nextID; id++ {
		item, ok := r.items[id]
		if ok && item.UserID == userID && item.Status == string(models.CartItemActive) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeCartRepo) UpdateQuantity(id uint, quantity int) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantity = quantity
	return nil
}

func (r *fakeCartRepo) MarkRemoved(id uint) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Status = string(models.CartItemRemoved)
	return nil
}

func (r *fakeCartRepo) MarkOrdered(ids []uint) error {
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			item.Status = string(models.CartItemOrdered)
		}
	}
	return nil
}

func (r *fakeCartRepo) Update(item *models.PrescriptionCartItem) error {
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

type fakeOrderRepo struct {
	orders        map[uint]*models.PrescriptionOrder
	steps         []models.OrderWorkflowStep
	verifications []models.PrescriptionVerification
	nextID        uint
	cartRepo      *fakeCartRepo
	prescRepo     *fakePrescriptionRepo
}

func newFakeOrderRepo(cartRepo *fakeCartRepo, prescRepo *fakePrescriptionRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    make(map[uint]*models.PrescriptionOrder),
		nextID:    1,
		cartRepo:  cartRepo,
		prescRepo: prescRepo,
	}
}

func (r *fakeOrderRepo) CreateWithWorkflow(order *models.PrescriptionOrder, step *models.OrderWorkflowStep, cartItemIDs []uint) error {
	order.ID = r.nextID
	r.nextID++
	for i := range order.Items {
		order.Items[i].ID = uint(i + 1)
		order.Items[i].OrderID = order.ID
	}
	copied := *order
	r.orders[order.ID] = &copied

	step.OrderID = order.ID
	step.CreatedAt = time.Now()
	r.steps = append(r.steps, *step)

	if r.cartRepo != nil {
		r.cartRepo.MarkOrdered(cartItemIDs)
	}
	if order.PrescriptionID != nil && r.prescRepo != nil {
		r.prescRepo.UpdateStatus(*order.PrescriptionID, models.PrescriptionProcessing, &order.ID)
	}
	return nil
}

func (r *fakeOrderRepo) GetByID(id uint) (*models.PrescriptionOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Items = append([]models.PrescriptionOrderItem(nil), order.Items...)
	return &copied, nil
}

func (r *fakeOrderRepo) GetByUserID(userID uint) ([]models.PrescriptionOrder, error) {
	var out []models.PrescriptionOrder
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetByStatus(status models.PrescriptionOrderStatus) ([]models.PrescriptionOrder, error) {
	var out []models.PrescriptionOrder
	for _, order := range r.orders {
		if order.Status == status {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatusWithStep(orderID uint, status models.PrescriptionOrderStatus, step *models.OrderWorkflowStep) error {
	order, ok := r.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	step.OrderID = orderID
	step.Status = status
	step.CreatedAt = time.Now()
	r.steps = append(r.steps, *step)
	return nil
}

func (r *fakeOrderRepo) ApplyVerification(order *models.PrescriptionOrder, items []models.PrescriptionOrderItem, verification *models.PrescriptionVerification, step *models.OrderWorkflowStep) error {
	stored, ok := r.orders[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	*stored = *order
	for _, item := range items {
		for i := range stored.Items {
			if stored.Items[i].ID == item.ID {
				stored.Items[i] = item
			}
		}
	}
	r.verifications = append(r.verifications, *verification)
	step.OrderID = order.ID
	step.CreatedAt = time.Now()
	r.steps = append(r.steps, *step)
	return nil
}

func (r *fakeOrderRepo) GetWorkflowSteps(orderID uint) ([]models.OrderWorkflowStep, error) {
	var out []models.OrderWorkflowStep
	for _, step := range r.steps {
		if step.OrderID == orderID {
			out = append(out, step)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetItem(itemID uint) (*models.PrescriptionOrderItem, error) {
	for _, order := range r.orders {
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				item := order.Items[i]
				return &item, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) stepsFor(orderID uint) []models.OrderWorkflowStep {
	steps, _ := r.GetWorkflowSteps(orderID)
	return steps
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = uint(len(r.users) + 1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetAll() ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(id uint) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

type fakePublisher struct {
	channels   []string
	events     []realtime.ChangeEvent
	publishErr error
}

func (p *fakePublisher) Publish(channel string, payload interface{}) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.channels = append(p.channels, channel)
	if event, ok := payload.(realtime.ChangeEvent); ok {
		p.events = append(p.events, event)
	}
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*redis.CheckoutSession
	setErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*redis.CheckoutSession)}
}

func (s *fakeSessionStore) SetCheckoutSession(sessionID string, data *redis.CheckoutSession, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	copied := *data
	s.sessions[sessionID] = &copied
	return nil
}

func (s *fakeSessionStore) GetCheckoutSession(sessionID string) (*redis.CheckoutSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.New("checkout session not found")
	}
	copied := *session
	return &copied, nil
}

func (s *fakeSessionStore) DeleteCheckoutSession(sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

type fakeNotifier struct {
	sent []string
}

func (n *fakeNotifier) NotifyOrderStatus(order *models.PrescriptionOrder, notifyType NotificationType, message string) {
	n.sent = append(n.sent, string(notifyType)+": "+message)
}

func uintPtr(v uint) *uint           { return &v }
func timePtr(t time.Time) *time.Time { return &t }
