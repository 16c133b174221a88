package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"clothing-store/internal/domain"
	"clothing-store/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, canComment, canChat *bool) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if canComment != nil {
		user.CanComment = *canComment
	}
	if canChat != nil {
		user.CanChat = *canChat
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	delete(m.users, user.Email)
	return nil
}

func (m *mockUserRepository) ListWithStats(ctx context.Context, filter repository.UserListFilter) ([]*domain.UserStats, int, error) {
	stats := []*domain.UserStats{}
	for _, u := range m.users {
		stats = append(stats, &domain.UserStats{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return stats, len(stats), nil
}

type mockCartRepository struct {
	mu    sync.Mutex
	carts map[uuid.UUID]domain.Cart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[uuid.UUID]domain.Cart)}
}

func (m *mockCartRepository) cart(userID uuid.UUID) domain.Cart {
	if m.carts[userID] == nil {
		m.carts[userID] = domain.Cart{}
	}
	return m.carts[userID]
}

func (m *mockCartRepository) Increment(ctx context.Context, userID uuid.UUID, itemID, size string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.cart(userID)
	if cart[itemID] == nil {
		cart[itemID] = map[string]int{}
	}
	cart[itemID][size]++
	return nil
}

func (m *mockCartRepository) SetQuantity(ctx context.Context, userID uuid.UUID, itemID, size string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.cart(userID)
	if quantity > 0 {
		if cart[itemID] == nil {
			cart[itemID] = map[string]int{}
		}
		cart[itemID][size] = quantity
		return nil
	}
	delete(cart[itemID], size)
	if len(cart[itemID]) == 0 {
		delete(cart, itemID)
	}
	return nil
}

func (m *mockCartRepository) Get(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart(userID), nil
}

type mockTagRepository struct {
	tags []*domain.Tag
}

func (m *mockTagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	for _, t := range m.tags {
		if t.Name == tag.Name && t.Group == tag.Group {
			return repository.ErrTagAlreadyExists
		}
	}
	m.tags = append(m.tags, tag)
	return nil
}

func (m *mockTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for i, t := range m.tags {
		if t.ID == id {
			m.tags = append(m.tags[:i], m.tags[i+1:]...)
			return nil
		}
	}
	return repository.ErrTagNotFound
}

func (m *mockTagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	out := append([]*domain.Tag{}, m.tags...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type mockProductRepository struct {
	products  map[uuid.UUID]*domain.Product
	createErr error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) add(p *domain.Product) *domain.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV7())
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) ListBefore(ctx context.Context, cursor *uuid.UUID, limit int) ([]*domain.Product, error) {
	active := []*domain.Product{}
	for _, p := range m.products {
		if p.Status != domain.ProductStatusActive {
			continue
		}
		if cursor != nil && bytes.Compare(p.ID[:], cursor[:]) >= 0 {
			continue
		}
		active = append(active, p)
	}
	sort.Slice(active, func(i, j int) bool {
		return bytes.Compare(active[i].ID[:], active[j].ID[:]) > 0
	})
	if len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockProductRepository) SetDiscount(ctx context.Context, ids []uuid.UUID, discount int) (int64, error) {
	var n int64
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			p.Discount = discount
			n++
		}
	}
	return n, nil
}

type mockOrderRepository struct {
	orders   map[uuid.UUID]*domain.Order
	placeErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Place(ctx context.Context, order *domain.Order) error {
	if m.placeErr != nil {
		return m.placeErr
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	out := []*domain.Order{}
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	o, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

func (m *mockOrderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, payment bool) (*domain.Order, error) {
	o, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Payment = payment
	return o, nil
}

type mockReviewRepository struct {
	reviews   map[uuid.UUID]*domain.Review
	updateErr error
}

func newMockReviewRepository() *mockReviewRepository {
	return &mockReviewRepository{reviews: make(map[uuid.UUID]*domain.Review)}
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if _, err := m.FindByKey(ctx, review.UserID, review.ProductID, review.OrderID); err == nil {
		return repository.ErrDuplicateReview
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.reviews[review.ID]; !ok {
		return repository.ErrReviewNotFound
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	cp := *r
	cp.Images = append(domain.Images{}, r.Images...)
	return &cp, nil
}

func (m *mockReviewRepository) FindByKey(ctx context.Context, userID, productID, orderID uuid.UUID) (*domain.Review, error) {
	for _, r := range m.reviews {
		if r.UserID == userID && r.ProductID == productID && r.OrderID == orderID {
			return r, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, includeHidden bool) ([]*domain.Review, error) {
	out := []*domain.Review{}
	for _, r := range m.reviews {
		if r.ProductID == productID && (includeHidden || !r.Hidden) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReviewRepository) SetReply(ctx context.Context, id uuid.UUID, reply *domain.Reply) (*domain.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	r.Reply = reply
	return r, nil
}

func (m *mockReviewRepository) ToggleHidden(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	r.Hidden = !r.Hidden
	return r, nil
}

type mockInventoryLogRepository struct {
	logs       []*domain.InventoryLog
	lastFilter repository.InventoryLogFilter
	applyErr   error
}

func (m *mockInventoryLogRepository) CreateAndApply(ctx context.Context, log *domain.InventoryLog) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockInventoryLogRepository) List(ctx context.Context, filter repository.InventoryLogFilter) ([]*domain.InventoryLog, int, error) {
	m.lastFilter = filter
	return m.logs, len(m.logs), nil
}

type mockDashboardRepository struct {
	daily      []domain.DailyStat
	products   []domain.ProductStat
	start, end time.Time
	order      repository.SortOrder
}

func (m *mockDashboardRepository) DailyTotals(ctx context.Context, start, end time.Time) ([]domain.DailyStat, error) {
	m.start, m.end = start, end
	return m.daily, nil
}

func (m *mockDashboardRepository) TopProducts(ctx context.Context, start, end time.Time, order repository.SortOrder) ([]domain.ProductStat, error) {
	m.order = order
	return m.products, nil
}
