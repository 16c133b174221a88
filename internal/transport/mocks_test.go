package transport

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"clothing-store/internal/domain"
	"clothing-store/internal/middleware"
	"clothing-store/internal/repository"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret = "test-secret"
	cookieName = "user_token"
)

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

// seedUser stores an account with the given role and returns its session
// cookie.
func seedUser(t *testing.T, repo *mockUserRepository, users service.UserService, email, role string) *http.Cookie {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.users[email] = &domain.User{
		ID:           uuid.New(),
		Name:         "Seed",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CanComment:   true,
		CartData:     domain.Cart{},
	}

	_, token, err := users.Login(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return &http.Cookie{Name: cookieName, Value: token}
}

// testRouter mounts handlers behind the real auth chain. The rate limiter
// is a pass-through.
type testRouter struct {
	chi.Router
	repo  *mockUserRepository
	users service.UserService
}

func newTestRouter() *testRouter {
	repo := newMockUserRepository()
	users := service.NewUserService(repo, testSecret, 24*time.Hour)
	logger := zap.NewNop()

	r := chi.NewRouter()
	auth := middleware.AuthMiddleware(users, cookieName, logger)
	admin := middleware.RequireAdmin(logger)
	passThrough := func(next http.Handler) http.Handler { return next }

	NewUserHandler(users, SessionCookie{Name: cookieName, TTL: 24 * time.Hour}, logger).
		RegisterRoutes(r, auth, admin, passThrough)

	return &testRouter{Router: r, repo: repo, users: users}
}

func (tr *testRouter) guards() (Guard, Guard) {
	logger := zap.NewNop()
	return middleware.AuthMiddleware(tr.users, cookieName, logger), middleware.RequireAdmin(logger)
}

type stubProductService struct {
	created    *service.CreateProductInput
	imageBytes []string
	product    *domain.Product
	page       *service.ProductPage
	err        error
}

func (s *stubProductService) Create(ctx context.Context, in service.CreateProductInput) (*domain.Product, error) {
	s.created = &in
	for _, f := range in.Images {
		b, _ := io.ReadAll(f.Body)
		s.imageBytes = append(s.imageBytes, string(b))
	}
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: uuid.New(), Name: in.Name}, nil
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if s.product == nil || s.product.ID != id {
		return nil, repository.ErrProductNotFound
	}
	return s.product, nil
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubProductService) ListStorefront(ctx context.Context, lastID *uuid.UUID, limit int) (*service.ProductPage, error) {
	return s.page, s.err
}

func (s *stubProductService) ListAdmin(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	return []*domain.Product{}, 0, s.err
}

func (s *stubProductService) BulkDiscount(ctx context.Context, ids []uuid.UUID, discount int) (int64, error) {
	return int64(len(ids)), s.err
}

type stubOrderService struct {
	placed *service.PlaceOrderInput
	filter repository.OrderFilter
	err    error
}

func (s *stubOrderService) PlaceCOD(ctx context.Context, userID uuid.UUID, in service.PlaceOrderInput) (*domain.Order, error) {
	s.placed = &in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: uuid.New(), UserID: userID, Amount: in.Amount, Status: domain.OrderStatusPending}, nil
}

func (s *stubOrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return []*domain.Order{}, s.err
}

func (s *stubOrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	s.filter = filter
	return []*domain.Order{}, 0, s.err
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error) {
	return &domain.Order{ID: orderID, Status: status}, s.err
}

func (s *stubOrderService) UpdatePayment(ctx context.Context, orderID uuid.UUID, payment bool) (*domain.Order, error) {
	return &domain.Order{ID: orderID, Payment: payment}, s.err
}

type stubDashboardService struct {
	query service.StatsQuery
}

func (s *stubDashboardService) Stats(ctx context.Context, q service.StatsQuery) (*domain.DashboardStats, error) {
	s.query = q
	return &domain.DashboardStats{
		Daily:    []domain.DailyStat{{Date: "2024-01-01"}},
		Products: []domain.ProductStat{},
	}, nil
}

type stubInventoryService struct {
	filter repository.InventoryLogFilter
}

func (s *stubInventoryService) Create(ctx context.Context, in service.CreateInventoryLogInput) (*domain.InventoryLog, error) {
	return &domain.InventoryLog{ID: uuid.New(), Type: in.Type, CreatedBy: in.CreatedBy}, nil
}

func (s *stubInventoryService) List(ctx context.Context, filter repository.InventoryLogFilter) ([]*domain.InventoryLog, int, error) {
	s.filter = filter
	return []*domain.InventoryLog{}, 0, nil
}
