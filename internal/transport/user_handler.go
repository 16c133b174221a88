package transport

import (
	"net/http"
	"time"

	"clothing-store/internal/middleware"
	"clothing-store/internal/repository"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type DeleteUserRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type UpdateUserStatusRequest struct {
	UserID     uuid.UUID `json:"userId" validate:"required"`
	CanComment *bool     `json:"canComment"`
	CanChat    *bool     `json:"canChat"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	CanComment bool   `json:"canComment"`
	CanChat    bool   `json:"canChat"`
}

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService service.UserService
	cookie      SessionCookie
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, cookie SessionCookie, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		cookie:      cookie,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes. limiter guards the
// unauthenticated register and login endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router, auth, admin, limiter Guard) {
	r.Route("/api/user", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limiter)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/all-users", h.ListUsers)
				r.Post("/delete-user", h.DeleteUser)
				r.Post("/update-user-status", h.UpdateStatus)
			})
		})
	})
}

func toProfile(id uuid.UUID, name, email, role string, canComment, canChat bool) UserProfile {
	return UserProfile{
		ID:         id.String(),
		Name:       name,
		Email:      email,
		Role:       role,
		CanComment: canComment,
		CanChat:    canChat,
	}
}

func (h *UserHandler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.sameSite(),
	})
}

func (h *UserHandler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.sameSite(),
	})
}

// Cross-site storefronts need SameSite=None, which browsers only accept on
// secure cookies.
func (h *UserHandler) sameSite() http.SameSite {
	if h.cookie.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, token, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to register user")
		return
	}

	h.setSession(w, token)
	h.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	middleware.RespondWithSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"user":    toProfile(user.ID, user.Name, user.Email, user.Role, user.CanComment, user.CanChat),
	})
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))
		respondServiceError(w, h.logger, err, "failed to login")
		return
	}

	h.setSession(w, token)
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    toProfile(user.ID, user.Name, user.Email, user.Role, user.CanComment, user.CanChat),
	})
}

// Logout drops the session cookie. Tokens are stateless, so nothing is
// revoked server side.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w)
	respondMessage(w, http.StatusOK, "Logged out")
}

// GetProfile handles getting user profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get user profile")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"user": toProfile(user.ID, user.Name, user.Email, user.Role, user.CanComment, user.CanChat),
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.UserListFilter{
		Page:      queryPage(r),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: repository.ParseSortOrder(q.Get("sortOrder"), repository.SortOrderDesc),
	}

	users, total, err := h.userService.ListUsers(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list users")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, pageBody("users", users, filter.Page, total))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req DeleteUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), req.UserID); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete user")
		return
	}

	h.logger.Info("User deleted", zap.String("user_id", req.UserID.String()))
	respondMessage(w, http.StatusOK, "User deleted")
}

func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.userService.UpdateStatus(r.Context(), req.UserID, req.CanComment, req.CanChat); err != nil {
		respondServiceError(w, h.logger, err, "failed to update user status")
		return
	}

	respondMessage(w, http.StatusOK, "User status updated")
}
