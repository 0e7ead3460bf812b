package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/survivor/go/internal/httputil"
	"github.com/mcdev12/survivor/go/internal/identity"
	"github.com/mcdev12/survivor/go/internal/models"
)

// UsersApp defines what the service layer needs from the users application
type UsersApp interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*AuthResult, error)
	Verify(ctx context.Context, token string) (*models.User, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error)
}

// Service exposes account endpoints over HTTP
type Service struct {
	app UsersApp
}

// NewService creates a new users HTTP service
func NewService(app UsersApp) *Service {
	return &Service{app: app}
}

// AuthRoutes mounts the unauthenticated sign-in endpoints.
func (s *Service) AuthRoutes(r chi.Router) {
	r.Post("/login", s.Login)
	r.Post("/register", s.Register)
	r.Post("/google", s.LoginWithGoogle)
	r.Get("/verify", s.Verify)
}

// ProfileRoutes mounts endpoints that require an authenticated caller.
func (s *Service) ProfileRoutes(r chi.Router) {
	r.Get("/users/profile", s.GetProfile)
	r.Put("/users/profile", s.UpdateProfile)
}

func (s *Service) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	res, err := s.app.Register(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, res)
}

func (s *Service) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	res, err := s.app.Login(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, res)
}

func (s *Service) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	res, err := s.app.LoginWithGoogle(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, res)
}

func (s *Service) Verify(w http.ResponseWriter, r *http.Request) {
	token, err := identity.BearerToken(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	user, err := s.app.Verify(r.Context(), token)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, map[string]any{"isValid": true, "user": user})
}

func (s *Service) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.app.Profile(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, user)
}

func (s *Service) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	user, err := s.app.UpdateProfile(r.Context(), identity.UserID(r.Context()), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, user)
}
