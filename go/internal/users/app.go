package users

import (
	"context"
	"net/mail"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/clients/identitytoolkit"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/identity"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/rs/zerolog/log"
)

const minPasswordLength = 8

// UsersRepository defines what the app layer needs from the repository
type UsersRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// IdentityProvider signs users up and in
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (identitytoolkit.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (identitytoolkit.Session, error)
	SignInWithIdp(ctx context.Context, googleIDToken, requestURI string) (identitytoolkit.Session, error)
}

// TokenVerifier checks an ID token
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (identity.Claims, error)
}

// App handles account and profile business logic
type App struct {
	repo     UsersRepository
	idp      IdentityProvider
	verifier TokenVerifier
	clock    clockwork.Clock
}

// NewApp creates a new users App. verifier may be nil when token
// verification is disabled.
func NewApp(repo UsersRepository, idp IdentityProvider, verifier TokenVerifier, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:     repo,
		idp:      idp,
		verifier: verifier,
		clock:    clock,
	}
}

// Register creates the identity account and the user document
func (a *App) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	session, err := a.idp.SignUp(ctx, req.Email, req.Password, req.Username)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now().UTC()
	user := &models.User{
		ID:          session.LocalID,
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.Username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Msg("registered user")
	return result(session, user), nil
}

// Login signs in with email and password
func (a *App) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := validateLoginRequest(req); err != nil {
		return nil, err
	}

	session, err := a.idp.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	user, err := a.repo.GetUser(ctx, session.LocalID)
	if err != nil {
		return nil, err
	}
	return result(session, user), nil
}

// LoginWithGoogle exchanges a Google ID token and creates the user document
// on first sign-in.
func (a *App) LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*AuthResult, error) {
	if req.IDToken == "" {
		return nil, apperrors.Validation("Google ID token is required")
	}
	requestURI := req.RequestURI
	if requestURI == "" {
		requestURI = "http://localhost"
	}

	session, err := a.idp.SignInWithIdp(ctx, req.IDToken, requestURI)
	if err != nil {
		return nil, err
	}

	user, err := a.repo.GetUser(ctx, session.LocalID)
	if err == nil {
		return result(session, user), nil
	}
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return nil, err
	}

	now := a.clock.Now().UTC()
	user = &models.User{
		ID:          session.LocalID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		PhotoURL:    session.PhotoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Msg("created user on first google sign-in")
	return result(session, user), nil
}

// Verify checks token and returns the user it belongs to
func (a *App) Verify(ctx context.Context, token string) (*models.User, error) {
	if a.verifier == nil {
		return nil, apperrors.New(apperrors.CodeUnauthenticated, "Token verification is not configured")
	}
	claims, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := a.repo.GetUser(ctx, claims.UID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return nil, apperrors.New(apperrors.CodeUnauthenticated, "Invalid token")
		}
		return nil, err
	}
	return user, nil
}

// Profile returns the caller's user document
func (a *App) Profile(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthenticated, "Unauthorized")
	}
	return a.repo.GetUser(ctx, userID)
}

// UpdateProfile changes the caller's display fields
func (a *App) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthenticated, "Unauthorized")
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		return nil, apperrors.Validation("Username cannot be empty")
	}

	user, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.PhotoURL != nil {
		user.PhotoURL = *req.PhotoURL
	}
	user.UpdatedAt = a.clock.Now().UTC()

	if err := a.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func result(s identitytoolkit.Session, u *models.User) *AuthResult {
	return &AuthResult{Token: s.IDToken, RefreshToken: s.RefreshToken, ExpiresIn: s.ExpiresIn, User: u}
}

func validateRegisterRequest(req RegisterRequest) error {
	switch {
	case req.Email == "" && req.Username == "" && req.Password == "" && req.ConfirmPassword == "":
		return apperrors.Validation("Email, username, password and confirmPassword are required")
	case req.Email == "":
		return apperrors.Validation("Email is required")
	case !validEmail(req.Email):
		return apperrors.Validation("Email is invalid")
	case req.Password == "":
		return apperrors.Validation("Password is required")
	case req.ConfirmPassword == "":
		return apperrors.Validation("Confirm password is required")
	case req.Password != req.ConfirmPassword:
		return apperrors.Validation("Passwords do not match")
	case len(req.Password) < minPasswordLength:
		return apperrors.Validation("Password must be at least 8 characters long")
	case strings.TrimSpace(req.Username) == "":
		return apperrors.Validation("Username is required")
	}
	return nil
}

func validateLoginRequest(req LoginRequest) error {
	switch {
	case req.Email == "" && req.Password == "":
		return apperrors.Validation("Email and password are required")
	case req.Email == "":
		return apperrors.Validation("Email is required")
	case req.Password == "":
		return apperrors.Validation("Password is required")
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
