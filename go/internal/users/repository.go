package users

import (
	"context"
	"errors"

	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/models"
)

// Repository implements user data access over the document store
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new users repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func userRef(id string) docstore.Ref {
	return docstore.Doc(models.UsersCollection, id)
}

// CreateUser stores a new user document
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.store.Create(ctx, userRef(user.ID), user); err != nil {
		if errors.Is(err, docstore.ErrAlreadyExists) {
			return apperrors.New(apperrors.CodeConflict, "User already exists")
		}
		return apperrors.Persistence("Error creating user", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.store.Get(ctx, userRef(id), &user); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Persistence("Error getting user", err)
	}
	return &user, nil
}

// UpdateUser overwrites an existing user document
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.store.Set(ctx, userRef(user.ID), user); err != nil {
		return apperrors.Persistence("Error updating user", err)
	}
	return nil
}
