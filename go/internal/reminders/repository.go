package reminders

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/models"
)

// Repository stores reminder tasks at reminders/{matchday} and reads the
// recipient directory from users and their membership mirrors.
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new reminders repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func taskRef(matchday int) docstore.Ref {
	return docstore.Doc(models.RemindersCollection, strconv.Itoa(matchday))
}

// GetTask returns the task for matchday, nil when none was recorded.
func (r *Repository) GetTask(ctx context.Context, matchday int) (*models.ReminderTask, error) {
	var task models.ReminderTask
	if err := r.store.Get(ctx, taskRef(matchday), &task); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reminder task: %w", err)
	}
	return &task, nil
}

// SaveTask upserts task.
func (r *Repository) SaveTask(ctx context.Context, task models.ReminderTask) error {
	if err := r.store.Set(ctx, taskRef(task.Matchday), task); err != nil {
		return fmt.Errorf("failed to save reminder task: %w", err)
	}
	return nil
}

// ActiveRecipients lists every user with an email who still has lives in
// at least one active league membership.
func (r *Repository) ActiveRecipients(ctx context.Context) ([]models.Recipient, error) {
	users, err := docstore.FindAs[models.User](ctx, r.store, models.UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var out []models.Recipient
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		memberships, err := docstore.FindAs[models.Membership](ctx, r.store,
			docstore.Doc(models.UsersCollection, u.ID).Sub(models.MembershipsCollection),
			docstore.Where("isActive", docstore.OpEqual, true))
		if err != nil {
			return nil, fmt.Errorf("failed to list memberships of %s: %w", u.ID, err)
		}
		for _, m := range memberships {
			if m.Lives > 0 {
				out = append(out, models.Recipient{UserID: u.ID, Email: u.Email, Name: u.Name()})
				break
			}
		}
	}
	return out, nil
}
