package teams

import (
	"context"

	"github.com/mcdev12/survivor/go/internal/models"
)

// Provider fetches the competition's teams from the feed
type Provider interface {
	Teams(ctx context.Context) ([]models.Team, error)
}

// SyncResult represents the result of syncing teams from the feed
type SyncResult struct {
	TotalProcessed int `json:"totalProcessed"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
}
