package teams

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	teams []models.Team
	err   error
	calls int
}

func (p *fakeProvider) Teams(context.Context) ([]models.Team, error) {
	p.calls++
	return p.teams, p.err
}

var premierTeams = []models.Team{
	{ID: 57, Name: "Arsenal FC", TLA: "ARS"},
	{ID: 58, Name: "Aston Villa FC", TLA: "AVL"},
}

func TestListTeamsSyncsOnce(t *testing.T) {
	provider := &fakeProvider{teams: premierTeams}
	app := NewApp(NewRepository(docstore.NewMemoryStore()), provider)
	ctx := context.Background()

	teams, err := app.ListTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, premierTeams, teams)

	_, err = app.ListTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestSyncTeamsCountsCreatedAndUpdated(t *testing.T) {
	provider := &fakeProvider{teams: premierTeams[:1]}
	app := NewApp(NewRepository(docstore.NewMemoryStore()), provider)
	ctx := context.Background()

	res, err := app.SyncTeamsFromAPI(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{TotalProcessed: 1, Created: 1}, res)

	provider.teams = premierTeams
	res, err = app.SyncTeamsFromAPI(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{TotalProcessed: 2, Created: 1, Updated: 1}, res)
}

func TestFetchTeamsUpstreamFailure(t *testing.T) {
	provider := &fakeProvider{err: apperrors.Upstream("Error fetching teams", assert.AnError)}
	r := chi.NewRouter()
	NewService(NewApp(NewRepository(docstore.NewMemoryStore()), provider)).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fetchTeams", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
