// Package footballdata reads competitions, fixtures and teams from
// football-data.org.
package footballdata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mcdev12/survivor/go/clients"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/models"
)

const DefaultBaseURL = "https://api.football-data.org/v4"

type Client struct {
	*clients.BaseClient
	competition string
}

// NewClient creates a client for one competition code (e.g. "PL").
func NewClient(baseURL, apiKey, competition string, opts ...clients.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		BaseClient:  clients.NewBaseClient(baseURL, opts...),
		competition: competition,
	}

	client.SetHeader("X-Auth-Token", apiKey)

	return client
}

func (c *Client) competitionPath() string {
	return "/competitions/" + url.PathEscape(c.competition)
}

// CurrentMatchday returns the competition's current matchday number.
func (c *Client) CurrentMatchday(ctx context.Context) (int, error) {
	var resp CompetitionResponse
	if err := c.GetJSON(ctx, c.competitionPath(), &resp); err != nil {
		return 0, upstream("Error fetching current matchday", err)
	}
	if resp.CurrentSeason.CurrentMatchday <= 0 {
		return 0, apperrors.Upstream("Feed reported no current matchday", nil)
	}
	return resp.CurrentSeason.CurrentMatchday, nil
}

// Matchday returns the fixtures of matchday n with the feed's date window.
func (c *Client) Matchday(ctx context.Context, n int) (models.Matchday, error) {
	if n <= 0 {
		return models.Matchday{}, apperrors.Validation("Matchday must be a positive number")
	}
	var resp MatchesResponse
	endpoint := c.competitionPath() + "/matches?matchday=" + strconv.Itoa(n)
	if err := c.GetJSON(ctx, endpoint, &resp); err != nil {
		return models.Matchday{}, upstream(fmt.Sprintf("Error fetching matchday %d", n), err)
	}

	md := models.Matchday{
		Number:    n,
		StartDate: resp.ResultSet.First,
		EndDate:   resp.ResultSet.Last,
		Matches:   make([]models.Match, 0, len(resp.Matches)),
	}
	for _, m := range resp.Matches {
		md.Matches = append(md.Matches, m.toModel())
	}
	return md, nil
}

// Teams returns the competition's teams.
func (c *Client) Teams(ctx context.Context) ([]models.Team, error) {
	var resp TeamsResponse
	if err := c.GetJSON(ctx, c.competitionPath()+"/teams", &resp); err != nil {
		return nil, upstream("Error fetching teams", err)
	}
	teams := make([]models.Team, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		teams = append(teams, t.toModel())
	}
	return teams, nil
}

func upstream(message string, err error) error {
	e := apperrors.Upstream(message, err)
	var status *clients.StatusError
	if errors.As(err, &status) {
		e.Metadata = map[string]string{"status_code": strconv.Itoa(status.StatusCode)}
	}
	return e
}
