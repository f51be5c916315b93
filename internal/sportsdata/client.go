// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sportsdata is a thin client for an API-Football (v3) compatible
// sports data service. It returns raw JSON payloads; interpreting them is
// left to the entity providers and the expression evaluator.
package sportsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public API-Football endpoint.
const DefaultBaseURL = "https://v3.football.api-sports.io"

// ErrNoData is returned when the upstream envelope carries an empty
// "response" array for the requested id.
var ErrNoData = errors.New("sportsdata: no data for request")

// Config holds the credentials for the sports data service.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls the sports data API. It is safe for concurrent use.
type Client struct {
	config Config
	client *http.Client
}

// New creates a client. Empty BaseURL and Timeout fall back to defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Standings returns the first element of /standings for a league season:
// an object with a "league" key holding the league and its tables.
func (c *Client) Standings(ctx context.Context, leagueID, season int) (json.RawMessage, error) {
	body, err := c.get(ctx, "/standings", url.Values{
		"league": {strconv.Itoa(leagueID)},
		"season": {strconv.Itoa(season)},
	})
	if err != nil {
		return nil, err
	}
	return first(body)
}

// Team returns the first element of /teams?id=: an object with "team" and
// "venue" keys.
func (c *Client) Team(ctx context.Context, teamID string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/teams", url.Values{"id": {teamID}})
	if err != nil {
		return nil, err
	}
	return first(body)
}

// TeamSummary is one entry of a league's team list.
type TeamSummary struct {
	ID   string
	Name string
}

// Teams lists the teams participating in a league season.
func (c *Client) Teams(ctx context.Context, leagueID, season int) ([]TeamSummary, error) {
	body, err := c.get(ctx, "/teams", url.Values{
		"league": {strconv.Itoa(leagueID)},
		"season": {strconv.Itoa(season)},
	})
	if err != nil {
		return nil, err
	}

	var teams []TeamSummary
	gjson.GetBytes(body, "response").ForEach(func(_, item gjson.Result) bool {
		teams = append(teams, TeamSummary{
			ID:   item.Get("team.id").String(),
			Name: item.Get("team.name").String(),
		})
		return true
	})
	return teams, nil
}

// get performs a GET request and returns the response envelope. API-Football
// reports request problems with HTTP 200 and a non-empty "errors" field, so
// both the status code and the envelope are checked.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.config.BaseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sportsdata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-apisports-key", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sportsdata http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sportsdata read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sportsdata API error (status %d): %s", resp.StatusCode, string(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("sportsdata: invalid JSON response from %s", path)
	}

	// "errors" is [] on success and an object or non-empty array otherwise.
	if apiErrs := gjson.GetBytes(body, "errors"); apiErrs.Exists() {
		if (apiErrs.IsObject() && len(apiErrs.Map()) > 0) || (apiErrs.IsArray() && len(apiErrs.Array()) > 0) {
			return nil, fmt.Errorf("sportsdata API error: %s", apiErrs.Raw)
		}
	}
	return body, nil
}

func first(body []byte) (json.RawMessage, error) {
	item := gjson.GetBytes(body, "response.0")
	if !item.Exists() {
		return nil, ErrNoData
	}
	return json.RawMessage(item.Raw), nil
}
