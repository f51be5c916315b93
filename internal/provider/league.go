// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"seogen/internal/models"
	"seogen/internal/sportsdata"
)

// SportsAPI is the subset of the sports data client the providers use.
type SportsAPI interface {
	Standings(ctx context.Context, leagueID, season int) (json.RawMessage, error)
	Team(ctx context.Context, teamID string) (json.RawMessage, error)
	Teams(ctx context.Context, leagueID, season int) ([]sportsdata.TeamSummary, error)
}

// League is an entry of the league catalog the providers enumerate.
type League struct {
	ID   int
	Name string
}

// DefaultLeagues are the leagues generated when no catalog is configured.
var DefaultLeagues = []League{
	{ID: 39, Name: "Premier League"},
	{ID: 140, Name: "La Liga"},
	{ID: 135, Name: "Serie A"},
	{ID: 78, Name: "Bundesliga"},
	{ID: 61, Name: "Ligue 1"},
}

// LeaguesByID builds a catalog from league ids, naming known leagues from
// DefaultLeagues. Unknown ids are named "League <id>".
func LeaguesByID(ids []int) []League {
	if len(ids) == 0 {
		return nil
	}
	out := make([]League, 0, len(ids))
	for _, id := range ids {
		l := League{ID: id, Name: "League " + strconv.Itoa(id)}
		for _, d := range DefaultLeagues {
			if d.ID == id {
				l.Name = d.Name
				break
			}
		}
		out = append(out, l)
	}
	return out
}

// LeagueStandings serves the league-standings page type: one entity per
// catalog league, with the current standings as context.
type LeagueStandings struct {
	api     SportsAPI
	leagues []League
	season  int
}

// NewLeagueStandings creates the league-standings provider.
func NewLeagueStandings(api SportsAPI, leagues []League, season int) *LeagueStandings {
	if len(leagues) == 0 {
		leagues = DefaultLeagues
	}
	return &LeagueStandings{api: api, leagues: leagues, season: season}
}

func (p *LeagueStandings) PageType() models.PageType { return models.PageTypeLeagueStandings }

// ListEntities returns the league catalog.
func (p *LeagueStandings) ListEntities(_ context.Context) ([]models.Entity, error) {
	entities := make([]models.Entity, 0, len(p.leagues))
	for _, l := range p.leagues {
		entities = append(entities, models.Entity{ID: strconv.Itoa(l.ID), Name: l.Name})
	}
	return entities, nil
}

// FetchContext fetches the league's standings for the configured season.
func (p *LeagueStandings) FetchContext(ctx context.Context, entity models.Entity) (Context, error) {
	leagueID, err := strconv.Atoi(entity.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: league id %q is not numeric", ErrEntityNotFound, entity.ID)
	}

	data, err := p.api.Standings(ctx, leagueID, p.season)
	if errors.Is(err, sportsdata.ErrNoData) {
		return nil, fmt.Errorf("%w: no standings for league %d season %d", ErrEntityNotFound, leagueID, p.season)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch standings for league %d: %w", leagueID, err)
	}
	return WrapContext(data)
}
