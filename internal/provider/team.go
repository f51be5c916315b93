// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"seogen/internal/models"
	"seogen/internal/sportsdata"
)

// TeamProfile serves the team-profile page type. Entity ids have the form
// "<leagueID>-<teamID>" so the team's league standing can be fetched with a
// single upstream call.
type TeamProfile struct {
	api     SportsAPI
	leagues []League
	season  int
}

// NewTeamProfile creates the team-profile provider.
func NewTeamProfile(api SportsAPI, leagues []League, season int) *TeamProfile {
	if len(leagues) == 0 {
		leagues = DefaultLeagues
	}
	return &TeamProfile{api: api, leagues: leagues, season: season}
}

func (p *TeamProfile) PageType() models.PageType { return models.PageTypeTeamProfile }

// TeamEntityID builds the entity id of a team within a league.
func TeamEntityID(leagueID int, teamID string) string {
	return strconv.Itoa(leagueID) + "-" + teamID
}

func parseTeamEntityID(id string) (leagueID int, teamID string, err error) {
	league, team, ok := strings.Cut(id, "-")
	if !ok || team == "" {
		return 0, "", fmt.Errorf("%w: team entity id %q must be <league>-<team>", ErrEntityNotFound, id)
	}
	leagueID, err = strconv.Atoi(league)
	if err != nil {
		return 0, "", fmt.Errorf("%w: league part of %q is not numeric", ErrEntityNotFound, id)
	}
	return leagueID, team, nil
}

// ListEntities returns every team of every catalog league, in catalog order.
// One failing league fails the listing; a partial population would make a
// bulk run silently skip teams.
func (p *TeamProfile) ListEntities(ctx context.Context) ([]models.Entity, error) {
	var entities []models.Entity
	for _, l := range p.leagues {
		teams, err := p.api.Teams(ctx, l.ID, p.season)
		if err != nil {
			return nil, fmt.Errorf("list teams of league %d: %w", l.ID, err)
		}
		for _, t := range teams {
			entities = append(entities, models.Entity{ID: TeamEntityID(l.ID, t.ID), Name: t.Name})
		}
	}
	return entities, nil
}

// FetchContext fetches the team and venue and attaches the team's row of
// its league table under "standing". A failed standings call leaves
// "standing" null; the team itself is still rendered.
func (p *TeamProfile) FetchContext(ctx context.Context, entity models.Entity) (Context, error) {
	leagueID, teamID, err := parseTeamEntityID(entity.ID)
	if err != nil {
		return nil, err
	}

	data, err := p.api.Team(ctx, teamID)
	if errors.Is(err, sportsdata.ErrNoData) {
		return nil, fmt.Errorf("%w: no team %s", ErrEntityNotFound, teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch team %s: %w", teamID, err)
	}

	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%w: team %s is not an object", ErrEntityNotFound, teamID)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode team %s: %w", teamID, err)
	}

	payload["standing"] = json.RawMessage("null")
	standings, err := p.api.Standings(ctx, leagueID, p.season)
	if err != nil {
		slog.Warn("team standing unavailable", "league", leagueID, "team", teamID, "error", err)
	} else if row := findStanding(standings, teamID); row != nil {
		payload["standing"] = row
	}

	merged, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode team %s: %w", teamID, err)
	}
	return WrapContext(merged)
}

// standingLeague is the league summary attached to a standing row.
type standingLeague struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int64  `json:"season"`
}

// findStanding returns the team's table row with a "league" summary added,
// or nil if the team is not in any group of the table.
func findStanding(standings json.RawMessage, teamID string) json.RawMessage {
	league := gjson.GetBytes(standings, "league")

	var row gjson.Result
	league.Get("standings").ForEach(func(_, group gjson.Result) bool {
		group.ForEach(func(_, r gjson.Result) bool {
			if r.Get("team.id").String() == teamID {
				row = r
				return false
			}
			return true
		})
		return !row.Exists()
	})
	if !row.Exists() {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(row.Raw), &fields); err != nil {
		return nil
	}
	summary, err := json.Marshal(standingLeague{
		ID:      league.Get("id").Int(),
		Name:    league.Get("name").String(),
		Country: league.Get("country").String(),
		Season:  league.Get("season").Int(),
	})
	if err != nil {
		return nil
	}
	fields["league"] = summary

	out, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return out
}
