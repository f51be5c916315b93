package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"seogen/internal/models"
	"seogen/internal/sportsdata"
)

type fakeSports struct {
	standings    map[int]json.RawMessage
	teams        map[string]json.RawMessage
	leagueTeams  map[int][]sportsdata.TeamSummary
	standingsErr error
	teamsErr     error
}

func (f *fakeSports) Standings(_ context.Context, leagueID, _ int) (json.RawMessage, error) {
	if f.standingsErr != nil {
		return nil, f.standingsErr
	}
	data, ok := f.standings[leagueID]
	if !ok {
		return nil, sportsdata.ErrNoData
	}
	return data, nil
}

func (f *fakeSports) Team(_ context.Context, teamID string) (json.RawMessage, error) {
	data, ok := f.teams[teamID]
	if !ok {
		return nil, sportsdata.ErrNoData
	}
	return data, nil
}

func (f *fakeSports) Teams(_ context.Context, leagueID, _ int) ([]sportsdata.TeamSummary, error) {
	if f.teamsErr != nil {
		return nil, f.teamsErr
	}
	return f.leagueTeams[leagueID], nil
}

const premierStandings = `{"league":{"id":39,"name":"Premier League","country":"England","season":2025,
"standings":[[{"rank":1,"team":{"id":42,"name":"Arsenal"},"points":80},
{"rank":2,"team":{"id":50,"name":"Manchester City"},"points":78}]]}}`

func newFake() *fakeSports {
	return &fakeSports{
		standings: map[int]json.RawMessage{39: json.RawMessage(premierStandings)},
		teams: map[string]json.RawMessage{
			"42": json.RawMessage(`{"team":{"id":42,"name":"Arsenal","founded":1886},"venue":{"name":"Emirates Stadium","city":"London"}}`),
			"99": json.RawMessage(`{"team":{"id":99,"name":"Nobody FC"},"venue":{}}`),
		},
		leagueTeams: map[int][]sportsdata.TeamSummary{
			39:  {{ID: "42", Name: "Arsenal"}, {ID: "50", Name: "Manchester City"}},
			140: {{ID: "541", Name: "Real Madrid"}},
		},
	}
}

func TestWrapContext(t *testing.T) {
	ctx, err := WrapContext(json.RawMessage(`{"a":1}`))
	if err != nil {
		t.Fatalf("WrapContext: %v", err)
	}
	if got := gjson.GetBytes(ctx, "apiResponse.a").Int(); got != 1 {
		t.Errorf("apiResponse.a = %d, want 1", got)
	}

	empty, err := WrapContext(nil)
	if err != nil {
		t.Fatalf("WrapContext(nil): %v", err)
	}
	if string(empty) != `{"apiResponse":null}` {
		t.Errorf("WrapContext(nil) = %s", empty)
	}
}

func TestRegistry(t *testing.T) {
	fake := newFake()
	reg, err := NewRegistry(NewLeagueStandings(fake, nil, 2025))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	p, err := reg.Lookup(models.PageTypeLeagueStandings)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.PageType() != models.PageTypeLeagueStandings {
		t.Errorf("PageType = %q", p.PageType())
	}

	if _, err := reg.Lookup(models.PageTypeTeamProfile); !errors.Is(err, ErrUnsupportedPageType) {
		t.Errorf("Lookup unregistered: err = %v, want ErrUnsupportedPageType", err)
	}
	if _, err := reg.Lookup("match-report"); !errors.Is(err, ErrUnsupportedPageType) {
		t.Errorf("Lookup unknown: err = %v, want ErrUnsupportedPageType", err)
	}

	if err := reg.Register(NewTeamProfile(fake, nil, 2025)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	got := reg.PageTypes()
	if len(got) != 2 || got[0] != models.PageTypeLeagueStandings || got[1] != models.PageTypeTeamProfile {
		t.Errorf("PageTypes = %v", got)
	}
}

type bogusProvider struct{ *LeagueStandings }

func (bogusProvider) PageType() models.PageType { return "bogus" }

func TestRegistryRejectsInvalidPageType(t *testing.T) {
	if _, err := NewRegistry(bogusProvider{}); !errors.Is(err, ErrUnsupportedPageType) {
		t.Errorf("err = %v, want ErrUnsupportedPageType", err)
	}
}

func TestEntityFromID(t *testing.T) {
	e := EntityFromID("39")
	if e.ID != "39" || e.Name != "39" {
		t.Errorf("EntityFromID = %+v", e)
	}
}

func TestLeagueStandings(t *testing.T) {
	p := NewLeagueStandings(newFake(), []League{{ID: 39, Name: "Premier League"}, {ID: 140, Name: "La Liga"}}, 2025)

	entities, err := p.ListEntities(context.Background())
	if err != nil {
		t.Fatalf("ListEntities: %v", err)
	}
	if len(entities) != 2 || entities[0].ID != "39" || entities[0].Name != "Premier League" {
		t.Errorf("entities = %+v", entities)
	}

	ctx, err := p.FetchContext(context.Background(), entities[0])
	if err != nil {
		t.Fatalf("FetchContext: %v", err)
	}
	if got := gjson.GetBytes(ctx, "apiResponse.league.standings.0.0.team.name").String(); got != "Arsenal" {
		t.Errorf("leader = %q, want Arsenal", got)
	}

	if _, err := p.FetchContext(context.Background(), entities[1]); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("no standings: err = %v, want ErrEntityNotFound", err)
	}
	if _, err := p.FetchContext(context.Background(), EntityFromID("abc")); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("bad id: err = %v, want ErrEntityNotFound", err)
	}
}

func TestLeagueStandingsDefaultCatalog(t *testing.T) {
	p := NewLeagueStandings(newFake(), nil, 2025)
	entities, _ := p.ListEntities(context.Background())
	if len(entities) != len(DefaultLeagues) {
		t.Errorf("got %d entities, want %d", len(entities), len(DefaultLeagues))
	}
}

func TestLeagueStandingsUpstreamError(t *testing.T) {
	fake := newFake()
	fake.standingsErr = errors.New("status 500")
	p := NewLeagueStandings(fake, nil, 2025)

	_, err := p.FetchContext(context.Background(), EntityFromID("39"))
	if err == nil || errors.Is(err, ErrEntityNotFound) {
		t.Errorf("err = %v, want upstream error", err)
	}
}

func TestTeamProfileListEntities(t *testing.T) {
	p := NewTeamProfile(newFake(), []League{{ID: 39}, {ID: 140}}, 2025)

	entities, err := p.ListEntities(context.Background())
	if err != nil {
		t.Fatalf("ListEntities: %v", err)
	}
	want := []string{"39-42", "39-50", "140-541"}
	if len(entities) != len(want) {
		t.Fatalf("got %d entities, want %d", len(entities), len(want))
	}
	for i, id := range want {
		if entities[i].ID != id {
			t.Errorf("entities[%d].ID = %q, want %q", i, entities[i].ID, id)
		}
	}
	if entities[0].Name != "Arsenal" {
		t.Errorf("entities[0].Name = %q", entities[0].Name)
	}
}

func TestTeamProfileListEntitiesError(t *testing.T) {
	fake := newFake()
	fake.teamsErr = errors.New("boom")
	p := NewTeamProfile(fake, nil, 2025)

	if _, err := p.ListEntities(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestTeamProfileFetchContext(t *testing.T) {
	p := NewTeamProfile(newFake(), nil, 2025)

	ctx, err := p.FetchContext(context.Background(), EntityFromID("39-42"))
	if err != nil {
		t.Fatalf("FetchContext: %v", err)
	}

	tests := map[string]string{
		"apiResponse.team.name":            "Arsenal",
		"apiResponse.venue.city":           "London",
		"apiResponse.standing.rank":        "1",
		"apiResponse.standing.points":      "80",
		"apiResponse.standing.league.name": "Premier League",
	}
	for path, want := range tests {
		if got := gjson.GetBytes(ctx, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestTeamProfileMissingStanding(t *testing.T) {
	p := NewTeamProfile(newFake(), nil, 2025)

	ctx, err := p.FetchContext(context.Background(), EntityFromID("39-99"))
	if err != nil {
		t.Fatalf("FetchContext: %v", err)
	}
	if got := gjson.GetBytes(ctx, "apiResponse.standing").Type; got != gjson.Null {
		t.Errorf("standing type = %v, want Null", got)
	}
	if got := gjson.GetBytes(ctx, "apiResponse.team.name").String(); got != "Nobody FC" {
		t.Errorf("team.name = %q", got)
	}
}

func TestTeamProfileStandingsFailureKeepsTeam(t *testing.T) {
	fake := newFake()
	fake.standingsErr = errors.New("status 503")
	p := NewTeamProfile(fake, nil, 2025)

	ctx, err := p.FetchContext(context.Background(), EntityFromID("39-42"))
	if err != nil {
		t.Fatalf("FetchContext: %v", err)
	}
	if got := gjson.GetBytes(ctx, "apiResponse.standing").Type; got != gjson.Null {
		t.Errorf("standing type = %v, want Null", got)
	}
}

func TestTeamProfileNotFound(t *testing.T) {
	p := NewTeamProfile(newFake(), nil, 2025)

	for _, id := range []string{"39-7", "42", "x-42", "39-"} {
		if _, err := p.FetchContext(context.Background(), EntityFromID(id)); !errors.Is(err, ErrEntityNotFound) {
			t.Errorf("FetchContext(%q): err = %v, want ErrEntityNotFound", id, err)
		}
	}
}

func TestTeamProfileNonObjectPayload(t *testing.T) {
	for _, raw := range []string{"null", "[]", `"Arsenal"`, "42"} {
		t.Run(raw, func(t *testing.T) {
			fake := newFake()
			fake.teams["7"] = json.RawMessage(raw)
			p := NewTeamProfile(fake, nil, 2025)

			_, err := p.FetchContext(context.Background(), EntityFromID("39-7"))
			if !errors.Is(err, ErrEntityNotFound) {
				t.Errorf("err = %v, want ErrEntityNotFound", err)
			}
		})
	}
}

func TestLeaguesByID(t *testing.T) {
	if got := LeaguesByID(nil); got != nil {
		t.Errorf("LeaguesByID(nil) = %v, want nil", got)
	}

	got := LeaguesByID([]int{140, 999})
	want := []League{{ID: 140, Name: "La Liga"}, {ID: 999, Name: "League 999"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
