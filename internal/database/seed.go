package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"seogen/internal/models"
)

// seedLanguages is the initial language registry. English is the base
// language every translation fans out from.
var seedLanguages = []models.Language{
	{Code: "en", Name: "English", NativeName: "English", IsActive: true, IsDefault: true, Position: 1},
	{Code: "es", Name: "Spanish", NativeName: "Español", IsActive: true, Position: 2},
	{Code: "de", Name: "German", NativeName: "Deutsch", IsActive: true, Position: 3},
	{Code: "fr", Name: "French", NativeName: "Français", IsActive: true, Position: 4},
	{Code: "it", Name: "Italian", NativeName: "Italiano", IsActive: true, Position: 5},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", IsActive: false, Position: 6},
}

// seedTemplates are starter English templates for every page type, so a
// fresh development database can run Regenerate straight away.
var seedTemplates = []models.Template{
	{
		PageType:   models.PageTypeLeagueStandings,
		Language:   "en",
		BodyFormat: models.BodyFormatHTML,
		Body: `<h2>{leagueName} standings {season}</h2>
<p>The {season} {leagueName} table in {country} is led by <strong>{club1}</strong> with {club1Points} points, ahead of {club2} and {club3}.</p>
<p>{teamCount} clubs compete for the title this season. Follow every matchday to see how the race at the top and the fight against relegation unfold.</p>`,
		Mappings: []models.VariableMapping{
			{Variable: "leagueName", Expression: "apiResponse.league.name"},
			{Variable: "season", Expression: "apiResponse.league.season"},
			{Variable: "country", Expression: "apiResponse.league.country"},
			{Variable: "club1", Expression: "apiResponse.league.standings.0.0.team.name"},
			{Variable: "club1Points", Expression: "apiResponse.league.standings.0.0.points"},
			{Variable: "club2", Expression: "apiResponse.league.standings.0.1.team.name"},
			{Variable: "club3", Expression: "apiResponse.league.standings.0.2.team.name"},
			{Variable: "teamCount", Expression: "apiResponse.league.standings.0.#"},
		},
	},
	{
		PageType:   models.PageTypeTeamProfile,
		Language:   "en",
		BodyFormat: models.BodyFormatHTML,
		Body: `<h2>{teamName}</h2>
<p>Founded in {founded}, {teamName} play their home games at {venue} in {city}, a stadium that holds {capacity} supporters.</p>
<p>In the current {leagueName} season the club sits in position {rank} with {points} points.</p>`,
		Mappings: []models.VariableMapping{
			{Variable: "teamName", Expression: "apiResponse.team.name"},
			{Variable: "founded", Expression: "apiResponse.team.founded"},
			{Variable: "venue", Expression: "apiResponse.venue.name"},
			{Variable: "city", Expression: "apiResponse.venue.city"},
			{Variable: "capacity", Expression: "apiResponse.venue.capacity"},
			{Variable: "leagueName", Expression: "apiResponse.standing.league.name"},
			{Variable: "rank", Expression: "apiResponse.standing.rank"},
			{Variable: "points", Expression: "apiResponse.standing.points"},
		},
	},
}

// Seed populates the database with development data: the language registry
// and starter templates. Each table is only seeded while it is empty.
func Seed(db *sql.DB) error {
	if err := seedLanguageRegistry(db); err != nil {
		return err
	}
	return seedStarterTemplates(db)
}

func seedLanguageRegistry(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM languages").Scan(&count); err != nil {
		return fmt.Errorf("seed check languages: %w", err)
	}
	if count > 0 {
		slog.Info("languages already seeded, skipping")
		return nil
	}

	for _, l := range seedLanguages {
		_, err := db.Exec(`
			INSERT INTO languages (code, name, native_name, is_active, is_default, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, l.Code, l.Name, l.NativeName, l.IsActive, l.IsDefault, l.Position)
		if err != nil {
			return fmt.Errorf("seed insert language %s: %w", l.Code, err)
		}
	}

	slog.Info("database seeded with languages", "count", len(seedLanguages))
	return nil
}

func seedStarterTemplates(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM seo_templates").Scan(&count); err != nil {
		return fmt.Errorf("seed check templates: %w", err)
	}
	if count > 0 {
		slog.Info("templates already seeded, skipping")
		return nil
	}

	for _, t := range seedTemplates {
		mappings, err := json.Marshal(t.Mappings)
		if err != nil {
			return fmt.Errorf("seed marshal mappings: %w", err)
		}
		_, err = db.Exec(`
			INSERT INTO seo_templates (page_type, language, template_body, body_format, variable_mappings)
			VALUES ($1, $2, $3, $4, $5)
		`, t.PageType, t.Language, t.Body, t.BodyFormat, mappings)
		if err != nil {
			return fmt.Errorf("seed insert template %s/%s: %w", t.PageType, t.Language, err)
		}
	}

	slog.Info("database seeded with starter templates", "count", len(seedTemplates))
	return nil
}
