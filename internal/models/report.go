// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeStatus describes how a single unit of a batch run ended.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	// OutcomeDegraded is a success whose text contains at least one
	// expression error sentinel.
	OutcomeDegraded OutcomeStatus = "degraded"
	OutcomeFailed   OutcomeStatus = "failed"
)

// EntityOutcome records the result of generating one entity in a bulk run.
type EntityOutcome struct {
	EntityID   string        `json:"entity_id"`
	EntityName string        `json:"entity_name"`
	Status     OutcomeStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
}

// BulkReport aggregates a bulk generation run over every entity of a page
// type in one language. Degraded entities are counted in Succeeded too.
type BulkReport struct {
	RunID      uuid.UUID       `json:"run_id"`
	PageType   PageType        `json:"page_type"`
	Language   string          `json:"language"`
	Total      int             `json:"total"`
	Succeeded  int             `json:"succeeded"`
	Degraded   int             `json:"degraded"`
	Failed     int             `json:"failed"`
	Outcomes   []EntityOutcome `json:"outcomes"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// SucceededIDs returns the ids of every entity whose content was written.
func (r *BulkReport) SucceededIDs() []string {
	var ids []string
	for _, o := range r.Outcomes {
		if o.Status != OutcomeFailed {
			ids = append(ids, o.EntityID)
		}
	}
	return ids
}

// LanguageOutcome records the result of translating into one language.
type LanguageOutcome struct {
	Language string        `json:"language"`
	Status   OutcomeStatus `json:"status"`
	Error    string        `json:"error,omitempty"`
}

// TranslationReport summarizes one fan-out from the base language. Processed
// always equals the number of target languages written.
type TranslationReport struct {
	PageType     PageType          `json:"page_type"`
	EntityID     string            `json:"entity_id"`
	BaseLanguage string            `json:"base_language"`
	Processed    int               `json:"processed"`
	Succeeded    int               `json:"succeeded"`
	Failed       int               `json:"failed"`
	Outcomes     []LanguageOutcome `json:"outcomes"`
	FinishedAt   time.Time         `json:"finished_at"`
}
