// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the observability hooks of the generation engine
// and the translation fan-out.
package metrics

import "time"

// Generation modes.
const (
	ModeTest       = "test"
	ModeRegenerate = "regenerate"
	ModeBulk       = "bulk"
)

// Outcome labels shared by generation and translation counters.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeDegraded  = "degraded"
	OutcomeFailed    = "failed"
)

// Recorder receives generation and translation events. Implementations
// must be safe for concurrent use.
type Recorder interface {
	IncGeneration(pageType, mode, outcome string)
	IncExpressionError(pageType string)
	IncTranslation(language, outcome string)
	ObserveBulkDuration(pageType string, d time.Duration)
}

// NoopRecorder discards every event. It is the default when metrics are
// not configured.
type NoopRecorder struct{}

func (NoopRecorder) IncGeneration(string, string, string)      {}
func (NoopRecorder) IncExpressionError(string)                {}
func (NoopRecorder) IncTranslation(string, string)            {}
func (NoopRecorder) ObserveBulkDuration(string, time.Duration) {}
