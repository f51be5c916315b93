// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Language is an entry of the language registry. Exactly one active
// language should be the default; it is the language content is authored
// in before translation.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	IsActive   bool   `json:"is_active"`
	IsDefault  bool   `json:"is_default"`
	Position   int    `json:"position"`
}

// SplitBase separates the base (default) language from the other active
// languages, keeping registry order for the targets. ok is false when no
// active language is flagged as default.
func SplitBase(langs []Language) (base Language, targets []Language, ok bool) {
	for _, l := range langs {
		if !l.IsActive {
			continue
		}
		if l.IsDefault && !ok {
			base = l
			ok = true
			continue
		}
		targets = append(targets, l)
	}
	return base, targets, ok
}
