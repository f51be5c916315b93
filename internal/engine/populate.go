// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"fmt"
	"sort"
	"strings"

	"seogen/internal/models"
)

// Populate replaces every {key} in template with its value. Placeholders
// without a value are left as they are. Substitution is a single pass, so
// a value that itself contains "{other}" is not expanded again.
func Populate(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// ValidateMappings checks that every mapping names a usable placeholder
// and an expression, and that no variable is mapped twice.
func ValidateMappings(mappings []models.VariableMapping) error {
	seen := make(map[string]bool, len(mappings))
	for i, m := range mappings {
		name := strings.TrimSpace(m.Variable)
		switch {
		case name == "":
			return fmt.Errorf("%w: mapping %d: variable is required", ErrValidation, i)
		case name != m.Variable:
			return fmt.Errorf("%w: variable %q has surrounding whitespace", ErrValidation, m.Variable)
		case strings.ContainsAny(name, "{}"):
			return fmt.Errorf("%w: variable %q must not contain braces", ErrValidation, name)
		case strings.TrimSpace(m.Expression) == "":
			return fmt.Errorf("%w: variable %q: expression is required", ErrValidation, name)
		case seen[name]:
			return fmt.Errorf("%w: variable %q is mapped twice", ErrValidation, name)
		}
		seen[name] = true
	}
	return nil
}

// normalizeFormat defaults an empty body format to HTML and rejects
// unknown ones.
func normalizeFormat(f models.BodyFormat) (models.BodyFormat, error) {
	switch f {
	case "", models.BodyFormatHTML:
		return models.BodyFormatHTML, nil
	case models.BodyFormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown body format %q", ErrValidation, f)
	}
}

// ValidateTemplate checks a template before it is saved and normalizes its
// body format.
func ValidateTemplate(t *models.Template) error {
	if !t.PageType.Valid() {
		return fmt.Errorf("%w: unknown page type %q", ErrValidation, t.PageType)
	}
	if strings.TrimSpace(t.Language) == "" {
		return fmt.Errorf("%w: language is required", ErrValidation)
	}
	if strings.TrimSpace(t.Body) == "" {
		return fmt.Errorf("%w: template body is required", ErrValidation)
	}
	format, err := normalizeFormat(t.BodyFormat)
	if err != nil {
		return err
	}
	t.BodyFormat = format
	return ValidateMappings(t.Mappings)
}
