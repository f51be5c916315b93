package handlers

import (
	"fmt"
	"unicode/utf8"

	"seogen/internal/models"
)

// Validation limits for request fields.
const (
	maxTemplateBodyLen = 100_000
	maxMappings        = 200
	maxExpressionLen   = 500
	maxEntityIDLen     = 200
	maxLanguageLen     = 10
)

// validateTemplateSize checks template inputs against the size limits and
// returns the first error found. Shape checks live in the engine.
func validateTemplateSize(body string, mappings []models.VariableMapping) string {
	if utf8.RuneCountInString(body) > maxTemplateBodyLen {
		return "Template body is too long (max 100,000 characters)."
	}
	if len(mappings) > maxMappings {
		return fmt.Sprintf("Too many variable mappings (max %d).", maxMappings)
	}
	for _, m := range mappings {
		if utf8.RuneCountInString(m.Expression) > maxExpressionLen {
			return fmt.Sprintf("Expression for %q is too long (max %d characters).", m.Variable, maxExpressionLen)
		}
	}
	return ""
}

// validateKey checks the entity id and language of a request.
func validateKey(entityID, language string) string {
	if utf8.RuneCountInString(entityID) > maxEntityIDLen {
		return "Entity id is too long (max 200 characters)."
	}
	if len(language) > maxLanguageLen {
		return "Language code is too long (max 10 characters)."
	}
	return ""
}
