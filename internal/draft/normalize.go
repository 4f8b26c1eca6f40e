package draft

import (
	"strings"

	"github.com/danielolaszy/quill/pkg/models"
)

// Field names the extractor asks the AI to fill.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldOwner       = "owner"
	FieldTeam        = "team"
	FieldCycle       = "cycle"
	FieldProject     = "project"
)

// NormalizeField trims v and maps blank values to nil.
func NormalizeField(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Normalize builds a ParsedDraft from a decoded AI object. Only string values
// are taken; null, missing and non-string values leave the field absent.
func Normalize(fields map[string]any) models.ParsedDraft {
	get := func(key string) *string {
		s, ok := fields[key].(string)
		if !ok {
			return nil
		}
		return NormalizeField(&s)
	}

	return models.ParsedDraft{
		Title:       get(FieldTitle),
		Description: get(FieldDescription),
		Owner:       get(FieldOwner),
		Team:        get(FieldTeam),
		Cycle:       get(FieldCycle),
		Project:     get(FieldProject),
	}
}
