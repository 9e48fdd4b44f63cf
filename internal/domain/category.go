package domain

import (
	"strings"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// Category classifies the municipal area a feedback item is about.
type Category string

const (
	CategoryTraffic        Category = "TRAFFIC"
	CategoryEnvironment    Category = "ENVIRONMENT"
	CategoryLighting       Category = "LIGHTING"
	CategoryVandalism      Category = "VANDALISM"
	CategoryAdministration Category = "ADMINISTRATION"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryTraffic,
	CategoryEnvironment,
	CategoryLighting,
	CategoryVandalism,
	CategoryAdministration,
}

func ParseCategory(raw string) (Category, error) {
	category := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if !category.Valid() {
		return "", apperrors.NewValidationError("unknown category", map[string]any{"category": raw})
	}
	return category, nil
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
