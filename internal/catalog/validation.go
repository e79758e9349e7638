package catalog

import (
	"math"
	"strconv"
	"time"

	"github.com/mrlokans/catalog/internal/entities"
)

// parseDate accepts only YYYY-MM-DD. An empty value is the absent date.
func parseDate(value, field, message string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(entities.DateLayout, value)
	if err != nil {
		return nil, invalid(field, message)
	}
	return &t, nil
}

func parseRating(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	rating, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return nil, invalid("rating", "Rating must be numeric.")
	}
	return &rating, nil
}

func isFourDigitYear(value string) bool {
	return len(value) == 4 && isDigits(value)
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
