package generation

import (
	"strings"
	"unicode/utf8"

	"github.com/mohammad-safakhou/localseo/internal/classify"
	"github.com/mohammad-safakhou/localseo/models"
)

var emotionalWords = []string{"best", "top", "premier", "award-winning", "excellent", "quality"}

// Score rates a headline's SEO fitness for a business on a 0..100 scale.
func Score(headline string, record models.BusinessRecord) int {
	lower := strings.ToLower(headline)
	score := 0
	if record.Name != "" && strings.Contains(lower, strings.ToLower(record.Name)) {
		score += 30
	}
	if record.Location != "" && strings.Contains(lower, strings.ToLower(record.Location)) {
		score += 25
	}
	for _, kw := range classify.Keywords(record.Category) {
		if strings.Contains(lower, kw) {
			score += 10
		}
	}
	for _, w := range emotionalWords {
		if strings.Contains(lower, w) {
			score += 5
		}
	}
	switch n := utf8.RuneCountInString(headline); {
	case n >= 45 && n <= 65:
		score += 15
	case n >= 35 && n <= 75:
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}
