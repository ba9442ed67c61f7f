package ingest

import (
	"unicode"

	"github.com/thebtf/promptscope/pkg/models"
)

// classify assigns topical categories by evaluating the ordered rule table.
// Categories are non-exclusive; text containing CJK ideographs additionally
// gets the language category, and text matching nothing gets the catch-all.
func (r *Reader) classify(text string) []models.Category {
	var cats []models.Category
	for _, rule := range r.rules.CategoryRules {
		for _, pattern := range rule.Patterns {
			if pattern.MatchString(text) {
				cats = append(cats, rule.Category)
				break
			}
		}
	}

	if containsCJK(text) {
		cats = append(cats, models.CategoryChineseLanguage)
	}
	if len(cats) == 0 {
		cats = []models.Category{models.CategoryGeneral}
	}
	return cats
}

// containsCJK reports whether s contains any CJK ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
