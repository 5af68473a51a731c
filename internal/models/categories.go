package models

// CategoryOther is the fallback category assigned when AI batch
// categorization fails or returns a category outside the vocabulary.
const CategoryOther = "other"

// Categories is the fixed vocabulary offered to the AI collaborator for
// batch categorization. Responses outside this list are rejected.
var Categories = []string{
	"housing", "utilities", "food", "transport", "technology",
	"entertainment", "finance", "education", "healthcare",
	"shopping", "telecommunications", CategoryOther,
}

// IsKnownCategory reports whether c belongs to the fixed vocabulary.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
