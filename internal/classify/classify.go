package classify

import (
	"strings"

	"github.com/mohammad-safakhou/localseo/models"
)

type rule struct {
	category models.Category
	keywords []string
}

// detection order matters: the first matching category wins
var categoryRules = []rule{
	{models.CategoryRestaurant, []string{"restaurant", "cafe", "diner", "bistro", "pizzeria", "grill"}},
	{models.CategorySalon, []string{"salon", "spa", "beauty", "hair", "nail"}},
	{models.CategoryRetail, []string{"store", "shop", "retail", "boutique", "market"}},
	{models.CategoryFitness, []string{"gym", "fitness", "workout", "training", "yoga"}},
	{models.CategoryHealthcare, []string{"clinic", "medical", "doctor", "dental", "pharmacy"}},
}

var cuisines = []string{
	"Italian", "Mexican", "Chinese", "Japanese", "Indian", "Thai", "American",
	"French", "Mediterranean", "Greek", "Korean", "Vietnamese", "Spanish", "German",
}

// dish and venue hints checked after the cuisine names themselves
var cuisineHints = []struct {
	hint    string
	cuisine string
}{
	{"pizza", "Italian"},
	{"taco", "Mexican"},
	{"sushi", "Japanese"},
	{"curry", "Indian"},
	{"bistro", "French"},
}

var displayNames = map[models.Category]string{
	models.CategoryRestaurant: "Food & Dining",
	models.CategorySalon:      "Beauty & Wellness",
	models.CategoryRetail:     "Retail & Shopping",
	models.CategoryFitness:    "Health & Fitness",
	models.CategoryHealthcare: "Healthcare",
	models.CategoryOther:      "Other",
}

var seoKeywords = map[models.Category][]string{
	models.CategoryRestaurant: {"dining", "food", "restaurant", "cafe", "cuisine", "meal"},
	models.CategorySalon:      {"beauty", "salon", "hair", "styling", "spa", "wellness"},
	models.CategoryRetail:     {"shopping", "store", "retail", "products", "boutique"},
	models.CategoryFitness:    {"gym", "fitness", "workout", "training", "exercise", "health"},
	models.CategoryHealthcare: {"medical", "healthcare", "clinic", "doctor", "wellness"},
}

// DetectCategory classifies a business by keyword substrings in its name.
func DetectCategory(name string) models.Category {
	lower := strings.ToLower(name)
	for _, r := range categoryRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return models.CategoryOther
}

// ResolveCategory prefers an explicit valid category over name detection.
func ResolveCategory(explicit, name string) models.Category {
	if c, ok := models.ParseCategory(explicit); ok {
		return c
	}
	return DetectCategory(name)
}

// DetectCuisine guesses a cuisine label from the business name, defaulting to "Local".
func DetectCuisine(name string) string {
	lower := strings.ToLower(name)
	for _, c := range cuisines {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	for _, h := range cuisineHints {
		if strings.Contains(lower, h.hint) {
			return h.cuisine
		}
	}
	return "Local"
}

// Display returns the human label for a category.
func Display(c models.Category) string {
	if d, ok := displayNames[c]; ok {
		return d
	}
	return displayNames[models.CategoryOther]
}

// Keywords returns the SEO keywords associated with a category.
func Keywords(c models.Category) []string {
	if kw, ok := seoKeywords[c]; ok {
		return kw
	}
	return []string{"service", "business", "professional"}
}
