package generation

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mohammad-safakhou/localseo/internal/classify"
	"github.com/mohammad-safakhou/localseo/models"
)

const DefaultRating = 4.5

var templates = map[models.Category][]string{
	models.CategoryRestaurant: {
		"{name} - Best {cuisine} in {location} | {rating}★",
		"{name} - Top-Rated {cuisine} Restaurant in {location}",
		"{name} - {location}'s Premier {cuisine} Dining Experience",
		"{name} - Award-Winning {cuisine} in {location}",
		"{name} - {rating}★ {cuisine} Excellence in {location}",
	},
	models.CategorySalon: {
		"{name} - Best Hair Salon in {location} | {rating}★",
		"{name} - Luxury Beauty Salon in {location}",
		"{name} - {location}'s Premier Beauty Destination",
		"{name} - {rating}★ Professional Hair & Beauty in {location}",
		"{name} - Expert Beauty Services in {location}",
	},
	models.CategoryRetail: {
		"{name} - Best Shopping in {location} | {rating}★",
		"{name} - Premium Retail Store in {location}",
		"{name} - {location}'s Top Shopping Destination",
		"{name} - {rating}★ Quality Products in {location}",
		"{name} - Trusted Retailer in {location}",
	},
	models.CategoryFitness: {
		"{name} - Best Gym in {location} | {rating}★",
		"{name} - Premium Fitness Center in {location}",
		"{name} - {location}'s Top Fitness Destination",
		"{name} - {rating}★ Professional Training in {location}",
		"{name} - Elite Fitness in {location}",
	},
	models.CategoryHealthcare: {
		"{name} - Best Healthcare in {location} | {rating}★",
		"{name} - Premier Medical Care in {location}",
		"{name} - {location}'s Trusted Healthcare Provider",
		"{name} - {rating}★ Professional Medical Services in {location}",
		"{name} - Quality Healthcare in {location}",
	},
	models.CategoryOther: {
		"{name} - Best Business in {location} | {rating}★",
		"{name} - {location}'s Premier Service Provider",
		"{name} - {rating}★ Quality Services in {location}",
		"{name} - Professional Services in {location}",
		"{name} - Trusted Business in {location}",
	},
}

var leftoverPlaceholder = regexp.MustCompile(`\{[^}]+\}`)

// TemplateBackend fills fixed per-category templates. It never fails for a valid descriptor.
type TemplateBackend struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplateBackend uses rng for Pick; nil seeds from the clock.
func NewTemplateBackend(rng *rand.Rand) *TemplateBackend {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TemplateBackend{rng: rng}
}

// Generate fills every template of the resolved category in a fixed order.
func (t *TemplateBackend) Generate(_ context.Context, req Request) (Result, error) {
	cat := resolveCategory(req)
	vars := templateVars(req.Descriptor.Name, req.Descriptor.Location, req.Rating)
	filled := make([]string, 0, len(templates[cat]))
	for _, tpl := range templates[cat] {
		filled = append(filled, fillTemplate(tpl, vars))
	}
	count := req.Count
	if count <= 0 {
		count = 5
	}
	return Result{
		Headlines:  Normalize(filled, count),
		Provenance: models.ProvenanceTemplate,
		Model:      "template",
	}, nil
}

// Pick fills one randomly chosen template for the category.
func (t *TemplateBackend) Pick(category models.Category, name, location string, rating float64) string {
	list, ok := templates[category]
	if !ok {
		list = templates[models.CategoryOther]
	}
	t.mu.Lock()
	i := t.rng.Intn(len(list))
	t.mu.Unlock()
	return fillTemplate(list[i], templateVars(name, location, rating))
}

func resolveCategory(req Request) models.Category {
	if c, ok := models.ParseCategory(string(req.Category)); ok {
		return c
	}
	return classify.ResolveCategory(req.Descriptor.MainType, req.Descriptor.Name)
}

func templateVars(name, location string, rating float64) map[string]string {
	if rating <= 0 {
		rating = DefaultRating
	}
	return map[string]string{
		"name":     name,
		"location": location,
		"rating":   strconv.FormatFloat(rating, 'f', 1, 64),
		"cuisine":  classify.DetectCuisine(name),
	}
}

// fillTemplate drops unknown placeholders from tpl, then substitutes vars in a single
// pass so placeholder-like text inside a value is never expanded.
func fillTemplate(tpl string, vars map[string]string) string {
	tpl = leftoverPlaceholder.ReplaceAllStringFunc(tpl, func(m string) string {
		if _, ok := vars[m[1:len(m)-1]]; ok {
			return m
		}
		return ""
	})
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tpl))
}
