package business

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mohammad-safakhou/localseo/internal/classify"
	"github.com/mohammad-safakhou/localseo/models"
)

type span struct{ min, max float64 }

type profile struct {
	rating  span
	reviews span
}

var profiles = map[models.Category]profile{
	models.CategoryRestaurant: {rating: span{3.2, 4.8}, reviews: span{50, 2000}},
	models.CategorySalon:      {rating: span{3.5, 4.9}, reviews: span{30, 800}},
	models.CategoryRetail:     {rating: span{3.0, 4.6}, reviews: span{20, 1500}},
	models.CategoryFitness:    {rating: span{3.8, 4.9}, reviews: span{40, 1200}},
	models.CategoryHealthcare: {rating: span{3.5, 4.7}, reviews: span{25, 600}},
	models.CategoryOther:      {rating: span{3.0, 5.0}, reviews: span{10, 1000}},
}

var (
	majorCities = []string{"new york", "los angeles", "chicago", "houston", "phoenix"}
	areaCodes   = []string{"212", "213", "312", "713", "602", "215", "210", "619", "214", "408"}
	mailDomains = []string{"gmail.com", "yahoo.com", "outlook.com", "business.com"}
	streetNums  = []string{"123", "456", "789", "321", "654", "987"}
	streetNames = []string{"Main St", "Oak Ave", "Pine Rd", "Elm St", "Maple Dr", "Cedar Ln"}
	weekdays    = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

	nonAlnum   = regexp.MustCompile(`[^a-z0-9]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Input is the validated business submission.
type Input struct {
	Name        string
	Location    string
	Category    models.Category
	MainType    string
	SubType     string
	Description string
}

// Generator fabricates plausible business metrics. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator builds a generator; nil rng or clock fall back to time-seeded defaults.
func NewGenerator(rng *rand.Rand, now func() time.Time) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now}
}

func (g *Generator) Generate(in Input) models.BusinessRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	cat := in.Category
	if _, ok := profiles[cat]; !ok {
		cat = classify.DetectCategory(in.Name)
	}
	p := profiles[cat]
	now := g.now().UTC()

	rating := g.rating(p.rating)
	reviews := g.reviewCount(p.reviews, in.Location)

	return models.BusinessRecord{
		ID:                 businessID(in.Name, in.Location, now),
		Name:               in.Name,
		Location:           in.Location,
		Category:           cat,
		CategoryDisplay:    classify.Display(cat),
		MainType:           in.MainType,
		SubType:            in.SubType,
		Description:        in.Description,
		Rating:             rating,
		ReviewCount:        reviews,
		RatingDistribution: ratingDistribution(rating, reviews),
		BusinessHours:      businessHours(cat),
		ContactInfo:        g.contact(in.Name, in.Location),
		SocialMetrics:      g.social(rating, now),
		PerformanceMetrics: g.performance(rating),
		LastUpdated:        now,
	}
}

func businessID(name, location string, now time.Time) string {
	n := strings.ToLower(whitespace.ReplaceAllString(name, ""))
	l := strings.ToLower(whitespace.ReplaceAllString(location, ""))
	return fmt.Sprintf("%s-%s-%s", prefix(n, 6), prefix(l, 4), strconv.FormatInt(now.UnixMilli(), 36))
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// round mirrors half-up rounding.
func round(x float64) float64 { return math.Floor(x + 0.5) }

func (g *Generator) between(s span) float64 {
	return g.rng.Float64()*(s.max-s.min) + s.min
}

// rating picks a value in range, snapped to tenths, halves or whole stars.
func (g *Generator) rating(s span) float64 {
	base := g.between(s)
	switch d := g.rng.Float64(); {
	case d < 0.3:
		return round(base*10) / 10
	case d < 0.7:
		return round(base*2) / 2
	default:
		return round(base)
	}
}

func (g *Generator) reviewCount(s span, location string) int {
	return int(round(g.between(s) * LocationMultiplier(location)))
}

// LocationMultiplier scales review volume for large markets.
func LocationMultiplier(location string) float64 {
	city := strings.ToLower(location)
	for _, c := range majorCities {
		if strings.Contains(city, c) {
			return 1.5
		}
	}
	if strings.Contains(city, "ca") || strings.Contains(city, "ny") || strings.Contains(city, "tx") {
		return 1.2
	}
	return 1.0
}

func ratingPercentages(rating float64) [5]float64 {
	// index 0 is five stars
	switch {
	case rating >= 4.5:
		return [5]float64{0.6, 0.25, 0.1, 0.03, 0.02}
	case rating >= 4.0:
		return [5]float64{0.4, 0.35, 0.15, 0.07, 0.03}
	case rating >= 3.5:
		return [5]float64{0.25, 0.35, 0.25, 0.1, 0.05}
	default:
		return [5]float64{0.1, 0.25, 0.3, 0.2, 0.15}
	}
}

func ratingDistribution(rating float64, total int) map[string]int {
	pct := ratingPercentages(rating)
	out := make(map[string]int, 5)
	left := total
	for i, p := range pct {
		n := int(round(float64(left) * p))
		if n > left {
			n = left
		}
		out[strconv.Itoa(5-i)] = n
		left -= n
	}
	return out
}

func businessHours(cat models.Category) map[string]models.TimeRange {
	hours := make(map[string]models.TimeRange, len(weekdays))
	for _, d := range weekdays[:5] {
		hours[d] = models.TimeRange{Open: "09:00", Close: "17:00"}
	}
	hours["saturday"] = models.TimeRange{Open: "10:00", Close: "16:00"}
	hours["sunday"] = models.TimeRange{Open: "11:00", Close: "15:00"}

	switch cat {
	case models.CategoryRestaurant:
		for _, d := range weekdays[:4] {
			hours[d] = models.TimeRange{Open: hours[d].Open, Close: "22:00"}
		}
		hours["friday"] = models.TimeRange{Open: "09:00", Close: "23:00"}
		hours["saturday"] = models.TimeRange{Open: "10:00", Close: "23:00"}
		hours["sunday"] = models.TimeRange{Open: "11:00", Close: "21:00"}
	case models.CategorySalon:
		hours["monday"] = models.TimeRange{Open: "10:00", Close: "17:00"}
		hours["sunday"] = models.TimeRange{Open: "12:00", Close: "18:00"}
	}
	return hours
}

func (g *Generator) pick(list []string) string {
	return list[g.rng.Intn(len(list))]
}

func (g *Generator) contact(name, location string) models.ContactInfo {
	clean := nonAlnum.ReplaceAllString(strings.ToLower(name), "")
	return models.ContactInfo{
		Phone:   fmt.Sprintf("(%s) %d-%d", g.pick(areaCodes), g.rng.Intn(900)+100, g.rng.Intn(9000)+1000),
		Email:   fmt.Sprintf("contact@%s.%s", clean, g.pick(mailDomains)),
		Website: fmt.Sprintf("https://www.%s.com", clean),
		Address: fmt.Sprintf("%s %s, %s", g.pick(streetNums), g.pick(streetNames), location),
	}
}

func (g *Generator) social(rating float64, now time.Time) models.SocialMetrics {
	followers := int(math.Floor(rating*1000)) + g.rng.Intn(500)
	engagement := (rating-3)*0.1 + g.rng.Float64()*0.05
	return models.SocialMetrics{
		Followers:      followers,
		Following:      int(math.Floor(float64(followers) * 0.3)),
		Posts:          int(math.Floor(float64(followers) * 0.1)),
		EngagementRate: round(engagement*100) / 100,
		LastPost:       now.Add(-time.Duration(g.rng.Intn(7)) * 24 * time.Hour),
	}
}

func (g *Generator) performance(rating float64) models.PerformanceMetrics {
	growth := (rating-3.5)*0.2 + g.rng.Float64()*0.1
	return models.PerformanceMetrics{
		MonthlyRevenue:       int(math.Floor(rating*50000)) + g.rng.Intn(20000),
		GrowthRate:           round(growth*100) / 100,
		CustomerSatisfaction: int(round(rating * 20)),
		MarketShare:          int(round((rating-3)*10 + g.rng.Float64()*5)),
		EmployeeCount:        int(math.Floor(rating*5)) + g.rng.Intn(10),
	}
}
