package models

import (
	"errors"
	"strings"
	"time"
)

// ErrHeadlineSetNotFound is returned when a fingerprint has no cached headlines
var ErrHeadlineSetNotFound = errors.New("headline set not found")

// Category is the coarse business classification used for templates and data profiles.
type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategorySalon      Category = "salon"
	CategoryRetail     Category = "retail"
	CategoryFitness    Category = "fitness"
	CategoryHealthcare Category = "healthcare"
	CategoryOther      Category = "other"
)

// Categories returns the valid categories in detection order.
func Categories() []Category {
	return []Category{CategoryRestaurant, CategorySalon, CategoryRetail, CategoryFitness, CategoryHealthcare, CategoryOther}
}

// ParseCategory returns the category named by s (case-insensitive).
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// BusinessDescriptor is the input tuple that identifies a headline set.
type BusinessDescriptor struct {
	Name        string `json:"name"`
	MainType    string `json:"mainType"`
	SubType     string `json:"subType"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}

// Complete reports whether every required field is non-empty.
func (d BusinessDescriptor) Complete() bool {
	return strings.TrimSpace(d.Name) != "" &&
		strings.TrimSpace(d.MainType) != "" &&
		strings.TrimSpace(d.SubType) != "" &&
		strings.TrimSpace(d.Location) != ""
}

type Provenance string

const (
	ProvenanceExternal         Provenance = "external"
	ProvenanceTemplateFallback Provenance = "template-fallback"
	ProvenanceTemplate         Provenance = "template"
)

// HeadlineSet is the ordered list of generated variants for one fingerprint.
type HeadlineSet struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	Headlines   []string   `json:"headlines"`
	Provenance  Provenance `json:"provenance"`
	Prompt      string     `json:"prompt,omitempty"`
	Model       string     `json:"model,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Clone returns a copy whose Headlines slice does not alias the receiver's.
func (s HeadlineSet) Clone() HeadlineSet {
	out := s
	out.Headlines = append([]string(nil), s.Headlines...)
	return out
}

type TimeRange struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	Address string `json:"address"`
}

type SocialMetrics struct {
	Followers      int       `json:"followers"`
	Following      int       `json:"following"`
	Posts          int       `json:"posts"`
	EngagementRate float64   `json:"engagementRate"`
	LastPost       time.Time `json:"lastPost"`
}

type PerformanceMetrics struct {
	MonthlyRevenue       int     `json:"monthlyRevenue"`
	GrowthRate           float64 `json:"growthRate"`
	CustomerSatisfaction int     `json:"customerSatisfaction"`
	MarketShare          int     `json:"marketShare"`
	EmployeeCount        int     `json:"employeeCount"`
}

// BusinessRecord is the synthetic profile returned by the data endpoint.
type BusinessRecord struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Location           string               `json:"location"`
	Category           Category             `json:"category"`
	CategoryDisplay    string               `json:"categoryDisplay"`
	MainType           string               `json:"mainType"`
	SubType            string               `json:"subType"`
	Description        string               `json:"description"`
	Rating             float64              `json:"rating"`
	ReviewCount        int                  `json:"reviewCount"`
	RatingDistribution map[string]int       `json:"ratingDistribution"`
	BusinessHours      map[string]TimeRange `json:"businessHours"`
	ContactInfo        ContactInfo          `json:"contactInfo"`
	SocialMetrics      SocialMetrics        `json:"socialMetrics"`
	PerformanceMetrics PerformanceMetrics   `json:"performanceMetrics"`
	LastUpdated        time.Time            `json:"lastUpdated"`
}

// CompletionRequest is one text-generation call against a provider.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}
