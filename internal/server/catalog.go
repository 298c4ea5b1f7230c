package server

import "strings"

var categoryOptions = []CategoryOption{
	{ID: "service", Name: "Service Businesses"},
	{ID: "restaurant", Name: "Restaurant"},
	{ID: "salon", Name: "Salon"},
	{ID: "cafe", Name: "Cafe"},
	{ID: "gym", Name: "Gym"},
	{ID: "hotel", Name: "Hotel"},
	{ID: "clinic", Name: "Clinic"},
	{ID: "lawfirm", Name: "Law Firm"},
	{ID: "consulting", Name: "Consulting"},
	{ID: "autoservice", Name: "Auto Service"},
	{ID: "retail", Name: "Retail & Commerce"},
	{ID: "retailstore", Name: "Retail Store"},
	{ID: "grocerystore", Name: "Grocery Store"},
	{ID: "pharmacy", Name: "Pharmacy"},
	{ID: "electronics", Name: "Electronics Store"},
	{ID: "professional", Name: "Professional Services"},
	{ID: "accounting", Name: "Accounting Firm"},
	{ID: "insurance", Name: "Insurance Agency"},
	{ID: "marketing", Name: "Marketing Agency"},
	{ID: "itservices", Name: "IT Services"},
	{ID: "realestate", Name: "Real Estate & Property"},
	{ID: "realestateonly", Name: "Real Estate"},
	{ID: "propertymgmt", Name: "Property Management"},
	{ID: "construction", Name: "Construction"},
	{ID: "healthwellness", Name: "Health & Wellness"},
	{ID: "dental", Name: "Dental Office"},
	{ID: "veterinary", Name: "Veterinary Clinic"},
	{ID: "physicaltherapy", Name: "Physical Therapy"},
	{ID: "personal", Name: "Personal Services"},
	{ID: "spa", Name: "Spa"},
	{ID: "drycleaning", Name: "Dry Cleaning"},
	{ID: "photography", Name: "Photography"},
	{ID: "foodbeverage", Name: "Food & Beverage"},
	{ID: "bakery", Name: "Bakery"},
	{ID: "bar", Name: "Bar/Pub"},
	{ID: "catering", Name: "Catering"},
	{ID: "other", Name: "Other"},
	{ID: "childcare", Name: "Childcare"},
	{ID: "tutoring", Name: "Tutoring"},
	{ID: "eventplanning", Name: "Event Planning"},
	{ID: "cleaning", Name: "Cleaning Service"},
}

var knownLocations = []string{
	"New York, NY",
	"Los Angeles, CA",
	"Chicago, IL",
	"Houston, TX",
	"Phoenix, AZ",
	"Philadelphia, PA",
	"San Antonio, TX",
	"San Diego, CA",
	"Dallas, TX",
	"San Jose, CA",
}

const maxSuggestions = 5

// suggestLocations matches query case-insensitively; queries shorter than two characters match nothing.
func suggestLocations(query string) []string {
	out := []string{}
	if len([]rune(query)) < 2 {
		return out
	}
	q := strings.ToLower(query)
	for _, loc := range knownLocations {
		if strings.Contains(strings.ToLower(loc), q) {
			out = append(out, loc)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}
