package server

import (
	"time"

	"github.com/mohammad-safakhou/localseo/models"
)

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// ValidationFailure is returned when a request body fails validation.
type ValidationFailure struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details"`
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// AdminTokenRequest represents the admin login payload.
type AdminTokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// BusinessDataRequest is the /data payload.
type BusinessDataRequest struct {
	Name        string `json:"name" validate:"min=2,max=100"`
	Location    string `json:"location" validate:"min=2,max=200"`
	Category    string `json:"category" validate:"omitempty,oneof=restaurant salon retail fitness healthcare other"`
	MainType    string `json:"mainType"`
	SubType     string `json:"subType"`
	Description string `json:"description"`
}

// BusinessDataResponse wraps the generated record.
type BusinessDataResponse struct {
	Success bool         `json:"success"`
	Data    BusinessData `json:"data"`
}

// BusinessData is the record plus the headline fields the UI shows.
type BusinessData struct {
	models.BusinessRecord
	Headline      string    `json:"headline"`
	HeadlineScore int       `json:"headlineScore"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// RegenerateHeadlineRequest carries a record previously returned by /data.
type RegenerateHeadlineRequest struct {
	BusinessData *models.BusinessRecord `json:"businessData"`
}

// RegenerateHeadlineResponse returns a fresh template headline.
type RegenerateHeadlineResponse struct {
	Success       bool      `json:"success"`
	Headline      string    `json:"headline"`
	HeadlineScore int       `json:"headlineScore"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// CategoryOption is one entry of the category picker.
type CategoryOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoriesResponse lists the picker categories.
type CategoriesResponse struct {
	Categories []CategoryOption `json:"categories"`
}

// SuggestionsResponse lists matching locations.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// LocalHeadlinesRequest asks for one variant of a business's headline set.
type LocalHeadlinesRequest struct {
	Name        string `json:"name"`
	MainType    string `json:"mainType"`
	SubType     string `json:"subType"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Index       int    `json:"index"`
	Prompt      string `json:"prompt"`
}

func (r LocalHeadlinesRequest) Descriptor() models.BusinessDescriptor {
	return models.BusinessDescriptor{
		Name:        r.Name,
		MainType:    r.MainType,
		SubType:     r.SubType,
		Location:    r.Location,
		Description: r.Description,
	}
}

// LocalHeadlinesResponse is the selected variant.
type LocalHeadlinesResponse struct {
	Headline   string            `json:"headline"`
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Provenance models.Provenance `json:"provenance"`
	Cached     bool              `json:"cached"`
}

// AddPromptRequest registers a prompt template.
type AddPromptRequest struct {
	Key    string `json:"key"`
	Prompt string `json:"prompt"`
}

// AddPromptResponse confirms a registered prompt.
type AddPromptResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	AvailablePrompts []string `json:"availablePrompts"`
}

// PromptsResponse lists prompt keys.
type PromptsResponse struct {
	Success bool     `json:"success"`
	Prompts []string `json:"prompts"`
}

// CacheStatsResponse is the read-only cache view.
type CacheStatsResponse struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
}
