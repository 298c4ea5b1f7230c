package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/localseo/internal/business"
	"github.com/mohammad-safakhou/localseo/internal/classify"
	"github.com/mohammad-safakhou/localseo/internal/generation"
	"github.com/mohammad-safakhou/localseo/models"
)

// BusinessHandler serves the synthetic business profile and catalog endpoints.
type BusinessHandler struct {
	Generator *business.Generator
	Templates *generation.TemplateBackend
	Now       func() time.Time
}

func (h *BusinessHandler) Register(g *echo.Group) {
	g.POST("/data", h.data)
	g.POST("/regenerate-headline", h.regenerateHeadline)
	g.GET("/categories", h.categories)
	g.GET("/location-suggestions", h.locationSuggestions)
	g.POST("/headline", h.removedHeadline)
}

func (h *BusinessHandler) now() time.Time {
	if h.Now == nil {
		return time.Now().UTC()
	}
	return h.Now().UTC()
}

// Business data
//
//	@Summary		Generate business data
//	@Description	Fabricates a business profile with ratings, hours and metrics plus one template headline
//	@Tags			business
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		BusinessDataRequest	true	"Business"
//	@Success		200		{object}	BusinessDataResponse
//	@Failure		400		{object}	ValidationFailure
//	@Failure		500		{object}	HTTPError
//	@Router			/api/business/data [post]
func (h *BusinessHandler) data(c echo.Context) error {
	var req BusinessDataRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	category, ok := models.ParseCategory(req.Category)
	if !ok {
		category = classify.DetectCategory(req.Name)
	}
	record := h.Generator.Generate(business.Input{
		Name:        req.Name,
		Location:    req.Location,
		Category:    category,
		MainType:    req.MainType,
		SubType:     req.SubType,
		Description: req.Description,
	})
	headline := h.Templates.Pick(record.Category, record.Name, record.Location, record.Rating)

	return c.JSON(http.StatusOK, BusinessDataResponse{
		Success: true,
		Data: BusinessData{
			BusinessRecord: record,
			Headline:       headline,
			HeadlineScore:  generation.Score(headline, record),
			GeneratedAt:    h.now(),
		},
	})
}

// Regenerate headline
//
//	@Summary	Regenerate a template headline for an existing business record
//	@Tags		business
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		RegenerateHeadlineRequest	true	"Business record"
//	@Success	200		{object}	RegenerateHeadlineResponse
//	@Failure	400		{object}	HTTPError
//	@Router		/api/business/regenerate-headline [post]
func (h *BusinessHandler) regenerateHeadline(c echo.Context) error {
	var req RegenerateHeadlineRequest
	if err := c.Bind(&req); err != nil || req.BusinessData == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Business data is required")
	}
	record := *req.BusinessData
	category, ok := models.ParseCategory(string(record.Category))
	if !ok {
		category = classify.DetectCategory(record.Name)
	}
	record.Category = category

	headline := h.Templates.Pick(category, record.Name, record.Location, record.Rating)
	return c.JSON(http.StatusOK, RegenerateHeadlineResponse{
		Success:       true,
		Headline:      headline,
		HeadlineScore: generation.Score(headline, record),
		GeneratedAt:   h.now(),
	})
}

// Categories
//
//	@Summary	List business categories
//	@Tags		business
//	@Produce	json
//	@Success	200	{object}	CategoriesResponse
//	@Router		/api/business/categories [get]
func (h *BusinessHandler) categories(c echo.Context) error {
	return c.JSON(http.StatusOK, CategoriesResponse{Categories: categoryOptions})
}

// Location suggestions
//
//	@Summary	Suggest locations
//	@Tags		business
//	@Produce	json
//	@Param		query	query		string	false	"Partial location"
//	@Success	200		{object}	SuggestionsResponse
//	@Router		/api/business/location-suggestions [get]
func (h *BusinessHandler) locationSuggestions(c echo.Context) error {
	return c.JSON(http.StatusOK, SuggestionsResponse{Suggestions: suggestLocations(c.QueryParam("query"))})
}

// Headline (removed)
//
//	@Summary	Removed endpoint
//	@Tags		business
//	@Produce	json
//	@Failure	501	{object}	HTTPError
//	@Router		/api/business/headline [post]
func (h *BusinessHandler) removedHeadline(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotImplemented, "Headline generation via OpenAI has been removed.")
}
