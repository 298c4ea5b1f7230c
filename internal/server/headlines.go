package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/localseo/internal/generation"
	"github.com/mohammad-safakhou/localseo/internal/headline"
	"github.com/mohammad-safakhou/localseo/internal/metrics"
	"github.com/mohammad-safakhou/localseo/internal/prompts"
	"github.com/mohammad-safakhou/localseo/models"
)

// HeadlinesHandler serves cached headline variants, generating a set on the first request per business.
type HeadlinesHandler struct {
	Cache   *headline.Cache
	Backend generation.Backend
	Prompts *prompts.Registry
	// DefaultPrompt is the prompt used when a request names none (generation.prompt).
	DefaultPrompt string
	Count         int
	Metrics       *metrics.Metrics
}

func (h *HeadlinesHandler) Register(g *echo.Group) {
	g.POST("/local-headlines", h.localHeadlines)
}

// Local headlines
//
//	@Summary		Get a headline variant
//	@Description	Returns variant index of the business's headline set; the set is generated once and cached
//	@Tags			headlines
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LocalHeadlinesRequest	true	"Business descriptor"
//	@Success		200		{object}	LocalHeadlinesResponse
//	@Failure		400		{object}	HTTPError
//	@Failure		500		{object}	HTTPError
//	@Router			/api/business/local-headlines [post]
func (h *HeadlinesHandler) localHeadlines(c echo.Context) error {
	var req LocalHeadlinesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	d := req.Descriptor()
	if !d.Complete() {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields.")
	}
	promptKey := strings.TrimSpace(req.Prompt)
	if promptKey != "" && !h.Prompts.Has(promptKey) {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown prompt: %s", promptKey))
	}

	defaultPrompt := h.defaultPrompt()
	if promptKey == "" {
		promptKey = defaultPrompt
	}

	fp := headline.DeriveKey(d)
	key := headline.NamespacedKey(promptKey, defaultPrompt, fp)
	set, cached, err := h.Cache.GetOrCreate(c.Request().Context(), key, h.generator(d, fp, promptKey))
	if err != nil {
		return fmt.Errorf("local headlines: %w", err)
	}

	text, index, total := headline.Select(set, req.Index)
	return c.JSON(http.StatusOK, LocalHeadlinesResponse{
		Headline:   text,
		Index:      index,
		Total:      total,
		Provenance: set.Provenance,
		Cached:     cached,
	})
}

func (h *HeadlinesHandler) defaultPrompt() string {
	if h.DefaultPrompt == "" {
		return headline.DefaultPrompt
	}
	return h.DefaultPrompt
}

func (h *HeadlinesHandler) generator(d models.BusinessDescriptor, fp headline.Fingerprint, promptKey string) headline.GeneratorFunc {
	return func(ctx context.Context) (models.HeadlineSet, error) {
		res, err := h.Backend.Generate(ctx, generation.Request{
			Descriptor: d,
			Count:      h.Count,
			PromptKey:  promptKey,
		})
		if err != nil {
			return models.HeadlineSet{}, err
		}
		h.Metrics.Generated(string(res.Provenance))
		return res.HeadlineSet(fp.String()), nil
	}
}
