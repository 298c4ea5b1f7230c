package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/localseo/internal/prompts"
	"github.com/mohammad-safakhou/localseo/internal/runtime"
)

// PromptsHandler exposes the prompt registry.
type PromptsHandler struct {
	Registry *prompts.Registry
	Secret   []byte
	Logger   *log.Logger
}

// Register mounts the public listing and the admin-only add-prompt route.
// Without a secret every add-prompt call is refused.
func (h *PromptsHandler) Register(g *echo.Group) {
	g.GET("/prompts", h.list)
	if len(h.Secret) == 0 {
		g.POST("/add-prompt", func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "prompt administration disabled")
		})
		return
	}
	g.POST("/add-prompt", h.add, runtime.EchoAuthMiddleware(h.Secret), runtime.RequireScopes(runtime.ScopePromptsWrite))
}

// Add prompt
//
//	@Summary		Register a prompt template
//	@Description	Adds or replaces a runtime prompt; requires an admin token with prompts:write
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		AddPromptRequest	true	"Prompt"
//	@Success		200		{object}	AddPromptResponse
//	@Failure		400		{object}	HTTPError
//	@Failure		401		{object}	HTTPError
//	@Failure		403		{object}	HTTPError
//	@Router			/api/business/add-prompt [post]
func (h *PromptsHandler) add(c echo.Context) error {
	var req AddPromptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" || strings.TrimSpace(req.Prompt) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields: key, prompt")
	}
	if err := h.Registry.Add(req.Key, req.Prompt); err != nil {
		switch {
		case errors.Is(err, prompts.ErrInvalidKey), errors.Is(err, prompts.ErrTooLong), errors.Is(err, prompts.ErrRegistryFull):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return fmt.Errorf("add prompt: %w", err)
	}
	if h.Logger != nil {
		sub, _ := runtime.SubjectFromContext(c.Request().Context())
		h.Logger.Printf("prompt %q registered by %s", req.Key, sub)
	}
	return c.JSON(http.StatusOK, AddPromptResponse{
		Success:          true,
		Message:          fmt.Sprintf("Custom prompt '%s' added successfully", req.Key),
		AvailablePrompts: h.Registry.Keys(),
	})
}

// List prompts
//
//	@Summary	List prompt keys
//	@Tags		prompts
//	@Produce	json
//	@Success	200	{object}	PromptsResponse
//	@Router		/api/business/prompts [get]
func (h *PromptsHandler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, PromptsResponse{Success: true, Prompts: h.Registry.Keys()})
}
