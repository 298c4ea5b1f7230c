package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/localseo/config"
	"github.com/mohammad-safakhou/localseo/internal/business"
	"github.com/mohammad-safakhou/localseo/internal/generation"
	"github.com/mohammad-safakhou/localseo/internal/headline"
	"github.com/mohammad-safakhou/localseo/internal/prompts"
	"github.com/mohammad-safakhou/localseo/internal/runtime"
	"github.com/mohammad-safakhou/localseo/models"
	"github.com/mohammad-safakhou/localseo/provider"
	"github.com/mohammad-safakhou/localseo/repository/memory_repository"
)

const stubHeadlines = `["Best Pizza in Chicago","Joe's Pizza: Chicago Favorite","Top Slices Downtown","Fresh Pies Daily","Award-Winning Crust"]`

type stubProvider struct {
	reply string
	err   error
	calls int32
}

func (s *stubProvider) Complete(context.Context, provider.Completion) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.reply, s.err
}

func (s *stubProvider) Name() string { return "stub:test" }

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func testRegistry(t *testing.T) *prompts.Registry {
	t.Helper()
	reg, err := prompts.NewRegistry(prompts.Options{MaxEntries: 8, MaxLength: 2000, Logger: quiet()})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func testEcho() *echo.Echo {
	return newEcho(config.ServerConfig{CORSOrigins: []string{"*"}}, nil)
}

func newHeadlinesEcho(t *testing.T, p provider.Provider) (*echo.Echo, *prompts.Registry) {
	t.Helper()
	return newHeadlinesEchoWithDefault(t, p, "default")
}

func newHeadlinesEchoWithDefault(t *testing.T, p provider.Provider, defaultPrompt string) (*echo.Echo, *prompts.Registry) {
	t.Helper()
	reg := testRegistry(t)
	templates := generation.NewTemplateBackend(rand.New(rand.NewSource(1)))
	h := &HeadlinesHandler{
		Cache: headline.NewCache(memory_repository.NewHeadlineRepository(16, time.Hour), headline.CacheOptions{
			TTL:            time.Hour,
			FallbackTTL:    time.Minute,
			DedupeInflight: true,
			Logger:         quiet(),
		}),
		Backend: &generation.FallbackChain{
			Primary:  &generation.ExternalBackend{Provider: p, Prompts: reg, DefaultPrompt: defaultPrompt, Logger: quiet()},
			Fallback: templates,
			Logger:   quiet(),
		},
		Prompts:       reg,
		DefaultPrompt: defaultPrompt,
		Count:         5,
	}
	e := testEcho()
	h.Register(e.Group("/api/business"))
	return e, reg
}

func doJSON(e *echo.Echo, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

const joesPizza = `{"name":"Joe's Pizza","mainType":"restaurant","subType":"pizzeria","location":"Chicago, IL"`

func TestLocalHeadlinesGeneratesOnceThenServesFromCache(t *testing.T) {
	p := &stubProvider{reply: stubHeadlines}
	e, _ := newHeadlinesEcho(t, p)

	rec := doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	first := decode[LocalHeadlinesResponse](t, rec)
	if first.Headline != "Best Pizza in Chicago" || first.Index != 0 || first.Total != 5 {
		t.Fatalf("unexpected first response: %+v", first)
	}
	if first.Cached || first.Provenance != models.ProvenanceExternal {
		t.Fatalf("expected fresh external set, got %+v", first)
	}

	rec = doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`,"index":2}`, nil)
	second := decode[LocalHeadlinesResponse](t, rec)
	if !second.Cached || second.Headline != "Top Slices Downtown" || second.Index != 2 {
		t.Fatalf("unexpected cached response: %+v", second)
	}
	if n := atomic.LoadInt32(&p.calls); n != 1 {
		t.Fatalf("expected one provider call, got %d", n)
	}
}

func TestLocalHeadlinesFallsBackToTemplates(t *testing.T) {
	e, _ := newHeadlinesEcho(t, &stubProvider{err: errors.New("connection refused")})

	rec := doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[LocalHeadlinesResponse](t, rec)
	if resp.Provenance != models.ProvenanceTemplateFallback || resp.Total == 0 {
		t.Fatalf("expected template fallback, got %+v", resp)
	}
	if !strings.Contains(resp.Headline, "Joe's Pizza") && !strings.Contains(resp.Headline, "Chicago") {
		t.Fatalf("template headline does not mention the business: %q", resp.Headline)
	}
}

func TestLocalHeadlinesClampsIndex(t *testing.T) {
	e, _ := newHeadlinesEcho(t, &stubProvider{reply: stubHeadlines})

	for _, tc := range []struct {
		index, want int
	}{{-3, 0}, {99, 4}, {3, 3}} {
		body := joesPizza + `,"index":` + jsonInt(tc.index) + `}`
		resp := decode[LocalHeadlinesResponse](t, doJSON(e, http.MethodPost, "/api/business/local-headlines", body, nil))
		if resp.Index != tc.want || resp.Total != 5 {
			t.Fatalf("index %d: expected %d, got %+v", tc.index, tc.want, resp)
		}
	}
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestLocalHeadlinesMissingFields(t *testing.T) {
	e, _ := newHeadlinesEcho(t, &stubProvider{reply: stubHeadlines})
	rec := doJSON(e, http.MethodPost, "/api/business/local-headlines", `{"name":"Joe's Pizza","location":"Chicago"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if resp := decode[HTTPError](t, rec); resp.Error != "Missing required fields." {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}

func TestLocalHeadlinesUnknownPrompt(t *testing.T) {
	e, _ := newHeadlinesEcho(t, &stubProvider{reply: stubHeadlines})
	rec := doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`,"prompt":"nope"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLocalHeadlinesPromptNamespacesCache(t *testing.T) {
	p := &stubProvider{reply: stubHeadlines}
	e, _ := newHeadlinesEcho(t, p)

	doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`}`, nil)
	rec := doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`,"prompt":"local"}`, nil)
	if resp := decode[LocalHeadlinesResponse](t, rec); resp.Cached {
		t.Fatalf("a different prompt must not share the default cache entry")
	}
	if n := atomic.LoadInt32(&p.calls); n != 2 {
		t.Fatalf("expected two provider calls, got %d", n)
	}
}

func TestLocalHeadlinesKeysByConfiguredDefaultPrompt(t *testing.T) {
	p := &stubProvider{reply: stubHeadlines}
	e, _ := newHeadlinesEchoWithDefault(t, p, "local")

	doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`}`, nil)

	rec := doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`,"prompt":"local"}`, nil)
	if resp := decode[LocalHeadlinesResponse](t, rec); !resp.Cached {
		t.Fatalf("naming the configured default prompt must reuse its set")
	}
	if n := atomic.LoadInt32(&p.calls); n != 1 {
		t.Fatalf("expected one provider call, got %d", n)
	}

	rec = doJSON(e, http.MethodPost, "/api/business/local-headlines", joesPizza+`,"prompt":"default"}`, nil)
	if resp := decode[LocalHeadlinesResponse](t, rec); resp.Cached {
		t.Fatalf("the builtin default prompt must not be served the local prompt's set")
	}
	if n := atomic.LoadInt32(&p.calls); n != 2 {
		t.Fatalf("expected two provider calls, got %d", n)
	}
}

func newBusinessEcho() *echo.Echo {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h := &BusinessHandler{
		Generator: business.NewGenerator(rand.New(rand.NewSource(7)), func() time.Time { return fixed }),
		Templates: generation.NewTemplateBackend(rand.New(rand.NewSource(7))),
		Now:       func() time.Time { return fixed },
	}
	e := testEcho()
	h.Register(e.Group("/api/business"))
	return e
}

func TestBusinessDataDetectsSalon(t *testing.T) {
	e := newBusinessEcho()
	rec := doJSON(e, http.MethodPost, "/api/business/data", `{"name":"  Glamour Hair Salon ","location":"Austin, TX","mainType":"beauty"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[BusinessDataResponse](t, rec)
	if !resp.Success || resp.Data.Category != models.CategorySalon {
		t.Fatalf("expected salon, got %+v", resp.Data.BusinessRecord)
	}
	if resp.Data.Name != "Glamour Hair Salon" || resp.Data.MainType != "beauty" {
		t.Fatalf("unexpected record fields: %+v", resp.Data.BusinessRecord)
	}
	if resp.Data.Headline == "" || resp.Data.HeadlineScore <= 0 || resp.Data.HeadlineScore > 100 {
		t.Fatalf("unexpected headline %q score %d", resp.Data.Headline, resp.Data.HeadlineScore)
	}
	if resp.Data.GeneratedAt.IsZero() {
		t.Fatalf("generatedAt missing")
	}
}

func TestBusinessDataExplicitCategory(t *testing.T) {
	e := newBusinessEcho()
	rec := doJSON(e, http.MethodPost, "/api/business/data", `{"name":"Glamour Hair Salon","location":"Austin, TX","category":"fitness"}`, nil)
	if resp := decode[BusinessDataResponse](t, rec); resp.Data.Category != models.CategoryFitness {
		t.Fatalf("expected explicit category to win, got %s", resp.Data.Category)
	}
}

func TestBusinessDataValidation(t *testing.T) {
	e := newBusinessEcho()
	rec := doJSON(e, http.MethodPost, "/api/business/data", `{"name":" A ","location":"Austin, TX","category":"bakery"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	resp := decode[ValidationFailure](t, rec)
	if resp.Error != "Validation failed" || len(resp.Details) != 2 {
		t.Fatalf("unexpected validation body: %+v", resp)
	}
	if resp.Details[0].Field != "name" || resp.Details[0].Message != "Business name must be between 2 and 100 characters" {
		t.Fatalf("unexpected name detail: %+v", resp.Details[0])
	}
	if resp.Details[1].Field != "category" || resp.Details[1].Message != "Invalid business category" {
		t.Fatalf("unexpected category detail: %+v", resp.Details[1])
	}
}

func TestRegenerateHeadline(t *testing.T) {
	e := newBusinessEcho()
	rec := doJSON(e, http.MethodPost, "/api/business/regenerate-headline", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if resp := decode[HTTPError](t, rec); resp.Error != "Business data is required" {
		t.Fatalf("unexpected error: %+v", resp)
	}

	body := `{"businessData":{"name":"Iron Gym","location":"Boise","category":"fitness","rating":4.2}}`
	rec = doJSON(e, http.MethodPost, "/api/business/regenerate-headline", body, nil)
	resp := decode[RegenerateHeadlineResponse](t, rec)
	if !resp.Success || resp.Headline == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCategoriesAndSuggestions(t *testing.T) {
	e := newBusinessEcho()
	cats := decode[CategoriesResponse](t, doJSON(e, http.MethodGet, "/api/business/categories", "", nil))
	if len(cats.Categories) != 41 || cats.Categories[0].ID != "service" {
		t.Fatalf("unexpected categories: %d", len(cats.Categories))
	}

	for _, tc := range []struct {
		query string
		want  int
	}{{"a", 0}, {"", 0}, {"san", 3}, {"SAN D", 1}, {", ", 5}, {"zz", 0}} {
		rec := doJSON(e, http.MethodGet, "/api/business/location-suggestions?query="+urlQuery(tc.query), "", nil)
		resp := decode[SuggestionsResponse](t, rec)
		if resp.Suggestions == nil || len(resp.Suggestions) != tc.want {
			t.Fatalf("query %q: expected %d suggestions, got %v", tc.query, tc.want, resp.Suggestions)
		}
	}
}

func urlQuery(s string) string {
	return strings.NewReplacer(" ", "%20", ",", "%2C").Replace(s)
}

func TestRemovedHeadlineEndpoint(t *testing.T) {
	e := newBusinessEcho()
	rec := doJSON(e, http.MethodPost, "/api/business/headline", `{}`, nil)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 got %d", rec.Code)
	}
	if resp := decode[HTTPError](t, rec); resp.Error != "Headline generation via OpenAI has been removed." {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

var adminSecret = []byte("admin-secret")

func newPromptsEcho(t *testing.T, secret []byte) (*echo.Echo, *prompts.Registry) {
	t.Helper()
	reg := testRegistry(t)
	e := testEcho()
	(&PromptsHandler{Registry: reg, Secret: secret}).Register(e.Group("/api/business"))
	return e, reg
}

func bearer(t *testing.T, scopes ...string) map[string]string {
	t.Helper()
	tok, err := runtime.SignJWT("admin", adminSecret, time.Hour, scopes...)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return map[string]string{echo.HeaderAuthorization: "Bearer " + tok}
}

func TestAddPromptAuth(t *testing.T) {
	e, reg := newPromptsEcho(t, adminSecret)
	body := `{"key":"friendly","prompt":"Write {count} friendly headlines for {name}"}`

	if rec := doJSON(e, http.MethodPost, "/api/business/add-prompt", body, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodPost, "/api/business/add-prompt", body, bearer(t, "other:read")); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	rec := doJSON(e, http.MethodPost, "/api/business/add-prompt", body, bearer(t, runtime.ScopePromptsWrite))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[AddPromptResponse](t, rec)
	if !resp.Success || resp.Message != "Custom prompt 'friendly' added successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !reg.Has("friendly") || !containsString(resp.AvailablePrompts, "friendly") {
		t.Fatalf("prompt not registered: %v", resp.AvailablePrompts)
	}

	listed := decode[PromptsResponse](t, doJSON(e, http.MethodGet, "/api/business/prompts", "", nil))
	if !listed.Success || !containsString(listed.Prompts, "friendly") || !containsString(listed.Prompts, "default") {
		t.Fatalf("unexpected prompt list: %v", listed.Prompts)
	}
}

func TestAddPromptBadRequests(t *testing.T) {
	e, _ := newPromptsEcho(t, adminSecret)
	auth := bearer(t, runtime.ScopePromptsWrite)

	rec := doJSON(e, http.MethodPost, "/api/business/add-prompt", `{"key":"x"}`, auth)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if resp := decode[HTTPError](t, rec); resp.Error != "Missing required fields: key, prompt" {
		t.Fatalf("unexpected error: %+v", resp)
	}
	if rec := doJSON(e, http.MethodPost, "/api/business/add-prompt", `{"key":"bad key!","prompt":"p"}`, auth); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid key, got %d", rec.Code)
	}
}

func TestAddPromptDisabledWithoutSecret(t *testing.T) {
	e, _ := newPromptsEcho(t, nil)
	rec := doJSON(e, http.MethodPost, "/api/business/add-prompt", `{"key":"k","prompt":"p"}`, bearer(t, runtime.ScopePromptsWrite))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
	if resp := decode[HTTPError](t, rec); resp.Error != "prompt administration disabled" {
		t.Fatalf("unexpected error: %+v", resp)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestAdminToken(t *testing.T) {
	hash, err := runtime.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h := &AdminHandler{Secret: adminSecret, PasswordHash: hash, TokenTTL: time.Minute}
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/token", strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err = h.token(e.NewContext(req, httptest.NewRecorder()))
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/token", strings.NewReader(`{"password":"correct-horse"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.token(e.NewContext(req, rec)); err != nil {
		t.Fatalf("token: %v", err)
	}
	resp := decode[TokenResponse](t, rec)
	if resp.Token == "" {
		t.Fatalf("expected token")
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "auth=") {
		t.Fatalf("expected auth cookie")
	}

	// the issued token must pass the add-prompt guard
	pe, _ := newPromptsEcho(t, adminSecret)
	rec = doJSON(pe, http.MethodPost, "/api/business/add-prompt", `{"key":"issued","prompt":"p {name}"}`,
		map[string]string{echo.HeaderAuthorization: "Bearer " + resp.Token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected issued token to be accepted, got %d", rec.Code)
	}
}

func TestAdminTokenDisabled(t *testing.T) {
	h := &AdminHandler{}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/token", strings.NewReader(`{"password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.token(echo.New().NewContext(req, httptest.NewRecorder()))
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func templateConfig() *config.Config {
	cfg := &config.Config{
		Generation: config.GenerationConfig{Strategy: config.StrategyTemplate},
		Telemetry:  config.TelemetryConfig{MetricsEnabled: true},
	}
	cfg.Normalize()
	return cfg
}

func TestNewServesTemplateStrategyEndToEnd(t *testing.T) {
	s, err := New(context.Background(), templateConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec := doJSON(s.Echo, http.MethodPost, "/api/business/local-headlines", joesPizza+`}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decode[LocalHeadlinesResponse](t, rec); resp.Provenance != models.ProvenanceTemplate {
		t.Fatalf("expected template provenance, got %+v", resp)
	}

	stats := decode[CacheStatsResponse](t, doJSON(s.Echo, http.MethodGet, "/api/cache/stats", "", nil))
	if stats.Backend != "memory" || stats.Entries != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rec = doJSON(s.Echo, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz: %d %q", rec.Code, rec.Body.String())
	}

	metricsBody := doJSON(s.Echo, http.MethodGet, "/metrics", "", nil).Body.String()
	for _, want := range []string{
		`localseo_headline_generations_total{provenance="template"} 1`,
		`localseo_headline_cache_requests_total{result="miss"} 1`,
		`localseo_http_requests_total{method="POST",route="/api/business/local-headlines",status="200"} 1`,
	} {
		if !strings.Contains(metricsBody, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestNewDegradesToTemplatesWithoutProviderKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := templateConfig()
	cfg.Generation.Strategy = config.StrategyExternal
	cfg.LLM = config.LLMConfig{Provider: "openai"}.Normalize()

	s, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.Backend.(*generation.TemplateBackend); !ok {
		t.Fatalf("expected template backend, got %T", s.Backend)
	}
}

func TestNewRejectsUnknownDefaultPrompt(t *testing.T) {
	cfg := templateConfig()
	cfg.Generation.Prompt = "missing"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown generation.prompt")
	}
}

func TestUnexpectedErrorsAreMasked(t *testing.T) {
	e := testEcho()
	e.GET("/boom", func(c echo.Context) error { return errors.New("db password leaked") })
	rec := doJSON(e, http.MethodGet, "/boom", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	if resp := decode[HTTPError](t, rec); resp.Error != "Internal server error" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}
