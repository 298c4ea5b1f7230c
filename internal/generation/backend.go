package generation

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/localseo/models"
)

var (
	// ErrBackend wraps every provider, parse and cardinality failure of a generation backend.
	ErrBackend = errors.New("generation backend failed")
	// ErrNoHeadlines is returned when a backend produced nothing usable.
	ErrNoHeadlines = errors.New("no headlines produced")
)

// Request describes one headline-set generation.
type Request struct {
	Descriptor models.BusinessDescriptor
	Count      int
	Rating     float64
	Category   models.Category
	PromptKey  string
}

// Result is an ordered, deduplicated list of headlines and where it came from.
type Result struct {
	Headlines  []string
	Provenance models.Provenance
	Model      string
	Prompt     string
}

// Backend produces headline sets.
type Backend interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// HeadlineSet converts a result into the cached representation.
func (r Result) HeadlineSet(fingerprint string) models.HeadlineSet {
	return models.HeadlineSet{
		Fingerprint: fingerprint,
		Headlines:   append([]string(nil), r.Headlines...),
		Provenance:  r.Provenance,
		Prompt:      r.Prompt,
		Model:       r.Model,
	}
}
