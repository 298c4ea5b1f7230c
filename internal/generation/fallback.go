package generation

import (
	"context"
	"fmt"
	"log"

	"github.com/mohammad-safakhou/localseo/internal/headline"
	"github.com/mohammad-safakhou/localseo/models"
)

var defaultLogger = log.New(log.Writer(), "[GEN] ", log.LstdFlags)

// FallbackChain runs Primary and, on failure, Fallback relabelled as template-fallback.
type FallbackChain struct {
	Primary  Backend
	Fallback Backend
	Logger   *log.Logger
}

func (f *FallbackChain) Generate(ctx context.Context, req Request) (Result, error) {
	res, err := f.Primary.Generate(ctx, req)
	if err == nil {
		return res, nil
	}
	logger := f.Logger
	if logger == nil {
		logger = defaultLogger
	}
	logger.Printf("primary backend failed for %s, using templates: %v", headline.DeriveKey(req.Descriptor), err)

	res, ferr := f.Fallback.Generate(ctx, req)
	if ferr != nil {
		return Result{}, fmt.Errorf("fallback after %v: %w", err, ferr)
	}
	res.Provenance = models.ProvenanceTemplateFallback
	return res, nil
}
