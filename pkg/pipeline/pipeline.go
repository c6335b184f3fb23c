// Package pipeline wires the extraction engine together: document adapter,
// classifier (unless an operator override is present), strategy, normalizer
// and pagination controller.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"pagesift/models"
	"pagesift/pkg/classify"
	"pagesift/pkg/dom"
	"pagesift/pkg/normalize"
	"pagesift/pkg/paginate"
	"pagesift/pkg/strategy"
)

// Pipeline runs classification and extraction on documents. It is
// stateless across pages; concurrent use over independent runs is safe.
type Pipeline struct {
	registry *strategy.Registry
	config   *models.ExtractionConfig
	logger   *slog.Logger

	// classifyFn is swapped in tests to observe classifier invocation.
	classifyFn func(*dom.Document) []models.Classification
}

// New builds a pipeline. config may be nil; when present it is validated
// immediately so a malformed config is rejected before any fetch occurs,
// and classification is bypassed entirely for the run.
func New(config *models.ExtractionConfig, roles strategy.RolePriorities, logger *slog.Logger) (*Pipeline, error) {
	if config != nil {
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("rejected config: %w", err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry:   strategy.NewRegistry(roles),
		config:     config,
		logger:     logger,
		classifyFn: classify.Classify,
	}, nil
}

// ExtractPage converts one document into a page result: classification (or
// override), strategy extraction, normalization, next-locator detection.
func (p *Pipeline) ExtractPage(doc *dom.Document) models.PageResult {
	result := models.PageResult{}
	if doc.BaseURL() != nil {
		result.URL = doc.BaseURL().String()
	}

	if p.config != nil {
		result.Classification = models.Classification{
			Category:   models.CategoryCustom,
			Confidence: 1.0,
			Evidence:   "operator selector config",
		}
		result.Records = strategy.ExtractCustom(doc, p.config)
	} else {
		ranked := p.classifyFn(doc)
		best := classify.Best(ranked)
		result.Classification = best
		p.logger.Debug("classified page",
			"category", best.Category,
			"confidence", best.Confidence,
			"evidence", best.Evidence)

		strat, ok := p.registry.Lookup(best.Category)
		if !ok {
			strat, _ = p.registry.Lookup(models.CategoryGeneric)
		}
		result.Records = strat.Extract(doc)
	}

	normalize.Records(result.Records, doc.BaseURL())
	result.NextLocator = paginate.DetectNext(doc)
	return result
}

// Run walks the paginated sequence starting from an already-fetched first
// document and returns the merged run result.
func (p *Pipeline) Run(ctx context.Context, first *dom.Document, fetch paginate.Fetcher, opts paginate.Options) *models.RunResult {
	controller := paginate.NewController(fetch, p.ExtractPage, opts, p.logger)
	return controller.Run(ctx, first)
}
