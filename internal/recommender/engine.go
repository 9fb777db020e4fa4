// Package recommender implements the product recommendation scoring engine:
// a rule-based additive scorer that evaluates each catalog product against a
// customer profile and partitions qualifying products by risk category.
package recommender

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

// DefaultThreshold is the minimum suitability score a product must reach to
// be included in the output unless the caller overrides it.
const DefaultThreshold = 50

// Engine evaluates a product catalog against one customer profile. It is a
// pure computation over its inputs: it holds no mutable state, never mutates
// the records it receives, and is safe for concurrent use.
type Engine struct {
	threshold int
	log       *logger.Logger
}

// NewEngine creates a recommendation engine with the given default
// qualifying threshold. A non-positive threshold falls back to
// DefaultThreshold.
func NewEngine(threshold int, log *logger.Logger) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{
		threshold: threshold,
		log:       log.Named("recommender"),
	}
}

// Threshold returns the engine's default qualifying threshold
func (e *Engine) Threshold() int {
	return e.threshold
}

// Recommend evaluates every product against the customer using the engine's
// default threshold.
func (e *Engine) Recommend(ctx context.Context, customer *domain.CustomerProfile, products []domain.Product) *domain.RecommendationSet {
	return e.RecommendWithThreshold(ctx, customer, products, e.threshold)
}

// RecommendWithThreshold evaluates every product against the customer,
// appending each qualifying product to the category derived from its declared
// risk level. Catalog order is preserved within each category. An empty
// catalog or a near-empty profile is valid input, never an error.
func (e *Engine) RecommendWithThreshold(ctx context.Context, customer *domain.CustomerProfile, products []domain.Product, threshold int) *domain.RecommendationSet {
	start := time.Now()

	_, span := otel.Tracer("recommender").Start(ctx, "recommender.recommend")
	span.SetAttributes(
		attribute.Int("catalog_size", len(products)),
		attribute.Int("threshold", threshold),
	)
	defer span.End()

	set := domain.NewRecommendationSet()

	for i := range products {
		product := &products[i]
		category := domain.CategorizeRiskLevel(product.RiskLevel)

		// Hard filter: products the customer already holds are never
		// recommended, regardless of score.
		if customer.HoldsProduct(product.Name) {
			continue
		}

		score, reasons := scoreProduct(customer, product)
		if score < threshold {
			continue
		}

		set.Add(category, domain.Recommendation{
			ProductID:   product.ID,
			ProductName: product.Name,
			Score:       score,
			Confidence:  formatConfidence(score),
			Reasoning:   reasons,
		})
	}

	span.SetAttributes(attribute.Int("recommended", set.Total()))
	e.log.RecommendationCompleted(customer.ID, len(products), set.Total(), threshold, time.Since(start).Milliseconds())

	return set
}
