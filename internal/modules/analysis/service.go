// Package analysis composes stored products, their market snapshots and the
// pure valuation and voucher engines into the read-side analysis API.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/brickfolio/brickfolio/internal/cache"
	"github.com/brickfolio/brickfolio/internal/domain"
	"github.com/brickfolio/brickfolio/internal/modules/products"
	voucherstore "github.com/brickfolio/brickfolio/internal/modules/vouchers"
	"github.com/brickfolio/brickfolio/internal/valuation"
	engine "github.com/brickfolio/brickfolio/internal/vouchers"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNoSnapshot      = errors.New("no market snapshot for product")
)

// Service runs valuations over stored products. Computation stays in the
// engine packages; this layer only loads inputs, caches results and fans out.
type Service struct {
	cfg      valuation.Config
	products *products.Repository
	vouchers *voucherstore.Repository
	cache    cache.MetricsCache
	workers  int
	log      zerolog.Logger
}

// NewService creates the analysis service. workers bounds batch concurrency.
func NewService(cfg valuation.Config, productsRepo *products.Repository,
	voucherRepo *voucherstore.Repository, metricsCache cache.MetricsCache,
	workers int, log zerolog.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		cfg:      cfg,
		products: productsRepo,
		vouchers: voucherRepo,
		cache:    metricsCache,
		workers:  workers,
		log:      log.With().Str("module", "analysis").Logger(),
	}
}

// ProductAnalysis is a product together with its current buy metrics.
type ProductAnalysis struct {
	Product domain.Product         `json:"product"`
	Metrics valuation.ValueMetrics `json:"metrics"`
	Cached  bool                   `json:"cached"`
}

// VoucherAnalysis extends a product analysis with the voucher-enhanced view.
type VoucherAnalysis struct {
	Product  domain.Product         `json:"product"`
	Metrics  valuation.ValueMetrics `json:"metrics"`
	Enhanced engine.EnhancedMetrics `json:"enhanced"`
}

// Breakdown is the ad-hoc valuation response: the full per-factor valuation
// plus the derived buy metrics.
type Breakdown struct {
	Valuation valuation.Valuation    `json:"valuation"`
	Metrics   valuation.ValueMetrics `json:"metrics"`
}

// BatchResult is one product's outcome in a batch run. Failures are recorded
// per product so one bad row never sinks the batch.
type BatchResult struct {
	ProductID string           `json:"product_id"`
	Analysis  *ProductAnalysis `json:"analysis,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Value runs an ad-hoc valuation over caller-supplied inputs. Nothing is
// loaded or stored.
func (s *Service) Value(currentPrice domain.Cents, in valuation.Inputs) (*Breakdown, error) {
	if currentPrice < 0 {
		return nil, fmt.Errorf("current_price must not be negative, got %d", currentPrice)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &Breakdown{
		Valuation: valuation.ComputeValuation(s.cfg, in),
		Metrics:   valuation.ComputeValueMetrics(s.cfg, currentPrice, in),
	}, nil
}

// AnalyzeProduct computes (or serves from cache) the buy metrics for a stored
// product against its latest market snapshot.
func (s *Service) AnalyzeProduct(ctx context.Context, productID string) (*ProductAnalysis, error) {
	p, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	if cached, ok := s.cache.Get(ctx, productID); ok {
		return &ProductAnalysis{Product: *p, Metrics: *cached, Cached: true}, nil
	}

	snap, err := s.products.GetSnapshot(productID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, productID)
	}

	in := valuation.InputsFromSnapshot(*p, *snap)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot for %s is invalid: %w", productID, err)
	}

	metrics := valuation.ComputeValueMetrics(s.cfg, snap.CurrentPrice, in)
	if err := s.cache.Set(ctx, productID, metrics); err != nil {
		s.log.Warn().Err(err).Str("product_id", productID).Msg("Failed to cache metrics")
	}
	return &ProductAnalysis{Product: *p, Metrics: metrics}, nil
}

// AnalyzeBatch analyzes the given products on a bounded worker pool. An empty
// ID list means every tracked product. Results keep input order.
func (s *Service) AnalyzeBatch(ctx context.Context, ids []string) ([]BatchResult, error) {
	if len(ids) == 0 {
		all, err := s.products.List()
		if err != nil {
			return nil, err
		}
		ids = make([]string, 0, len(all))
		for _, p := range all {
			ids = append(ids, p.ID)
		}
	}

	results := make([]BatchResult, len(ids))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				id := ids[i]
				if err := ctx.Err(); err != nil {
					results[i] = BatchResult{ProductID: id, Error: err.Error()}
					continue
				}
				a, err := s.AnalyzeProduct(ctx, id)
				if err != nil {
					results[i] = BatchResult{ProductID: id, Error: err.Error()}
					continue
				}
				results[i] = BatchResult{ProductID: id, Analysis: a}
			}
		}()
	}
	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results, nil
}

// AnalyzeWithVouchers values a product as a single-item cart, finds the best
// voucher application order and composes the before/after comparison.
// Vouchers may be supplied inline, referenced by stored template ID, or both;
// tags describe the purchase context (sales events, shop campaigns).
func (s *Service) AnalyzeWithVouchers(ctx context.Context, productID string, tags []string,
	inline []engine.Template, voucherIDs []string) (*VoucherAnalysis, error) {
	analysis, err := s.AnalyzeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	templates := make([]engine.Template, 0, len(inline)+len(voucherIDs))
	for i := range inline {
		if err := inline[i].Validate(); err != nil {
			return nil, fmt.Errorf("vouchers[%d]: %w", i, err)
		}
		templates = append(templates, inline[i])
	}
	if len(voucherIDs) > 0 {
		stored, err := s.vouchers.GetByIDs(voucherIDs)
		if err != nil {
			return nil, err
		}
		templates = append(templates, stored...)
	}

	cart := []engine.CartItem{{
		ID:        analysis.Product.ID,
		UnitPrice: analysis.Metrics.CurrentPrice,
		Quantity:  1,
		Tags:      tags,
	}}
	result := engine.FindOptimalOrder(cart, templates)
	enhanced := engine.EnhanceMetrics(s.cfg, analysis.Metrics, result)

	return &VoucherAnalysis{
		Product:  analysis.Product,
		Metrics:  analysis.Metrics,
		Enhanced: enhanced,
	}, nil
}
