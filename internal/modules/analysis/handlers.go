package analysis

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/brickfolio/brickfolio/internal/domain"
	"github.com/brickfolio/brickfolio/internal/valuation"
	engine "github.com/brickfolio/brickfolio/internal/vouchers"
)

// Handlers provides HTTP handlers for the analysis module
type Handlers struct {
	svc *Service
	log zerolog.Logger
}

// NewHandlers creates a new analysis handlers instance
func NewHandlers(svc *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		svc: svc,
		log: log.With().Str("module", "analysis_handlers").Logger(),
	}
}

// ValueRequest is the wire form of an ad-hoc valuation. Absent fields stay
// nil, which the engine reads as "not observed".
type ValueRequest struct {
	CurrentPrice domain.Cents `json:"current_price"`

	MSRP               *domain.Cents  `json:"msrp,omitempty"`
	CurrentRetailPrice *domain.Cents  `json:"current_retail_price,omitempty"`
	MarketAvgPrice     *domain.Cents  `json:"market_avg_price,omitempty"`
	MarketMaxPrice     *domain.Cents  `json:"market_max_price,omitempty"`
	HistoricalPrices   []domain.Cents `json:"historical_prices,omitempty"`

	RetirementStatus    domain.RetirementStatus `json:"retirement_status,omitempty"`
	YearsPostRetirement *float64                `json:"years_post_retirement,omitempty"`
	YearReleased        *int                    `json:"year_released,omitempty"`

	DemandScore  *float64 `json:"demand_score,omitempty"`
	QualityScore *float64 `json:"quality_score,omitempty"`

	SalesVelocity       *float64 `json:"sales_velocity,omitempty"`
	AvgDaysBetweenSales *float64 `json:"avg_days_between_sales,omitempty"`
	TimesSold           *int     `json:"times_sold,omitempty"`
	ObservationDays     *int     `json:"observation_days,omitempty"`

	PriceVolatility *float64 `json:"price_volatility,omitempty"`

	AvailableQty  *int `json:"available_qty,omitempty"`
	AvailableLots *int `json:"available_lots,omitempty"`

	Theme      string `json:"theme,omitempty"`
	PartsCount *int   `json:"parts_count,omitempty"`
}

func (r *ValueRequest) inputs() valuation.Inputs {
	return valuation.Inputs{
		MSRP:                r.MSRP,
		CurrentRetailPrice:  r.CurrentRetailPrice,
		MarketAvgPrice:      r.MarketAvgPrice,
		MarketMaxPrice:      r.MarketMaxPrice,
		HistoricalPrices:    r.HistoricalPrices,
		RetirementStatus:    r.RetirementStatus,
		YearsPostRetirement: r.YearsPostRetirement,
		YearReleased:        r.YearReleased,
		DemandScore:         r.DemandScore,
		QualityScore:        r.QualityScore,
		SalesVelocity:       r.SalesVelocity,
		AvgDaysBetweenSales: r.AvgDaysBetweenSales,
		TimesSold:           r.TimesSold,
		ObservationDays:     r.ObservationDays,
		PriceVolatility:     r.PriceVolatility,
		AvailableQty:        r.AvailableQty,
		AvailableLots:       r.AvailableLots,
		Theme:               r.Theme,
		PartsCount:          r.PartsCount,
	}
}

// BatchRequest selects products for a batch run; empty means all tracked.
type BatchRequest struct {
	ProductIDs []string `json:"product_ids,omitempty"`
}

// VoucherAnalysisRequest asks for voucher-enhanced metrics on one product.
type VoucherAnalysisRequest struct {
	ProductID  string            `json:"product_id"`
	Tags       []string          `json:"tags,omitempty"`
	Vouchers   []engine.Template `json:"vouchers,omitempty"`
	VoucherIDs []string          `json:"voucher_ids,omitempty"`
}

// HandleValue handles POST /api/analysis/value
// Ad-hoc valuation over inline inputs; nothing is persisted.
func (h *Handlers) HandleValue(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	breakdown, err := h.svc.Value(req.CurrentPrice, req.inputs())
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, breakdown)
}

// HandleProduct handles GET /api/analysis/products/{id}
func (h *Handlers) HandleProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	analysis, err := h.svc.AnalyzeProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, id, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

// HandleBatch handles POST /api/analysis/batch
func (h *Handlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	results, err := h.svc.AnalyzeBatch(r.Context(), req.ProductIDs)
	if err != nil {
		h.log.Error().Err(err).Msg("Batch analysis failed")
		h.writeError(w, "Batch analysis failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

// HandleVouchers handles POST /api/analysis/vouchers
func (h *Handlers) HandleVouchers(w http.ResponseWriter, r *http.Request) {
	var req VoucherAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		h.writeError(w, "product_id is required", http.StatusBadRequest)
		return
	}

	analysis, err := h.svc.AnalyzeWithVouchers(r.Context(), req.ProductID, req.Tags,
		req.Vouchers, req.VoucherIDs)
	if err != nil {
		h.writeServiceError(w, req.ProductID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, productID string, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoSnapshot):
		h.writeError(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error().Err(err).Str("product_id", productID).Msg("Analysis failed")
		h.writeError(w, "Analysis failed", http.StatusInternalServerError)
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
