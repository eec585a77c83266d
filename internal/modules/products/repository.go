// Package products stores tracked products and their scraped market snapshots.
package products

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brickfolio/brickfolio/internal/domain"
)

// Repository handles product database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// productColumns avoids SELECT *, which breaks silently when the schema changes.
const productColumns = `id, set_number, name, theme, status, parts_count, year_released, msrp,
created_at, updated_at`

const snapshotColumns = `product_id, observed_at, current_retail_price, market_avg_price,
market_max_price, current_price, years_post_retirement, demand_score, quality_score,
sales_velocity, avg_days_between_sales, times_sold, price_volatility, available_qty,
available_lots, observation_days`

// NewRepository creates a new product repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "products").Logger(),
	}
}

// Create inserts a product, generating an ID when none is supplied.
func (r *Repository) Create(p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.RetirementActive
	}

	_, err := r.db.Exec(`INSERT INTO products
		(id, set_number, name, theme, status, parts_count, year_released, msrp, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, normalizeSetNumber(p.SetNumber), p.Name, p.Theme, string(p.Status),
		p.PartsCount, p.YearReleased, int64(p.MSRP), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update persists mutable product fields.
func (r *Repository) Update(p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(`UPDATE products SET
		set_number = ?, name = ?, theme = ?, status = ?, parts_count = ?,
		year_released = ?, msrp = ?, updated_at = ?
		WHERE id = ?`,
		normalizeSetNumber(p.SetNumber), p.Name, p.Theme, string(p.Status),
		p.PartsCount, p.YearReleased, int64(p.MSRP), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("product %s not found", p.ID)
	}
	return nil
}

// GetByID returns a product by ID, or nil when not found.
func (r *Repository) GetByID(id string) (*domain.Product, error) {
	row := r.db.QueryRow("SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product by id: %w", err)
	}
	return p, nil
}

// GetBySetNumber returns a product by its set number, or nil when not found.
func (r *Repository) GetBySetNumber(setNumber string) (*domain.Product, error) {
	row := r.db.QueryRow("SELECT "+productColumns+" FROM products WHERE set_number = ?",
		normalizeSetNumber(setNumber))
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product by set number: %w", err)
	}
	return p, nil
}

// List returns all tracked products ordered by set number.
func (r *Repository) List() ([]domain.Product, error) {
	rows, err := r.db.Query("SELECT " + productColumns + " FROM products ORDER BY set_number")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Delete removes a product; snapshots cascade.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("product %s not found", id)
	}
	return nil
}

// UpsertSnapshot stores the latest market observation for a product,
// replacing any previous one.
func (r *Repository) UpsertSnapshot(snap *domain.MarketSnapshot) error {
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`INSERT INTO market_snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			observed_at = excluded.observed_at,
			current_retail_price = excluded.current_retail_price,
			market_avg_price = excluded.market_avg_price,
			market_max_price = excluded.market_max_price,
			current_price = excluded.current_price,
			years_post_retirement = excluded.years_post_retirement,
			demand_score = excluded.demand_score,
			quality_score = excluded.quality_score,
			sales_velocity = excluded.sales_velocity,
			avg_days_between_sales = excluded.avg_days_between_sales,
			times_sold = excluded.times_sold,
			price_volatility = excluded.price_volatility,
			available_qty = excluded.available_qty,
			available_lots = excluded.available_lots,
			observation_days = excluded.observation_days`,
		snap.ProductID, snap.ObservedAt, int64(snap.CurrentRetailPrice),
		int64(snap.MarketAvgPrice), int64(snap.MarketMaxPrice), int64(snap.CurrentPrice),
		snap.YearsPostRetirement, snap.DemandScore, snap.QualityScore,
		snap.SalesVelocity, snap.AvgDaysBetweenSales, snap.TimesSold,
		snap.PriceVolatility, snap.AvailableQty, snap.AvailableLots, snap.ObservationDays)
	if err != nil {
		return fmt.Errorf("failed to upsert market snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the latest market observation for a product, or nil.
func (r *Repository) GetSnapshot(productID string) (*domain.MarketSnapshot, error) {
	row := r.db.QueryRow("SELECT "+snapshotColumns+" FROM market_snapshots WHERE product_id = ?",
		productID)

	var snap domain.MarketSnapshot
	var retail, avg, max, current int64
	err := row.Scan(&snap.ProductID, &snap.ObservedAt, &retail, &avg, &max, &current,
		&snap.YearsPostRetirement, &snap.DemandScore, &snap.QualityScore,
		&snap.SalesVelocity, &snap.AvgDaysBetweenSales, &snap.TimesSold,
		&snap.PriceVolatility, &snap.AvailableQty, &snap.AvailableLots, &snap.ObservationDays)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query market snapshot: %w", err)
	}
	snap.CurrentRetailPrice = domain.Cents(retail)
	snap.MarketAvgPrice = domain.Cents(avg)
	snap.MarketMaxPrice = domain.Cents(max)
	snap.CurrentPrice = domain.Cents(current)
	return &snap, nil
}

// RecordMetrics appends a computed valuation to the metrics history.
func (r *Repository) RecordMetrics(productID string, currentPrice, intrinsic, target domain.Cents,
	marginOfSafety, expectedROI float64, rating string, bubble bool) error {
	bubbleInt := 0
	if bubble {
		bubbleInt = 1
	}
	_, err := r.db.Exec(`INSERT INTO metrics_snapshots
		(product_id, current_price, intrinsic_value, target_price, margin_of_safety, expected_roi, rating, bubble)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		productID, int64(currentPrice), int64(intrinsic), int64(target),
		marginOfSafety, expectedROI, rating, bubbleInt)
	if err != nil {
		return fmt.Errorf("failed to record metrics snapshot: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var status string
	var msrp int64
	if err := row.Scan(&p.ID, &p.SetNumber, &p.Name, &p.Theme, &status,
		&p.PartsCount, &p.YearReleased, &msrp, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.RetirementStatus(status)
	p.MSRP = domain.Cents(msrp)
	return &p, nil
}

func normalizeSetNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
