// Package vouchers stores voucher templates and serves the discount
// optimization API over the pure engine in internal/vouchers.
package vouchers

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brickfolio/brickfolio/internal/domain"
	engine "github.com/brickfolio/brickfolio/internal/vouchers"
)

// Repository handles voucher template database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new voucher template repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "vouchers").Logger(),
	}
}

// Create inserts a template, generating an ID when none is supplied.
// The template must already be validated.
func (r *Repository) Create(t *engine.Template) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	tiers, err := json.Marshal(t.Tiers)
	if err != nil {
		return fmt.Errorf("failed to marshal tiers: %w", err)
	}
	conditions, err := json.Marshal(t.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	_, err = r.db.Exec(`INSERT INTO voucher_templates
		(id, name, type, discount_type, discount_value, tiers_json, conditions_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, string(t.Type), string(t.DiscountType), int64(t.DiscountValue),
		string(tiers), string(conditions))
	if err != nil {
		return fmt.Errorf("failed to insert voucher template: %w", err)
	}
	return nil
}

// GetByID returns a template by ID, or nil when not found.
func (r *Repository) GetByID(id string) (*engine.Template, error) {
	row := r.db.QueryRow(`SELECT id, name, type, discount_type, discount_value,
		tiers_json, conditions_json FROM voucher_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voucher template: %w", err)
	}
	return t, nil
}

// GetByIDs resolves a set of template IDs, failing on the first unknown one.
func (r *Repository) GetByIDs(ids []string) ([]engine.Template, error) {
	out := make([]engine.Template, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("voucher template %s not found", id)
		}
		out = append(out, *t)
	}
	return out, nil
}

// List returns all stored templates ordered by name.
func (r *Repository) List() ([]engine.Template, error) {
	rows, err := r.db.Query(`SELECT id, name, type, discount_type, discount_value,
		tiers_json, conditions_json FROM voucher_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query voucher templates: %w", err)
	}
	defer rows.Close()

	var out []engine.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher template: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Delete removes a template.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM voucher_templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete voucher template: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("voucher template %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*engine.Template, error) {
	var t engine.Template
	var typ, discountType, tiersJSON, conditionsJSON string
	var discountValue int64

	if err := row.Scan(&t.ID, &t.Name, &typ, &discountType, &discountValue,
		&tiersJSON, &conditionsJSON); err != nil {
		return nil, err
	}

	t.Type = engine.Type(typ)
	t.DiscountType = engine.DiscountType(discountType)
	t.DiscountValue = domain.Cents(discountValue)
	if err := json.Unmarshal([]byte(tiersJSON), &t.Tiers); err != nil {
		return nil, fmt.Errorf("corrupt tiers for template %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(conditionsJSON), &t.Conditions); err != nil {
		return nil, fmt.Errorf("corrupt conditions for template %s: %w", t.ID, err)
	}
	return &t, nil
}
