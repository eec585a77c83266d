package vouchers

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickfolio/brickfolio/internal/database"
	"github.com/brickfolio/brickfolio/internal/domain"
	engine "github.com/brickfolio/brickfolio/internal/vouchers"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "catalog.db"),
		Profile: database.ProfileCache, // no fsync, fine for tests
		Name:    "catalog",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestRepository_RoundTrip(t *testing.T) {
	repo := testRepo(t)

	minPurchase := domain.Cents(5000)
	maxDiscount := domain.Cents(3000)
	tpl := engine.Template{
		Name:          "Singles Day 15%",
		Type:          engine.TypeItemTag,
		DiscountType:  engine.DiscountPercentage,
		DiscountValue: 15,
		Tiers: []engine.Tier{
			{MinSpend: 10000, Discount: 1000},
			{MinSpend: 20000, Discount: 2500},
		},
		Conditions: engine.Conditions{
			MinPurchase:  &minPurchase,
			RequiredTags: []string{"11.11"},
			MaxDiscount:  &maxDiscount,
		},
	}
	require.NoError(t, tpl.Validate())
	require.NoError(t, repo.Create(&tpl))
	require.NotEmpty(t, tpl.ID)

	got, err := repo.GetByID(tpl.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tpl.Name, got.Name)
	assert.Equal(t, engine.TypeItemTag, got.Type)
	assert.Equal(t, tpl.Tiers, got.Tiers)
	require.NotNil(t, got.Conditions.MinPurchase)
	assert.Equal(t, domain.Cents(5000), *got.Conditions.MinPurchase)
	assert.Equal(t, []string{"11.11"}, got.Conditions.RequiredTags)

	missing, err := repo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_GetByIDs(t *testing.T) {
	repo := testRepo(t)

	a := engine.Template{Name: "A", Type: engine.TypeShop, DiscountType: engine.DiscountFixed, DiscountValue: 500}
	b := engine.Template{Name: "B", Type: engine.TypePlatform, DiscountType: engine.DiscountPercentage, DiscountValue: 10}
	require.NoError(t, repo.Create(&a))
	require.NoError(t, repo.Create(&b))

	got, err := repo.GetByIDs([]string{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)

	_, err = repo.GetByIDs([]string{a.ID, "ghost"})
	assert.Error(t, err)
}

func TestRepository_ListDelete(t *testing.T) {
	repo := testRepo(t)

	a := engine.Template{Name: "Bravo", Type: engine.TypeShop, DiscountType: engine.DiscountFixed, DiscountValue: 200}
	b := engine.Template{Name: "Alpha", Type: engine.TypeShop, DiscountType: engine.DiscountFixed, DiscountValue: 100}
	require.NoError(t, repo.Create(&a))
	require.NoError(t, repo.Create(&b))

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name) // ordered by name

	require.NoError(t, repo.Delete(a.ID))
	assert.Error(t, repo.Delete(a.ID)) // already gone

	list, err = repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
