package bom

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
	"github.com/angelmondragon/partsbin-backend/pkg/migrate"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bom.db")
	conn, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrate(conn))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func sampleBom() NewBom {
	mapped := uuid.New()
	return NewBom{
		Name:     strPtr("sensor board"),
		InfoLine: "Partlist exported from sensor.sch",
		Project:  ProjectInfo{Name: strPtr("sensor"), Comments: "rev B"},
		Rows: []Entry{
			{
				Qty:              2,
				Device:           "R-US_R0603",
				Value:            strPtr("10k"),
				Parts:            []string{"R1", "R2"},
				InventoryItemIDs: []uuid.UUID{mapped, mapped},
				Fusion360:        &FusionEntry{Package: "R0603", MPN: strPtr("RC0603FR-0710KL")},
			},
			{Qty: 1, Device: "LED0603"},
		},
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, sampleBom())
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "sensor board", *got.Name)
	assert.Equal(t, "rev B", got.Project.Comments)
	require.Len(t, got.Rows, 2)
	assert.Len(t, got.Rows[0].InventoryItemIDs, 1, "mapping ids are a set")
	require.NotNil(t, got.Rows[0].Fusion360)
	assert.Equal(t, "RC0603FR-0710KL", *got.Rows[0].Fusion360.MPN)
	assert.Nil(t, got.Rows[1].Fusion360)
	assert.Equal(t, []string{}, got.Rows[1].Parts)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestRepositoryReplaceAndDelete(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, sampleBom())
	require.NoError(t, err)

	updated := Bom{ID: id, NewBom: sampleBom()}
	updated.Rows = updated.Rows[:1]
	updated.Rows[0].Qty = 5
	require.NoError(t, repo.Replace(ctx, updated))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, 5, got.Rows[0].Qty)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepositoryMissingBom(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	missing := uuid.New()

	err := repo.Replace(ctx, Bom{ID: missing, NewBom: sampleBom()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	err = repo.Delete(ctx, missing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMatchAgainstStoredInventory(t *testing.T) {
	conn := openTestDB(t)
	items := inventory.NewRepository(conn)
	ctx := context.Background()

	exactID, err := items.Create(ctx, inventory.NewItem{
		AvailableQuantity:      100,
		Description:            "RES 10K OHM 1% 1/10W 0603",
		VendorPartNumber:       strPtr("311-10.0KHRCT-ND"),
		ManufacturerPartNumber: strPtr("RC0603FR-0710KL"),
	})
	require.NoError(t, err)
	otherID, err := items.Create(ctx, inventory.NewItem{
		AvailableQuantity: 20,
		Description:       "10k trimmer",
		VendorPartNumber:  strPtr("3306F-103-ND"),
	})
	require.NoError(t, err)

	entry := sampleBom().Rows[0]
	got, err := Match(ctx, items, entry, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, exactID, got[0].ID)
	assert.Equal(t, otherID, got[1].ID)
}
