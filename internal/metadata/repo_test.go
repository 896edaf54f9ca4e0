package metadata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/partsbin-backend/pkg/digikey"
	"github.com/angelmondragon/partsbin-backend/pkg/migrate"
)

var _ digikey.TokenStore = (*Repository)(nil)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "metadata.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrate(conn))
	return conn
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	_, ok, err := repo.Load(ctx, digikey.OAuthMetadataKey)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := digikey.TokenRecord{AccessToken: "a", TokenType: "Bearer", ExpiresAt: 10, RefreshToken: "r", RefreshTokenExpiresAt: 20}
	require.NoError(t, repo.Save(ctx, digikey.OAuthMetadataKey, rec))

	var got digikey.TokenRecord
	ok, err = repo.Get(ctx, digikey.OAuthMetadataKey, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	rec.AccessToken = "b"
	require.NoError(t, repo.Save(ctx, digikey.OAuthMetadataKey, rec))
	ok, err = repo.Get(ctx, digikey.OAuthMetadataKey, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", got.AccessToken)

	require.NoError(t, repo.Delete(ctx, digikey.OAuthMetadataKey))
	_, ok, err = repo.Load(ctx, digikey.OAuthMetadataKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryGetDecodeError(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "k", []string{"x"}))
	var dst struct{ A string }
	ok, err := repo.Get(ctx, "k", &dst)
	assert.True(t, ok)
	assert.Error(t, err)
}
