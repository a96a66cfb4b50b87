package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hotspotworld/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openTestDB connects to HOTSPOT_TEST_DSN and applies migrations, skipping
// the test when no database is configured.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("HOTSPOT_TEST_DSN")
	if dsn == "" {
		t.Skip("HOTSPOT_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{
		DSN:             dsn,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	version, err := RunMigrations(ctx, db)
	require.NoError(t, err)
	require.GreaterOrEqual(t, version, int64(1))
	return db
}

func TestWorldRepoTouchAndLoad(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewWorldRepo(db)
	seed := "test-" + time.Now().Format("20060102150405.000000000")
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(ctx, `DELETE FROM worlds WHERE seed = $1`, seed)
	})

	missing, err := repo.Load(ctx, seed)
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := repo.Touch(ctx, seed, WorldStats{POIs: 28, Rivers: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.OpenCount)
	assert.EqualValues(t, 28, first.POICount)

	second, err := repo.Touch(ctx, seed, WorldStats{POIs: 28, Rivers: 3, FallbackEdges: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.OpenCount)
	assert.EqualValues(t, 1, second.FallbackEdges)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	loaded, err := repo.Load(ctx, seed)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.EqualValues(t, 2, loaded.OpenCount)
}

func TestWorldRepoRecordWeekReplaces(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewWorldRepo(db)
	seed := "week-" + time.Now().Format("20060102150405.000000000")
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(ctx, `DELETE FROM worlds WHERE seed = $1`, seed)
	})
	_, err := repo.Touch(ctx, seed, WorldStats{})
	require.NoError(t, err)

	require.NoError(t, repo.RecordWeek(ctx, seed, 2024, 1, []string{"storm", "bloom"}))
	require.NoError(t, repo.RecordWeek(ctx, seed, 2024, 1, []string{"drought"}))

	got, err := repo.Week(ctx, seed, 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"drought"}, got)

	none, err := repo.Week(ctx, seed, 2024, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}
