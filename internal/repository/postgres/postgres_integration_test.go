package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/KretovDmitry/tinyurl/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLRepository_Postgres(t *testing.T) {
	dsn := testutils.StartPostgres(t)
	ctx := context.Background()

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	l, _ := logger.NewForTest()
	repo, err := NewURLRepository(db, l)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.EnsureSchema(ctx))
	// second run is a no-op
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.Ping(ctx))

	res, err := repo.InsertOrGet(ctx, "abc123", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, models.InsertResult{Outcome: models.Inserted, ID: "abc123"}, res)

	res, err = repo.InsertOrGet(ctx, "def456", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, models.InsertResult{Outcome: models.ExistingForURL, ID: "abc123"}, res)

	res, err = repo.InsertOrGet(ctx, "abc123", "https://example.com/b")
	require.NoError(t, err)
	assert.Equal(t, models.IDConflict, res.Outcome)

	url, err := repo.GetByID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, models.OriginalURL("https://example.com/a"), url)

	_, err = repo.GetByID(ctx, "zzzzzz")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	t.Run("concurrent inserts of one url", func(t *testing.T) {
		const n = 10
		ids := make([]models.ShortID, n)

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := repo.InsertOrGet(ctx,
					models.ShortID(fmt.Sprintf("con%03d", i)), "https://example.com/same")
				assert.NoError(t, err)
				ids[i] = res.ID
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}

		var count int
		require.NoError(t, db.QueryRow(
			"SELECT COUNT(*) FROM urls WHERE url = $1", "https://example.com/same",
		).Scan(&count))
		assert.Equal(t, 1, count)
	})
}
