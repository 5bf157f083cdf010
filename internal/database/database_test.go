package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchable-gallery/internal/metrics"
)

func setupTestDB(t *testing.T, driver string) *Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gallery.db")
	db, err := New(context.Background(), path, &Options{Driver: driver})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

var drivers = []string{DriverCGO, DriverPureGo}

func TestNewRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), filepath.Join(t.TempDir(), "x.db"), &Options{Driver: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDataSourceName(t *testing.T) {
	t.Parallel()

	dsn, err := dataSourceName(DriverCGO, "/data/gallery.db")
	require.NoError(t, err)
	assert.Contains(t, dsn, "_foreign_keys=on")

	dsn, err = dataSourceName(DriverPureGo, "/data/gallery.db")
	require.NoError(t, err)
	assert.Contains(t, dsn, "foreign_keys(1)")
}

func TestInsertItemAndStatsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			db := setupTestDB(t, driver)
			ctx := context.Background()

			created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
			item, err := db.InsertItem(ctx, NewItem{
				FullPath:    "/images/a.png",
				Description: strPtr("a red bicycle"),
				CreatedAt:   created,
				Tags:        []string{"red", " bike ", "", "red"},
			})
			require.NoError(t, err)
			assert.NotEqual(t, ItemID{}, item.ID)
			assert.True(t, item.CreatedAt.Equal(created))
			assert.Nil(t, item.ShortTitle)

			_, err = db.InsertItem(ctx, NewItem{FullPath: "/images/b.png"})
			require.NoError(t, err)

			stats, err := db.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, Stats{TotalItems: 2, TotalTags: 2, TotalAssociations: 2, UntaggedItems: 1}, stats)
		})
	}
}

func TestInsertItemRequiresPath(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, DriverCGO)
	_, err := db.InsertItem(context.Background(), NewItem{})
	require.Error(t, err)
}

func TestUpsertTagIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupTestDB(t, DriverCGO)
	ctx := context.Background()

	tag, err := db.UpsertTag(ctx, "  Cat ")
	require.NoError(t, err)
	assert.Equal(t, "Cat", tag.Name)
	assert.NotZero(t, tag.ID)

	again, err := db.UpsertTag(ctx, "Cat")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, again.ID)

	// Names are case-sensitive.
	lower, err := db.UpsertTag(ctx, "cat")
	require.NoError(t, err)
	assert.NotEqual(t, tag.ID, lower.ID)

	_, err = db.UpsertTag(ctx, "   ")
	require.Error(t, err)
}

func TestTagItemIsIdempotentIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupTestDB(t, DriverCGO)
	ctx := context.Background()

	item, err := db.InsertItem(ctx, NewItem{FullPath: "/images/a.png"})
	require.NoError(t, err)

	require.NoError(t, db.TagItem(ctx, item.ID, "x", "y"))
	require.NoError(t, db.TagItem(ctx, item.ID, "x"))

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalAssociations)

	err = db.TagItem(ctx, NewItemID(), "x")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.UntagItem(ctx, item.ID, "x"))
	stats, err = db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAssociations)
}

func TestDeleteCascadesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			db := setupTestDB(t, driver)
			ctx := context.Background()

			a, err := db.InsertItem(ctx, NewItem{FullPath: "/a.png", Tags: []string{"x", "y"}})
			require.NoError(t, err)
			_, err = db.InsertItem(ctx, NewItem{FullPath: "/b.png", Tags: []string{"x"}})
			require.NoError(t, err)

			require.NoError(t, db.DeleteItem(ctx, a.ID))
			stats, err := db.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, stats.TotalItems)
			assert.Equal(t, 1, stats.TotalAssociations)

			require.NoError(t, db.DeleteTag(ctx, "x"))
			stats, err = db.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, stats.TotalAssociations)
			assert.Equal(t, 1, stats.UntaggedItems)

			require.ErrorIs(t, db.DeleteItem(ctx, a.ID), ErrNotFound)
			require.ErrorIs(t, db.DeleteTag(ctx, "nope"), ErrNotFound)
		})
	}
}

func TestItemExistsByPathIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupTestDB(t, DriverCGO)
	ctx := context.Background()

	_, err := db.InsertItem(ctx, NewItem{FullPath: "/a.png"})
	require.NoError(t, err)

	found, err := db.ItemExistsByPath(ctx, "/a.png")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = db.ItemExistsByPath(ctx, "/missing.png")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQueryAfterCloseIsConnectionError(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, DriverCGO)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err := db.Query(context.Background(), "probe", "SELECT 1")
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, ErrClosed)

	err = db.View(context.Background(), "probe", func(Querier) error { return nil })
	assert.True(t, IsConnectionError(err))

	assert.True(t, IsConnectionError(db.Ping(context.Background())))
}

func TestNilDatabaseIsConnectionError(t *testing.T) {
	t.Parallel()

	var db *Database
	_, err := db.Query(context.Background(), "probe", "SELECT 1")
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestMalformedQueryIsQueryError(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, DriverCGO)
	_, err := db.Query(context.Background(), "broken", "SELECT * FROM no_such_table")
	require.Error(t, err)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "broken", qe.Op)
	assert.False(t, IsConnectionError(err))
}

func TestViewWrapsCallbackErrors(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, DriverCGO)
	boom := errors.New("boom")

	err := db.View(context.Background(), "wrapped", func(Querier) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.True(t, IsQueryError(err))

	err = db.View(context.Background(), "wrapped", func(q Querier) error {
		var n int
		return q.QueryRowContext(context.Background(), "SELECT 1").Scan(&n)
	})
	require.NoError(t, err)
}

func TestMigrationAddsMissingColumns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	path := filepath.Join(t.TempDir(), "old.db")

	raw, err := sql.Open(DriverCGO, path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE items (
		id BLOB PRIMARY KEY,
		full_path TEXT NOT NULL,
		description TEXT,
		short_title TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := New(context.Background(), path, nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.InsertItem(context.Background(), NewItem{
		FullPath:     "/a.png",
		TextContents: strPtr("hello"),
		ThumbnailRef: strPtr("a.jpg"),
	})
	require.NoError(t, err)
}

func TestRecordQueryMetrics(t *testing.T) {
	before := testutil.ToFloat64(metrics.DBQueryTotal.WithLabelValues("record_test", "error"))
	done := observeQuery("record_test")
	done(errors.New("failed"))
	after := testutil.ToFloat64(metrics.DBQueryTotal.WithLabelValues("record_test", "error"))
	assert.InDelta(t, before+1, after, 0.001)
}

func TestItemID(t *testing.T) {
	t.Parallel()

	id, err := ParseItemID("00112233445566778899aabbccddeeff")
	require.NoError(t, err)
	assert.Equal(t, "00112233445566778899aabbccddeeff", id.String())

	dashed, err := ParseItemID("00112233-4455-6677-8899-aabbccddeeff")
	require.NoError(t, err)
	assert.Equal(t, id, dashed)

	_, err = ParseItemID("not-an-id")
	require.Error(t, err)
	_, err = ParseItemID("zz112233445566778899aabbccddeeff")
	require.Error(t, err)

	b, err := json.Marshal(ItemWithTags{Item: Item{ID: id}, Tags: []string{}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":"00112233445566778899aabbccddeeff"`)
	assert.Contains(t, string(b), `"tags":[]`)
	assert.Contains(t, string(b), `"description":null`)

	var back Item
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, id, back.ID)

	var scanned ItemID
	require.Error(t, scanned.Scan("text"))
	require.Error(t, scanned.Scan([]byte{1, 2}))
	require.NoError(t, scanned.Scan(id[:]))
	assert.Equal(t, 0, scanned.Compare(id))
}
