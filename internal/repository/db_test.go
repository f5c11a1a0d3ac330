package repository_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
	"github.com/documind/documind/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openTestDB migrates a file-backed SQLite database under the test's
// temp dir. A single connection keeps writes serial.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repository.Open(context.Background(), common.DatabaseConfig{
		Driver:           "sqlite",
		DSN:              "file:" + filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:     1,
		MigrateOnStartup: true,
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, testLogger()) })
	return db
}

func seedDocument(t *testing.T, repo repository.DocumentRepository, hash string) *entity.Document {
	t.Helper()
	doc, err := repo.Create(context.Background(), &entity.Document{
		SourcePath:  "/srv/inbox/scan.png",
		Filename:    "scan.png",
		FileExt:     "png",
		FileSize:    2048,
		ContentHash: hash,
	})
	require.NoError(t, err)
	return doc
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := repository.Open(context.Background(), common.DatabaseConfig{
		Driver: "mysql",
		DSN:    "whatever",
	}, testLogger())

	assert.ErrorContains(t, err, `unsupported database driver: "mysql"`)
}

func TestOpenMigratesOnStartup(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"documents", "extractions", "corrections"} {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n)
		require.NoError(t, err, "table %s should exist", table)
		assert.Zero(t, n)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, repository.Migrate(context.Background(), db))
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	assert.NoError(t, repository.HealthCheck(context.Background(), db, 3*time.Second, testLogger()))

	repository.Close(db, testLogger())
	assert.Error(t, repository.HealthCheck(context.Background(), db, 3*time.Second, testLogger()))
}

func TestDuplicateContentHashRejected(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewDocumentRepository(db, testLogger())

	seedDocument(t, repo, "samehash")

	_, err := repo.Create(context.Background(), &entity.Document{
		Filename:    "copy.png",
		FileExt:     "png",
		ContentHash: "samehash",
		Status:      constants.DocStatusQueued,
	})

	assert.Error(t, err, "content hash carries a unique index")
}
