package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/common"
	"github.com/documind/documind/internal/entity"
	"github.com/documind/documind/internal/repository"
)

func TestDocumentCreateFillsDefaults(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewDocumentRepository(db, testLogger())

	doc, err := repo.Create(context.Background(), &entity.Document{
		Filename:    "scan.png",
		FileExt:     "png",
		FileSize:    2048,
		ContentHash: "abc123",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.Equal(t, constants.DocStatusQueued, doc.Status)
	assert.False(t, doc.UploadedAt.IsZero())
}

func TestDocumentRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewDocumentRepository(db, testLogger())

	uploaded := time.Date(2023, time.November, 15, 8, 30, 0, 123456789, time.UTC)
	doc, err := repo.Create(context.Background(), &entity.Document{
		SourcePath:  "/srv/inbox/scan.png",
		Filename:    "scan.png",
		FileExt:     "png",
		FileSize:    2048,
		ContentHash: "abc123",
		Status:      constants.DocStatusQueued,
		UploadedAt:  uploaded,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), doc.ID)

	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "/srv/inbox/scan.png", got.SourcePath)
	assert.Equal(t, "scan.png", got.Filename)
	assert.Equal(t, "png", got.FileExt)
	assert.Equal(t, int64(2048), got.FileSize)
	assert.Equal(t, "abc123", got.ContentHash)
	assert.Equal(t, constants.DocStatusQueued, got.Status)
	assert.WithinDuration(t, uploaded, got.UploadedAt, 0, "nanoseconds survive storage")
	assert.Nil(t, got.ProcessedAt)
}

func TestGetDocumentNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewDocumentRepository(db, testLogger())

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpsertByHashDeduplicates(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewDocumentRepository(db, testLogger())

	first, dedup, err := repo.UpsertByHash(context.Background(), &entity.Document{
		Filename:    "scan.png",
		FileExt:     "png",
		ContentHash: "samehash",
	})
	require.NoError(t, err)
	assert.False(t, dedup)

	second, dedup, err := repo.UpsertByHash(context.Background(), &entity.Document{
		Filename:    "copy-of-scan.png",
		FileExt:     "png",
		ContentHash: "samehash",
	})
	require.NoError(t, err)

	assert.True(t, dedup)
	assert.Equal(t, first.ID, second.ID, "the original row wins")
	assert.Equal(t, "scan.png", second.Filename)
}

func TestUpdateStatus(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewDocumentRepository(db, testLogger())
	doc := seedDocument(t, repo, "abc123")

	require.NoError(t, repo.UpdateStatus(context.Background(), doc.ID, constants.DocStatusProcessing))

	got, err := repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocStatusProcessing, got.Status)

	err = repo.UpdateStatus(context.Background(), uuid.New(), constants.DocStatusProcessing)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarkProcessed(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewDocumentRepository(db, testLogger())
	doc := seedDocument(t, repo, "abc123")

	at := time.Date(2023, time.November, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkProcessed(context.Background(), doc.ID, constants.DocStatusCompleted, at))

	got, err := repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocStatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.WithinDuration(t, at, *got.ProcessedAt, 0)

	err = repo.MarkProcessed(context.Background(), uuid.New(), constants.DocStatusCompleted, at)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewDocumentRepository(db, testLogger())

	base := time.Date(2023, time.November, 15, 8, 0, 0, 0, time.UTC)
	for i, hash := range []string{"h1", "h2", "h3"} {
		_, err := repo.Create(context.Background(), &entity.Document{
			Filename:    hash + ".png",
			FileExt:     "png",
			ContentHash: hash,
			UploadedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	docs, err := repo.List(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "h3.png", docs[0].Filename)
	assert.Equal(t, "h2.png", docs[1].Filename)
}
