package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/pkg/googlecloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDatastoreClient struct {
	entities map[int64]googlecloud.FileReferenceEntity
	err      error
}

func (f *fakeDatastoreClient) GetFileReference(ctx context.Context, uid int64) (*googlecloud.FileReferenceEntity, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.entities[uid]
	if !ok || e.Deleted {
		return nil, googlecloud.ErrNotFound
	}
	return &e, nil
}

func (f *fakeDatastoreClient) ListFileReferences(ctx context.Context, tableName, fieldName string, recordUID int64) ([]googlecloud.FileReferenceEntity, error) {
	var out []googlecloud.FileReferenceEntity
	for _, e := range f.entities {
		if e.TableName == tableName && e.FieldName == fieldName && e.RecordUID == recordUID && !e.Deleted {
			out = append(out, e)
		}
	}
	return out, f.err
}

func (f *fakeDatastoreClient) UpsertFileReference(ctx context.Context, ref *googlecloud.FileReferenceEntity) error {
	if ref.UID == 0 {
		ref.UID = int64(len(f.entities) + 100)
	}
	ref.CreatedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	f.entities[ref.UID] = *ref
	return nil
}

func (f *fakeDatastoreClient) SoftDeleteFileReference(ctx context.Context, uid int64) error {
	e, ok := f.entities[uid]
	if !ok {
		return googlecloud.ErrNotFound
	}
	e.Deleted = true
	f.entities[uid] = e
	return nil
}

func TestDatastoreFileReferenceRepository(t *testing.T) {
	ctx := context.Background()
	client := &fakeDatastoreClient{entities: map[int64]googlecloud.FileReferenceEntity{
		5: {UID: 5, TableName: "tt_content", FieldName: "media", RecordUID: 3, Identifier: "sheet.xlsx", Extension: "xlsx", Sorting: 1},
	}}
	repo := &datastoreFileReferenceRepository{client: client}

	ref, err := repo.GetByUID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "sheet.xlsx", ref.Identifier)
	assert.Equal(t, int64(3), ref.RecordUID)

	refs, err := repo.ListByRecord(ctx, "tt_content", "media", 3)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, int64(5), refs[0].UID)

	created := &domain.FileReference{Identifier: "new.csv", Extension: "csv"}
	require.NoError(t, repo.Save(ctx, created))
	assert.NotZero(t, created.UID)
	assert.False(t, created.CreatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, 5))
	_, err = repo.GetByUID(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrFileReferenceNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 42), domain.ErrFileReferenceNotFound)
}

func TestDatastoreErrorMapping(t *testing.T) {
	ctx := context.Background()

	repo := &datastoreFileReferenceRepository{client: &fakeDatastoreClient{err: googlecloud.ErrInvalidKey}}
	_, err := repo.GetByUID(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	boom := errors.New("unavailable")
	repo = &datastoreFileReferenceRepository{client: &fakeDatastoreClient{err: boom}}
	_, err = repo.GetByUID(ctx, 1)
	assert.ErrorIs(t, err, boom)
}
