package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/pkg/googlecloud"
)

// datastoreClient is the part of googlecloud.Client used by the repository.
type datastoreClient interface {
	GetFileReference(ctx context.Context, uid int64) (*googlecloud.FileReferenceEntity, error)
	ListFileReferences(ctx context.Context, tableName, fieldName string, recordUID int64) ([]googlecloud.FileReferenceEntity, error)
	UpsertFileReference(ctx context.Context, ref *googlecloud.FileReferenceEntity) error
	SoftDeleteFileReference(ctx context.Context, uid int64) error
}

type datastoreFileReferenceRepository struct {
	client datastoreClient
}

func NewDatastoreFileReferenceRepository(client *googlecloud.Client) domain.FileReferenceRepository {
	return &datastoreFileReferenceRepository{client: client}
}

func (r *datastoreFileReferenceRepository) GetByUID(ctx context.Context, uid int64) (*domain.FileReference, error) {
	entity, err := r.client.GetFileReference(ctx, uid)
	if err != nil {
		return nil, mapDatastoreError(err, uid)
	}
	ref := fromEntity(*entity)
	return &ref, nil
}

func (r *datastoreFileReferenceRepository) ListByRecord(ctx context.Context, tableName, fieldName string, recordUID int64) ([]domain.FileReference, error) {
	entities, err := r.client.ListFileReferences(ctx, tableName, fieldName, recordUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file references: %w", err)
	}
	refs := make([]domain.FileReference, 0, len(entities))
	for _, e := range entities {
		refs = append(refs, fromEntity(e))
	}
	return refs, nil
}

func (r *datastoreFileReferenceRepository) Save(ctx context.Context, ref *domain.FileReference) error {
	if ref == nil || ref.Identifier == "" {
		return domain.ErrInvalidInput
	}
	entity := toEntity(*ref)
	if err := r.client.UpsertFileReference(ctx, &entity); err != nil {
		return fmt.Errorf("failed to save file reference: %w", err)
	}
	ref.UID = entity.UID
	ref.CreatedAt = entity.CreatedAt
	return nil
}

func (r *datastoreFileReferenceRepository) Delete(ctx context.Context, uid int64) error {
	if err := r.client.SoftDeleteFileReference(ctx, uid); err != nil {
		return mapDatastoreError(err, uid)
	}
	return nil
}

func mapDatastoreError(err error, uid int64) error {
	if googlecloud.IsNotFoundError(err) {
		return domain.ErrFileReferenceNotFound
	}
	if errors.Is(err, googlecloud.ErrInvalidKey) {
		return fmt.Errorf("%w: uid %d", domain.ErrInvalidInput, uid)
	}
	return fmt.Errorf("failed to access file reference %d: %w", uid, err)
}

func fromEntity(e googlecloud.FileReferenceEntity) domain.FileReference {
	return domain.FileReference{
		UID:        e.UID,
		TableName:  e.TableName,
		FieldName:  e.FieldName,
		RecordUID:  e.RecordUID,
		Identifier: e.Identifier,
		Name:       e.Name,
		Extension:  e.Extension,
		Size:       e.Size,
		Sorting:    e.Sorting,
		CreatedAt:  e.CreatedAt,
	}
}

func toEntity(r domain.FileReference) googlecloud.FileReferenceEntity {
	return googlecloud.FileReferenceEntity{
		UID:        r.UID,
		TableName:  r.TableName,
		FieldName:  r.FieldName,
		RecordUID:  r.RecordUID,
		Identifier: r.Identifier,
		Name:       r.Name,
		Extension:  r.Extension,
		Size:       r.Size,
		Sorting:    r.Sorting,
		CreatedAt:  r.CreatedAt,
	}
}
