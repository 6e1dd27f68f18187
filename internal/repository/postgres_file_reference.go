package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/spreadsheets/internal/domain"
)

// FileReferenceSchema creates the table used by the Postgres repository.
const FileReferenceSchema = `
CREATE TABLE IF NOT EXISTS file_references (
	uid         BIGSERIAL PRIMARY KEY,
	table_name  TEXT NOT NULL,
	field_name  TEXT NOT NULL,
	record_uid  BIGINT NOT NULL,
	identifier  TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	extension   TEXT NOT NULL DEFAULT '',
	size        BIGINT NOT NULL DEFAULT 0,
	sorting     INTEGER NOT NULL DEFAULT 0,
	deleted     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS file_references_record_idx
	ON file_references (table_name, field_name, record_uid, sorting);
`

const fileReferenceColumns = `uid, table_name, field_name, record_uid, identifier, name, extension, size, sorting, created_at`

type postgresFileReferenceRepository struct {
	db *sql.DB
}

func NewPostgresFileReferenceRepository(db *sql.DB) domain.FileReferenceRepository {
	return &postgresFileReferenceRepository{db: db}
}

// EnsureFileReferenceSchema creates the file_references table when missing.
func EnsureFileReferenceSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, FileReferenceSchema); err != nil {
		return fmt.Errorf("failed to create file_references schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFileReference(row rowScanner) (domain.FileReference, error) {
	var ref domain.FileReference
	err := row.Scan(
		&ref.UID,
		&ref.TableName,
		&ref.FieldName,
		&ref.RecordUID,
		&ref.Identifier,
		&ref.Name,
		&ref.Extension,
		&ref.Size,
		&ref.Sorting,
		&ref.CreatedAt,
	)
	return ref, err
}

func (r *postgresFileReferenceRepository) GetByUID(ctx context.Context, uid int64) (*domain.FileReference, error) {
	query := `SELECT ` + fileReferenceColumns + ` FROM file_references WHERE uid = $1 AND NOT deleted`

	ref, err := scanFileReference(r.db.QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFileReferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file reference %d: %w", uid, err)
	}
	return &ref, nil
}

func (r *postgresFileReferenceRepository) ListByRecord(ctx context.Context, tableName, fieldName string, recordUID int64) ([]domain.FileReference, error) {
	query := `SELECT ` + fileReferenceColumns + ` FROM file_references
		WHERE table_name = $1 AND field_name = $2 AND record_uid = $3 AND NOT deleted
		ORDER BY sorting, uid`

	rows, err := r.db.QueryContext(ctx, query, tableName, fieldName, recordUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file references: %w", err)
	}
	defer rows.Close()

	var refs []domain.FileReference
	for rows.Next() {
		ref, err := scanFileReference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file reference: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *postgresFileReferenceRepository) Save(ctx context.Context, ref *domain.FileReference) error {
	if ref == nil || ref.Identifier == "" {
		return domain.ErrInvalidInput
	}

	if ref.UID == 0 {
		query := `INSERT INTO file_references (table_name, field_name, record_uid, identifier, name, extension, size, sorting)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING uid, created_at`
		err := r.db.QueryRowContext(ctx, query,
			ref.TableName, ref.FieldName, ref.RecordUID, ref.Identifier, ref.Name, ref.Extension, ref.Size, ref.Sorting,
		).Scan(&ref.UID, &ref.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert file reference: %w", err)
		}
		return nil
	}

	query := `INSERT INTO file_references (uid, table_name, field_name, record_uid, identifier, name, extension, size, sorting)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (uid) DO UPDATE SET
			table_name = EXCLUDED.table_name,
			field_name = EXCLUDED.field_name,
			record_uid = EXCLUDED.record_uid,
			identifier = EXCLUDED.identifier,
			name = EXCLUDED.name,
			extension = EXCLUDED.extension,
			size = EXCLUDED.size,
			sorting = EXCLUDED.sorting,
			deleted = FALSE
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		ref.UID, ref.TableName, ref.FieldName, ref.RecordUID, ref.Identifier, ref.Name, ref.Extension, ref.Size, ref.Sorting,
	).Scan(&ref.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert file reference %d: %w", ref.UID, err)
	}
	return nil
}

func (r *postgresFileReferenceRepository) Delete(ctx context.Context, uid int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE file_references SET deleted = TRUE WHERE uid = $1 AND NOT deleted`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete file reference %d: %w", uid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrFileReferenceNotFound
	}
	return nil
}
