package domain

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

var (
	ErrFileReferenceNotFound = errors.New("file reference not found")
	ErrFileNotFound          = errors.New("file not found")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrInvalidInput          = errors.New("invalid input")
)

// FileReference links an uploaded file to a field of a content record.
type FileReference struct {
	UID        int64     `json:"uid"`
	TableName  string    `json:"tableName"`
	FieldName  string    `json:"fieldName"`
	RecordUID  int64     `json:"recordUid"`
	Identifier string    `json:"identifier"` // path below the storage root
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	Size       int64     `json:"size"`
	Sorting    int       `json:"sorting"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FileExtension returns the lower-cased extension without dot, falling back
// to the identifier when Extension is not stored.
func (r FileReference) FileExtension() string {
	ext := r.Extension
	if ext == "" {
		ext = path.Ext(r.Identifier)
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DisplayName returns Name or the base of Identifier.
func (r FileReference) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return path.Base(r.Identifier)
}

type FileReferenceRepository interface {
	GetByUID(ctx context.Context, uid int64) (*FileReference, error)
	ListByRecord(ctx context.Context, tableName, fieldName string, recordUID int64) ([]FileReference, error)
	Save(ctx context.Context, ref *FileReference) error
	Delete(ctx context.Context, uid int64) error
}
