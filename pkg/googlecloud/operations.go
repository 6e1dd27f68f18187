package googlecloud

import (
	"context"
	"time"

	"cloud.google.com/go/datastore"
)

// GetFileReference retrieves an active file reference by uid.
func (c *Client) GetFileReference(ctx context.Context, uid int64) (*FileReferenceEntity, error) {
	if uid <= 0 {
		return nil, ErrInvalidKey
	}
	key := datastore.IDKey(KindFileReference, uid, nil)

	var ref FileReferenceEntity
	err := WithRetry(ctx, c.retry, func() error {
		return c.ds.Get(ctx, key, &ref)
	})
	if err != nil {
		return nil, WrapDatastoreError(err)
	}
	if ref.Deleted {
		return nil, ErrNotFound
	}
	ref.UID = uid
	return &ref, nil
}

// ListFileReferences returns the active references of one record field ordered by sorting.
func (c *Client) ListFileReferences(ctx context.Context, tableName, fieldName string, recordUID int64) ([]FileReferenceEntity, error) {
	query := datastore.NewQuery(KindFileReference).
		Filter("table_name =", tableName).
		Filter("field_name =", fieldName).
		Filter("record_uid =", recordUID).
		Filter("deleted =", false).
		Order("sorting")

	var refs []FileReferenceEntity
	var keys []*datastore.Key
	err := WithRetry(ctx, c.retry, func() error {
		refs = nil
		var err error
		keys, err = c.ds.GetAll(ctx, query, &refs)
		return err
	})
	if err != nil {
		return nil, WrapDatastoreError(err)
	}

	for i, key := range keys {
		refs[i].UID = key.ID
	}
	return refs, nil
}

// CreateFileReference stores a new reference and assigns its uid.
func (c *Client) CreateFileReference(ctx context.Context, ref *FileReferenceEntity) error {
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}

	// IncompleteKey will auto-generate an int64 ID
	key := datastore.IncompleteKey(KindFileReference, nil)
	newKey, err := c.ds.Put(ctx, key, ref)
	if err != nil {
		return WrapDatastoreError(err)
	}
	ref.UID = newKey.ID
	return nil
}
