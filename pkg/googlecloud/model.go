package googlecloud

import (
	"time"
)

const KindFileReference = "FileReference"

// FileReferenceEntity is the stored form of a file reference. The uid is the
// numeric key id.
type FileReferenceEntity struct {
	UID        int64     `datastore:"-" json:"uid"`
	TableName  string    `datastore:"table_name" json:"table_name"`
	FieldName  string    `datastore:"field_name" json:"field_name"`
	RecordUID  int64     `datastore:"record_uid" json:"record_uid"`
	Identifier string    `datastore:"identifier,noindex" json:"identifier"`
	Name       string    `datastore:"name,noindex" json:"name"`
	Extension  string    `datastore:"extension" json:"extension"`
	Size       int64     `datastore:"size,noindex" json:"size"`
	Sorting    int       `datastore:"sorting" json:"sorting"`
	Deleted    bool      `datastore:"deleted" json:"deleted"`
	CreatedAt  time.Time `datastore:"created_at" json:"created_at"`
}
