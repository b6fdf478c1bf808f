package models

import "time"

// StorageType identifies where a shared file's payload lives.
type StorageType string

const (
	// StorageInline embeds the payload, base64 encoded, in the document.
	StorageInline StorageType = "inline"
	// StorageBlob stores the payload in the external blob store; the
	// document keeps the blob key and a web-viewable link.
	StorageBlob StorageType = "blob"
	// StorageURL references a caller-supplied external link; no payload
	// is held by this service.
	StorageURL StorageType = "url"
)

// SharedFile represents a file shared with a team.
//
// Exactly one of Content, BlobKey, or URL identifies the payload,
// mirrored by StorageType. Version is a monotonic counter bumped on every
// content update; it is advisory, not a compare-and-swap token.
type SharedFile struct {
	ID          string        `bson:"_id" json:"id"`
	TeamID      string        `bson:"team_id" json:"teamId"` // immutable after creation
	Name        string        `bson:"name" json:"name"`
	NameCI      string        `bson:"name_ci" json:"-"`
	ParentID    *string       `bson:"parent_id,omitempty" json:"parentId,omitempty"` // nil = root
	FolderPath  string        `bson:"folder_path" json:"folderPath"`
	Permissions PermissionSet `bson:"permissions" json:"permissions"`

	FileType    string      `bson:"file_type" json:"fileType"` // MIME type
	FileSize    int64       `bson:"file_size" json:"fileSize"` // decoded size in bytes
	StorageType StorageType `bson:"storage_type" json:"storageType"`
	Content     string      `bson:"content,omitempty" json:"content,omitempty"` // inline base64 payload
	BlobKey     string      `bson:"blob_key,omitempty" json:"blobKey,omitempty"`
	URL         string      `bson:"url,omitempty" json:"url,omitempty"`
	Version     int64       `bson:"version" json:"version"`

	CreatedBy      string    `bson:"created_by" json:"createdBy"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	LastModified   time.Time `bson:"last_modified" json:"lastModified"`
	LastModifiedBy string    `bson:"last_modified_by" json:"lastModifiedBy"`
}

// IsInRoot returns true if the file is at the root level (not in any folder).
func (f *SharedFile) IsInRoot() bool {
	return f.ParentID == nil
}
