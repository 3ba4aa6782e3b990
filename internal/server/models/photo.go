package models

// Owner kinds for photo attachments.
const (
	OwnerLocation = "location"
	OwnerReview   = "review"
)

// Photo links a stored image blob to the content item that owns it.
// At most 3 photos may be attached to any single item.
type Photo struct {
	ID        int64
	OwnerKind string
	OwnerID   int64
	// StorageKey is the blob-store key (path) of the image.
	StorageKey string
}
