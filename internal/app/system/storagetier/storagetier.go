// Package storagetier decides, per file, whether content is embedded in
// the document or uploaded to the external blob store.
//
// The document store enforces a hard per-document ceiling of about 1 MiB,
// and base64 encoding inflates a payload by roughly one third, so the
// safe inline threshold sits well below the ceiling.
package storagetier

import "encoding/base64"

const (
	// InlineLimit is the size below which content is always embedded.
	InlineLimit = 700 * 1024

	// DocumentCeiling is the document store's per-document size limit.
	// Files at or above it must live in the blob store.
	DocumentCeiling = 1024 * 1024
)

// Tier is the storage placement decision for one file.
type Tier int

const (
	// TierInline embeds the payload in the document.
	TierInline Tier = iota
	// TierBlob prefers the blob store but may fall back to inline on
	// upload failure, since the encoded payload still fits a document.
	TierBlob
	// TierBlobRequired must use the blob store; on upload failure the
	// share fails rather than silently degrading.
	TierBlobRequired
)

// Select returns the tier for a file of the given decoded size.
func Select(sizeBytes int64) Tier {
	switch {
	case sizeBytes < InlineLimit:
		return TierInline
	case sizeBytes < DocumentCeiling:
		return TierBlob
	default:
		return TierBlobRequired
	}
}

// EncodedLen returns the base64 length of a payload of the given size,
// used to verify an inline fallback still fits under the ceiling.
func EncodedLen(sizeBytes int64) int64 {
	return int64(base64.StdEncoding.EncodedLen(int(sizeBytes)))
}

// FitsInline reports whether a payload of the given decoded size can be
// embedded without breaching the document ceiling once encoded.
func FitsInline(sizeBytes int64) bool {
	return EncodedLen(sizeBytes) < DocumentCeiling
}

// EncodeInline returns the base64 form stored in a document's content
// field.
func EncodeInline(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeInline reverses EncodeInline.
func DecodeInline(content string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(content)
}
