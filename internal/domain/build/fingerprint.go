package build

import (
	"crypto/sha256"
	"encoding/hex"

	"encore/internal/domain/content"
)

// Fingerprint identifies one build input state; the serve loop compares
// it against the stored one to skip no-op rebuilds.
type Fingerprint struct {
	ContentHash string
	ConfigHash  string
	ThemeHash   string
}

func (f Fingerprint) Sum() string {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte(f.ConfigHash))
	h.Write([]byte(f.ThemeHash))
	return hex.EncodeToString(h.Sum(nil))
}

// ContentFingerprint folds every entry's content hash, in collection
// order, into one digest.
func ContentFingerprint(entries []content.Entry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.Slug))
		h.Write([]byte{0})
		h.Write([]byte(e.Body.ContentHash))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
