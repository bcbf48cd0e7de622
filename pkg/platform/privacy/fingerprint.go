package privacy

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprinter derives stable, keyed digests of free text (queries) so logs
// and traces can correlate interactions without carrying the text itself.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter returns a Fingerprinter keyed with key. Keys longer than
// 64 bytes are truncated; an empty key yields an unkeyed digest.
func NewFingerprinter(key []byte) *Fingerprinter {
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Fingerprinter{key: k}
}

// Fingerprint returns a 16-hex-character digest of text, or "" for empty text.
func (f *Fingerprinter) Fingerprint(text string) string {
	if text == "" {
		return ""
	}
	var key []byte
	if f != nil {
		key = f.key
	}
	h, err := blake2b.New(8, key)
	if err != nil {
		// Only reachable with an oversized key, which NewFingerprinter prevents.
		return ""
	}
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
