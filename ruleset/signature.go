package ruleset

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// canonicalizeHashes produces a deterministic byte string from a
// manifest's PolicyFileHashes so the root signature does not depend on
// Go map iteration order.
func canonicalizeHashes(hashes map[string]string) []byte {
	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(hashes[name])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// HashPolicyFile computes the per-file hash recorded in
// Manifest.PolicyFileHashes.
func HashPolicyFile(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// SignManifest computes the root HMAC-SHA256 signature over m's
// PolicyFileHashes using secret, and sets m.Signature.
func SignManifest(m *Manifest, secret []byte) {
	mac := hmac.New(sha256.New, secret)
	mac.Write(canonicalizeHashes(m.PolicyFileHashes))
	m.Signature = hex.EncodeToString(mac.Sum(nil))
}

// VerifyManifestSignature recomputes the root HMAC over m's
// PolicyFileHashes and compares it against m.Signature in constant time.
// A manifest with no Signature is rejected outright — governance
// policies are never trusted unsigned, fail-closed per spec.md's policy
// engine invariants.
func VerifyManifestSignature(m *Manifest, secret []byte) error {
	if m.Signature == "" {
		return fmt.Errorf("ruleset: manifest carries no signature, refusing to trust policy content")
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(canonicalizeHashes(m.PolicyFileHashes))
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(m.Signature)
	if err != nil {
		return fmt.Errorf("ruleset: manifest signature is not valid hex: %w", err)
	}
	if !hmac.Equal(expected, got) {
		return fmt.Errorf("ruleset: manifest signature mismatch")
	}

	for name, hash := range m.PolicyFileHashes {
		if len(hash) != sha256.Size*2 {
			return fmt.Errorf("ruleset: policy file %q has malformed hash", name)
		}
	}
	return nil
}
