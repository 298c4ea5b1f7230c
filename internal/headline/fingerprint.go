package headline

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mohammad-safakhou/localseo/models"
)

// Fingerprint identifies a business descriptor. Only equality is meaningful.
type Fingerprint string

func (f Fingerprint) String() string { return string(f) }

// DeriveKey hashes the descriptor fields in positional order.
func DeriveKey(d models.BusinessDescriptor) Fingerprint {
	joined := strings.Join([]string{d.Name, d.MainType, d.SubType, d.Location, d.Description}, "|")
	sum := sha256.Sum256([]byte(joined))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// NamespacedKey scopes a fingerprint to the prompt that generates the set, so different
// prompts never share a set. An empty prompt means defaultPrompt, and defaultPrompt
// (DefaultPrompt when empty) keeps the bare fingerprint.
func NamespacedKey(prompt, defaultPrompt string, f Fingerprint) string {
	if defaultPrompt == "" {
		defaultPrompt = DefaultPrompt
	}
	if prompt == "" || prompt == defaultPrompt {
		return f.String()
	}
	return prompt + "/" + f.String()
}

const DefaultPrompt = "default"
