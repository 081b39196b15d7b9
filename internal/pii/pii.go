// Package pii keeps personally identifying fields out of log sinks.
// Values are hashed (sha256, truncated) or reduced to lengths before they
// reach zerolog; nothing here is reversible.
package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

func hash(prefix, v string) string {
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(v))))
	return prefix + hex.EncodeToString(sum[:])[:12]
}

// HashIP returns a stable, non-reversible token for a client address.
func HashIP(addr string) string { return hash("ip_", addr) }

// HashEmail returns a stable token for an email address.
func HashEmail(email string) string { return hash("em_", email) }

// HashPhone returns a stable token for a phone number.
func HashPhone(phone string) string { return hash("ph_", phone) }

// freeTextKeys are logged as lengths only.
var freeTextKeys = map[string]bool{
	"message": true,
	"goal":    true,
	"product": true,
}

// Sanitize returns a copy of data safe to log: emails and phones are hashed,
// names dropped, free text replaced by its length. Nested maps are sanitized
// recursively; unknown keys pass through.
func Sanitize(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		key := strings.ToLower(k)
		switch {
		case key == "email":
			if s, ok := v.(string); ok {
				out[k] = HashEmail(s)
			}
		case key == "phone":
			if s, ok := v.(string); ok {
				out[k] = HashPhone(s)
			}
		case key == "name":
			out[k] = "[redacted]"
		case freeTextKeys[key]:
			if s, ok := v.(string); ok {
				out[k] = fmt.Sprintf("[%d chars]", len(s))
			}
		default:
			if m, ok := v.(map[string]any); ok {
				out[k] = Sanitize(m)
			} else {
				out[k] = v
			}
		}
	}
	return out
}
