// Package record implements the generic record/replay store for opaque
// external effect outcomes (HTTP responses, DB query results, and the
// like). Stored records are matched during replay by the structural
// identity of their intent rather than by call order, which keeps replay
// stable when minor code changes reorder data-dependent calls.
package record

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rewind-hq/rewind/core/effect"
)

// Intent is the semantic request payload of an external effect: the URL and
// params of an HTTP call, the SQL text and bindings of a query. Values must
// be JSON-serializable; nested maps and lists are canonicalized recursively.
type Intent map[string]any

// Keys returns the intent's top-level keys in sorted order, for diagnostics.
func (in Intent) Keys() []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// canonicalJSON renders v as deterministic JSON: object keys sorted at
// every nesting level, numeric values in their shortest form. Two intents
// with identical key/value pairs produce identical bytes regardless of
// construction order or whether they round-tripped through a manifest file.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializing intent: %w", err)
	}
	// Round-trip through interface form so that e.g. int(1) and float64(1)
	// normalize identically after manifest load.
	var norm any
	if err := json.Unmarshal(raw, &norm); err != nil {
		return nil, fmt.Errorf("normalizing intent: %w", err)
	}
	return json.Marshal(norm)
}

// IntentKey produces a deterministic SHA-256 hex digest from the effect type
// and the canonical form of the intent. The digest is stable across runs as
// long as the structural content is identical, making it the lookup key for
// replay matching.
func IntentKey(effectType effect.Type, intent Intent) (string, error) {
	canonical, err := canonicalJSON(intent)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	// Null byte separator avoids ambiguous concatenations.
	_, _ = fmt.Fprintf(h, "%s\x00%s", string(effectType), canonical)
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
