package audit

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rewind-hq/rewind/core/effect"
	"github.com/rewind-hq/rewind/core/enforce"
)

// LoadExport reads a previously exported trail from a JSON file, for
// inspection tooling running outside the recording process.
func LoadExport(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading audit export %s: %w", path, err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parsing audit export %s: %w", path, err)
	}
	return &export, nil
}

// Filtered returns the export's entries matching the filter, in stored
// order, applying the same conjunctive semantics as Trail.Entries.
func (e *Export) Filtered(f Filter) []Entry {
	matched := make([]Entry, 0, len(e.Entries))
	for _, entry := range e.Entries {
		if f.Outcome != "" && entry.Decision.Outcome != f.Outcome {
			continue
		}
		if f.Source != "" && entry.Decision.Source != f.Source {
			continue
		}
		matched = append(matched, entry)
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[len(matched)-f.Limit:]
	}
	return matched
}

// Summarize computes a Summary over the export's entries, mirroring
// Trail.Summary for out-of-process inspection.
func (e *Export) Summarize() Summary {
	s := Summary{
		SessionID:    e.SessionID,
		TotalEntries: len(e.Entries),
		ByOutcome:    make(map[enforce.Outcome]int),
		BySource:     make(map[effect.Source]int),
	}
	for i := range e.Entries {
		entry := e.Entries[i]
		s.ByOutcome[entry.Decision.Outcome]++
		s.BySource[entry.Decision.Source]++
		ts := entry.Decision.Timestamp
		if i == 0 {
			s.FirstDecision = &ts
		}
		if i == len(e.Entries)-1 {
			s.LastDecision = &ts
		}
	}
	return s
}
