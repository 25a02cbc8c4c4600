// Package effect defines the canonical effect taxonomy used across the
// rewind enforcement pipeline. Every potentially non-deterministic operation
// is named by an EffectType string and classified into a Source category by
// ordered rule matching before any policy decision is made.
package effect

import (
	"fmt"
	"strings"
)

// Type names a specific non-deterministic operation, e.g. "time.now",
// "random.randint", or "http.get". It is a free-form identifier: the
// classifier never validates it against a fixed enum, only against ordered
// classification rules, so new effect families can be added without touching
// the enforcement core.
type Type string

// Validate reports whether the effect type is usable. Empty or
// whitespace-only strings are rejected at the call boundary.
func (t Type) Validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return &InvalidTypeError{Type: t}
	}
	return nil
}

// Source categorizes an effect type by the origin of its non-determinism.
type Source string

// Source category constants. COMPUTE is the only deterministic category;
// everything else represents an outcome that can vary across executions.
const (
	SourceTime       Source = "time"
	SourceRandom     Source = "random"
	SourceUUID       Source = "uuid"
	SourceNetwork    Source = "network"
	SourceDatabase   Source = "database"
	SourceFilesystem Source = "filesystem"
	SourceCompute    Source = "compute"
	SourceOther      Source = "other"
)

// Deterministic reports whether effects from this source are reproducible
// without injection. Only COMPUTE qualifies; unknown sources are treated as
// non-deterministic.
func (s Source) Deterministic() bool {
	return s == SourceCompute
}

// Sources returns all source categories in display order.
func Sources() []Source {
	return []Source{
		SourceTime,
		SourceRandom,
		SourceUUID,
		SourceNetwork,
		SourceDatabase,
		SourceFilesystem,
		SourceCompute,
		SourceOther,
	}
}

// Rule maps effect types to a Source. A rule matches when the effect type
// starts with Prefix, or (if Prefix is empty) contains Contains.
type Rule struct {
	Prefix   string `yaml:"prefix"`
	Contains string `yaml:"contains"`
	Source   Source `yaml:"source"`
}

// matches reports whether the rule applies to the given effect type.
func (r Rule) matches(t Type) bool {
	s := string(t)
	if r.Prefix != "" {
		return strings.HasPrefix(s, r.Prefix)
	}
	if r.Contains != "" {
		return strings.Contains(s, r.Contains)
	}
	return false
}

// defaultRules is the built-in classification table. Order matters: the
// first matching rule wins, so more specific prefixes come first.
var defaultRules = []Rule{
	{Prefix: "time.", Source: SourceTime},
	{Prefix: "clock.", Source: SourceTime},
	{Prefix: "random.", Source: SourceRandom},
	{Prefix: "rand.", Source: SourceRandom},
	{Prefix: "uuid", Source: SourceUUID},
	{Contains: "uuid", Source: SourceUUID},
	{Prefix: "http.", Source: SourceNetwork},
	{Prefix: "https.", Source: SourceNetwork},
	{Prefix: "net.", Source: SourceNetwork},
	{Prefix: "grpc.", Source: SourceNetwork},
	{Prefix: "queue.", Source: SourceNetwork},
	{Prefix: "db.", Source: SourceDatabase},
	{Prefix: "sql.", Source: SourceDatabase},
	{Prefix: "redis.", Source: SourceDatabase},
	{Prefix: "file.", Source: SourceFilesystem},
	{Prefix: "fs.", Source: SourceFilesystem},
	{Prefix: "os.", Source: SourceFilesystem},
	{Prefix: "compute.", Source: SourceCompute},
	{Prefix: "hash.", Source: SourceCompute},
	{Prefix: "math.", Source: SourceCompute},
}

// Classifier maps effect types to sources via ordered rule matching.
// Classification is a pure function of the effect type string: stable and
// total. Effect types matching no rule classify as SourceOther, never as
// SourceCompute, so unknown operations are always treated conservatively.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier using the built-in rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// NewClassifierWithRules returns a classifier that consults the given extra
// rules before the built-in table, so callers can extend or override the
// default classification for new effect families.
func NewClassifierWithRules(extra []Rule) *Classifier {
	rules := make([]Rule, 0, len(extra)+len(defaultRules))
	rules = append(rules, extra...)
	rules = append(rules, defaultRules...)
	return &Classifier{rules: rules}
}

// Classify returns the source category for the effect type. The effect type
// must be valid; invalid types classify as SourceOther so that classification
// stays total even when validation is skipped upstream.
func (c *Classifier) Classify(t Type) Source {
	for _, r := range c.rules {
		if r.matches(t) {
			return r.Source
		}
	}
	return SourceOther
}

// InvalidTypeError reports an empty or malformed effect type string.
type InvalidTypeError struct {
	Type Type
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid effect type %q: must be a non-empty identifier", string(e.Type))
}
