package core

import (
	"fmt"

	"github.com/rewind-hq/rewind/core/inject"
	"github.com/rewind-hq/rewind/core/manifest"
	"github.com/rewind-hq/rewind/core/record"
)

// rngProbeDraws is how many values are drawn when checking RNG stream
// equality between two reconstructions of the same manifest.
const rngProbeDraws = 128

// Check is one named verification step over a manifest.
type Check struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
}

// VerifyResult holds the outcome of a manifest verification run.
type VerifyResult struct {
	Pass    bool    `json:"pass"`
	Checks  []Check `json:"checks"`
	Summary string  `json:"summary"`
}

// Verify checks that a manifest can actually drive a faithful replay: the
// RNG seed reproduces an identical stream, the UUID sequence replays in
// order and exhausts exactly at its end, and every effect record is
// reachable by structural intent match. It reconstructs replay components
// from the manifest twice and compares, so a passing manifest is one whose
// replays agree with each other.
func Verify(m *manifest.Manifest) *VerifyResult {
	r := &VerifyResult{Pass: true}

	add := func(name string, pass bool, detail string) {
		r.Checks = append(r.Checks, Check{Name: name, Pass: pass, Detail: detail})
		if !pass {
			r.Pass = false
		}
	}

	// Structural validation.
	if err := m.Validate(); err != nil {
		add("manifest-valid", false, err.Error())
		r.Summary = "invalid manifest"
		return r
	}
	add("manifest-valid", true, "")

	// RNG stream equality across two reconstructions.
	a, b := inject.NewRNG(m.RNGSeed), inject.NewRNG(m.RNGSeed)
	rngOK := true
	for i := 0; i < rngProbeDraws; i++ {
		if a.Float64() != b.Float64() {
			add("rng-determinism", false, fmt.Sprintf("streams diverged at draw %d", i))
			rngOK = false
			break
		}
	}
	if rngOK {
		add("rng-determinism", true, fmt.Sprintf("%d draws identical from seed %d", rngProbeDraws, m.RNGSeed))
	}

	// UUID sequence replays in order and fails past the end.
	uuids, err := m.ParsedUUIDs()
	if err != nil {
		add("uuid-replay", false, err.Error())
	} else {
		rep := inject.NewReplayUUID(uuids)
		uuidOK := true
		for i, want := range uuids {
			got, err := rep.UUID4()
			if err != nil {
				add("uuid-replay", false, fmt.Sprintf("call %d: %v", i, err))
				uuidOK = false
				break
			}
			if got != want {
				add("uuid-replay", false, fmt.Sprintf("call %d returned %s, recorded %s", i, got, want))
				uuidOK = false
				break
			}
		}
		if uuidOK {
			if _, err := rep.UUID4(); err == nil {
				add("uuid-replay", false, fmt.Sprintf("call %d past end of sequence did not fail", len(uuids)))
			} else {
				add("uuid-replay", true, fmt.Sprintf("%d UUIDs replay in order, sequence exhausts cleanly", len(uuids)))
			}
		}
	}

	// Every effect record is reachable by its own intent, FIFO within key.
	rep, err := record.NewReplayRecorder(m.Effects)
	if err != nil {
		add("effect-replay", false, err.Error())
	} else {
		effectOK := true
		for i, rec := range m.Effects {
			got, err := rep.RequireReplayResult(rec.EffectType, rec.Intent)
			if err != nil {
				add("effect-replay", false, fmt.Sprintf("record %d (%s): %v", i, rec.EffectType, err))
				effectOK = false
				break
			}
			if string(got) != string(rec.Result) {
				add("effect-replay", false,
					fmt.Sprintf("record %d (%s): replay returned a different record for the same intent", i, rec.EffectType))
				effectOK = false
				break
			}
		}
		if effectOK {
			add("effect-replay", true, fmt.Sprintf("%d effect records reachable by intent match", len(m.Effects)))
		}
	}

	passed := 0
	for _, c := range r.Checks {
		if c.Pass {
			passed++
		}
	}
	r.Summary = fmt.Sprintf("%d/%d checks passed", passed, len(r.Checks))
	return r
}
