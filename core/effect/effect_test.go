package effect

import "testing"

func TestClassify_Defaults(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		effectType Type
		want       Source
	}{
		{"time.now", SourceTime},
		{"clock.monotonic", SourceTime},
		{"random.randint", SourceRandom},
		{"rand.float", SourceRandom},
		{"uuid4", SourceUUID},
		{"ids.uuid", SourceUUID},
		{"http.get", SourceNetwork},
		{"grpc.call", SourceNetwork},
		{"queue.publish", SourceNetwork},
		{"db.query", SourceDatabase},
		{"sql.exec", SourceDatabase},
		{"redis.get", SourceDatabase},
		{"file.read", SourceFilesystem},
		{"fs.stat", SourceFilesystem},
		{"compute.hash", SourceCompute},
		{"hash.sha256", SourceCompute},
		{"math.sqrt", SourceCompute},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.effectType); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.effectType, got, tt.want)
		}
	}
}

func TestClassify_UnknownIsOther(t *testing.T) {
	c := NewClassifier()

	for _, et := range []Type{"stripe.charge", "unknown", "x"} {
		got := c.Classify(et)
		if got != SourceOther {
			t.Errorf("Classify(%q) = %s, want %s", et, got, SourceOther)
		}
		if got.Deterministic() {
			t.Errorf("unknown effect %q classified as deterministic", et)
		}
	}
}

func TestClassify_CustomRulesTakePrecedence(t *testing.T) {
	c := NewClassifierWithRules([]Rule{
		{Prefix: "stripe.", Source: SourceNetwork},
		{Prefix: "time.logical", Source: SourceCompute},
	})

	if got := c.Classify("stripe.charge"); got != SourceNetwork {
		t.Fatalf("Classify(stripe.charge) = %s, want %s", got, SourceNetwork)
	}
	// Custom rule wins over the built-in "time." prefix.
	if got := c.Classify("time.logical.tick"); got != SourceCompute {
		t.Fatalf("Classify(time.logical.tick) = %s, want %s", got, SourceCompute)
	}
	// Built-ins still apply where no custom rule matches.
	if got := c.Classify("time.now"); got != SourceTime {
		t.Fatalf("Classify(time.now) = %s, want %s", got, SourceTime)
	}
}

func TestClassify_Stable(t *testing.T) {
	c := NewClassifier()
	for i := 0; i < 3; i++ {
		if got := c.Classify("db.query"); got != SourceDatabase {
			t.Fatalf("classification not stable: got %s on iteration %d", got, i)
		}
	}
}

func TestTypeValidate(t *testing.T) {
	if err := Type("time.now").Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, bad := range []Type{"", "   ", "\t"} {
		err := bad.Validate()
		if err == nil {
			t.Fatalf("Validate(%q) = nil, want error", bad)
		}
		if _, ok := err.(*InvalidTypeError); !ok {
			t.Fatalf("Validate(%q) error type = %T, want *InvalidTypeError", bad, err)
		}
	}
}

func TestSourceDeterministic(t *testing.T) {
	for _, s := range Sources() {
		want := s == SourceCompute
		if s.Deterministic() != want {
			t.Errorf("%s.Deterministic() = %v, want %v", s, s.Deterministic(), want)
		}
	}
}
