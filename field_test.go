package bitmask

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, format)
}

func mustField(t *testing.T, cfg FieldConfig) *Field {
	t.Helper()
	f, err := NewField(cfg)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return f
}

func TestFieldCleansValidChoice(t *testing.T) {
	f := mustField(t, FieldConfig{Choices: []Option{Bit(1, "0"), Bit(4, "2")}})
	cases := map[string]uint64{
		"first_choice":  1,
		"second_choice": 4,
		"combo":         5,
		"zero":          0,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := f.Clean(New(want).String())
			if err != nil {
				t.Fatal(err)
			}
			if !got.Valid || !got.Equal(New(want)) {
				t.Fatalf("got %s, want %d", got, want)
			}
		})
	}
}

func TestFieldRejectsDisabledBits(t *testing.T) {
	f := mustField(t, FieldConfig{Choices: []Option{Bit(1, "0"), Bit(4, "2")}})
	cases := map[string]struct {
		value    string
		disabled uint64
	}{
		"single_invalid_bit": {"2", 2},
		"partly_invalid_1":   {"3", 2},
		"partly_invalid_2":   {"6", 2},
		"partly_invalid_3":   {"7", 2},
		"two_invalid_bits":   {"10", 10},
	}
	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.Clean(tt.value)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Kind != KindDisabledBits || !errors.Is(err, ErrDisabledBits) {
				t.Fatalf("got kind %s", verr.Kind)
			}
			if verr.Value.String() != tt.value {
				t.Fatalf("error carries %s, want %s", verr.Value, tt.value)
			}
			if !verr.Disabled.Equal(New(tt.disabled)) {
				t.Fatalf("disabled bits %s, want %d", verr.Disabled, tt.disabled)
			}
		})
	}
}

func TestFieldAcceptsCombinations(t *testing.T) {
	declared := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a"), Bit(4, "b"), Bit(5, "ab")}})
	covered := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a"), Bit(4, "b")}})
	for _, f := range []*Field{declared, covered} {
		if _, err := f.Clean(5); err != nil {
			t.Fatalf("5 should validate: %v", err)
		}
	}
}

func TestFieldOutOfRange(t *testing.T) {
	f := mustField(t, FieldConfig{
		Choices:  []Option{Bit(1, "a"), Bit(0x8000, "b")},
		MaxBytes: SmallWidth,
	})
	if _, err := f.Clean(0x8001); err != nil {
		t.Fatal(err)
	}
	_, err := f.Clean(0x10000)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if max, ok := f.Max(); !ok || !max.Equal(New(0xffff)) {
		t.Fatalf("max is %s", max)
	}
}

func TestFieldRangeIsCheckedBeforeCoverage(t *testing.T) {
	f := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a")}, MaxBytes: 1})
	_, err := f.Clean(0x102)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != KindOutOfRange {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestFieldEmptyValues(t *testing.T) {
	f := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a")}})
	for _, raw := range []interface{}{nil, "", (*big.Int)(nil), NullBitmask{}} {
		v, err := f.Clean(raw)
		if err != nil {
			t.Fatalf("Clean(%#v): %v", raw, err)
		}
		if v.Valid {
			t.Fatalf("Clean(%#v) should be NULL, got %s", raw, v)
		}
	}

	required := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a")}, Required: true})
	if _, err := required.Clean(nil); !errors.Is(err, ErrRequired) {
		t.Fatalf("expected required error, got %v", err)
	}
	if _, err := required.Clean(0); err != nil {
		t.Fatalf("zero is a value, not absence: %v", err)
	}
}

func TestFieldRejectsUncoercible(t *testing.T) {
	f := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a")}})
	for _, raw := range []interface{}{"abc", "-1", -1, 1.5, struct{}{}} {
		_, err := f.Clean(raw)
		var cerr *CoercionError
		if !errors.As(err, &cerr) {
			t.Errorf("Clean(%#v): expected *CoercionError, got %v", raw, err)
		}
	}
}

func TestNewFieldConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		cfg    FieldConfig
		wantID string
	}{
		{name: "no choices", cfg: FieldConfig{Name: "flags"}, wantID: CheckChoicesRequired},
		{name: "negative choice", cfg: FieldConfig{Choices: []Option{Choice{Value: big.NewInt(-1), Label: "x"}}}, wantID: CheckChoicesInvalid},
		{name: "undeclared grouped choice", cfg: FieldConfig{Choices: []Option{Group("group", Choice{Label: "x"})}}, wantID: CheckChoicesInvalid},
		{name: "negative width", cfg: FieldConfig{Choices: []Option{Bit(1, "a")}, MaxBytes: -1}, wantID: CheckMaxBytes},
		{name: "choice too wide", cfg: FieldConfig{Choices: []Option{Bit(0x10000, "a")}, MaxBytes: SmallWidth}, wantID: CheckChoiceWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewField(tt.cfg)
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigurationError, got %v", err)
			}
			if cerr.ID != tt.wantID {
				t.Fatalf("got %s, want %s", cerr.ID, tt.wantID)
			}
			if cerr.Field != tt.cfg.Name {
				t.Fatalf("error names field %q", cerr.Field)
			}
		})
	}
}

func TestFieldEndToEnd(t *testing.T) {
	f := mustField(t, FieldConfig{
		Name:    "bitmask",
		Choices: []Option{Bit(1, "a"), Group("g", Bit(4, "b"))},
	})
	b, err := f.ToDB(5)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Encode(big.NewInt(5))
	if !bytes.Equal(b, want) {
		t.Fatalf("stored % x, want % x", b, want)
	}
	got := f.FromDB(b)
	if !got.Valid || !got.Equal(New(5)) {
		t.Fatalf("read back %s", got)
	}
	if _, err := f.ToDB(2); !errors.Is(err, ErrDisabledBits) {
		t.Fatalf("expected disabled bits, got %v", err)
	}
}

func TestFieldEmptyAndZeroAreDistinct(t *testing.T) {
	f := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a")}})

	b, err := f.ToDB(nil)
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Fatalf("NULL stored as % x", b)
	}
	if got := f.FromDB(b); got.Valid {
		t.Fatalf("NULL read back as %s", got)
	}

	b, err = f.ToDB(0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{0}) {
		t.Fatalf("zero stored as % x", b)
	}
	if got := f.FromDB(b); !got.Valid || !got.IsZero() {
		t.Fatalf("zero read back as %s", got)
	}
}

func TestFieldWideChoices(t *testing.T) {
	high := new(big.Int).Lsh(big.NewInt(1), 256)
	f := mustField(t, FieldConfig{Choices: []Option{Choice{Value: high, Label: "high"}, Bit(1, "low")}})
	v := new(big.Int).Add(high, big.NewInt(1))
	b, err := f.ToDB(v)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 33 {
		t.Fatalf("expected 33 bytes, got %d", len(b))
	}
	if got := f.FromDB(b); got.Big().Cmp(v) != 0 {
		t.Fatalf("read back %s", got)
	}
	if _, err := f.ToDB(new(big.Int).Lsh(big.NewInt(1), 255)); !errors.Is(err, ErrDisabledBits) {
		t.Fatalf("expected disabled bits, got %v", err)
	}
}

func TestFieldLogsRejections(t *testing.T) {
	f := mustField(t, FieldConfig{Name: "flags", Choices: []Option{Bit(1, "a")}})
	l := &recordingLogger{}
	f.SetLogger(l)
	if _, err := f.Clean(2); err == nil {
		t.Fatal("expected an error")
	}
	if len(l.lines) != 1 || !strings.Contains(l.lines[0], "rejected") {
		t.Fatalf("unexpected log lines %v", l.lines)
	}
}

func TestFieldChoicesAreCopied(t *testing.T) {
	f := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a"), Group("g", Bit(4, "b"))}})
	choices := f.Choices()
	choices[0] = Bit(2, "mutated")
	if got := f.Choices()[0].Label; got != "a" {
		t.Fatalf("field choices changed to %q", got)
	}
	if !f.AllowedMask().Equal(New(5)) {
		t.Fatalf("allowed mask %s", f.AllowedMask())
	}
}

func TestFieldChoiceValuesAreCopied(t *testing.T) {
	value := big.NewInt(1)
	cfg := FieldConfig{Choices: []Option{Choice{Value: value, Label: "a"}, Group("g", Bit(4, "b"))}}
	f := mustField(t, cfg)

	value.SetInt64(2)
	cfg.Choices[0] = Bit(8, "replaced")
	f.Choices()[0].Value.SetInt64(2)
	f.Choices()[1].Value.SetInt64(16)

	choices := f.Choices()
	if choices[0].Value.Int64() != 1 || choices[1].Value.Int64() != 4 {
		t.Fatalf("field choices changed to %s, %s", choices[0].Value, choices[1].Value)
	}
	if got := New(2).ListDescriptions(choices); len(got) != 0 {
		t.Fatalf("disabled bit 2 is labelled %v", got)
	}
	if _, err := f.Clean(2); !errors.Is(err, ErrDisabledBits) {
		t.Fatalf("expected disabled bits, got %v", err)
	}
}

func TestFieldConcurrentUse(t *testing.T) {
	f := mustField(t, FieldConfig{Choices: []Option{Bit(1, "a"), Bit(4, "b")}})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := f.Clean(j % 8)
				valid := j%8 == 0 || j%8 == 1 || j%8 == 4 || j%8 == 5
				if (err == nil) != valid {
					t.Errorf("Clean(%d): %v", j%8, err)
				}
			}
		}(i)
	}
	wg.Wait()
}
