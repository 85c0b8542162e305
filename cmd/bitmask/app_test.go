package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const fieldDoc = `{
	"name": "bitmask",
	"choices": [
		[1, "a"],
		["g", [[4, "b"]]], // grouped
	],
}`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "field.hujson")
	if err := os.WriteFile(path, []byte(fieldDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	_, err := newApp(&out).Parse(args)
	return out.String(), err
}

func TestCommands(t *testing.T) {
	config := writeConfig(t)
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "encode zero", args: []string{"encode", "0"}, want: "00\n"},
		{name: "encode wide", args: []string{"encode", "0x1000000000000000000"}, want: "01000000000000000000\n"},
		{name: "encode with field", args: []string{"-c", config, "encode", "5"}, want: "05\n"},
		{name: "encode disabled", args: []string{"-c", config, "encode", "2"}, wantErr: true},
		{name: "decode", args: []string{"decode", "0x0105"}, want: "261\n"},
		{name: "decode bad hex", args: []string{"decode", "zz"}, wantErr: true},
		{name: "bits", args: []string{"bits", "5"}, want: "1\n4\n"},
		{name: "bits labelled", args: []string{"-c", config, "bits", "7"}, want: "1\ta\n2\n4\tb\n"},
		{name: "validate ok", args: []string{"-c", config, "validate", "5", "0"}, want: "5\tok\t5\n0\tok\t0\n"},
		{name: "validate needs field", args: []string{"validate", "5"}, wantErr: true},
		{name: "changed same", args: []string{"-c", config, "changed", "--initial", "1", "1"}, want: "false\n"},
		{name: "changed added", args: []string{"-c", config, "changed", "--initial", "1", "1", "4"}, want: "true\n"},
		{name: "changed from null", args: []string{"-c", config, "changed"}, want: "false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, output %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestValidateReportsEveryValue(t *testing.T) {
	got, err := run(t, "-c", writeConfig(t), "validate", "1", "2", "6")
	if err == nil {
		t.Fatal("expected an error")
	}
	want := "1\tok\t1\n" +
		"2\tinvalid\tvalue 2 contains disabled bit(s) 2\n" +
		"6\tinvalid\tvalue 6 contains disabled bit(s) 2\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hujson")
	if err := os.WriteFile(path, []byte(`{"choices": []}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "-c", path, "bits", "1"); err == nil {
		t.Fatal("expected an error")
	}
}
