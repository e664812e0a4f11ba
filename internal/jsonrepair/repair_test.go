package jsonrepair

import (
	"encoding/json"
	"testing"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean input unchanged",
			in:   `[["MATNR", true, "Material Number", "MATNR", "CHAR", "18", "0"]]`,
			want: `[["MATNR", true, "Material Number", "MATNR", "CHAR", "18", "0"]]`,
		},
		{
			name: "interior quote escaped",
			in:   `[["F1", false, "size 10" pipe", "F1", "CHAR", "10", "0"]]`,
			want: `[["F1", false, "size 10\" pipe", "F1", "CHAR", "10", "0"]]`,
		},
		{
			name: "quote before separator is a closer",
			in:   `["a", "b"]`,
			want: `["a", "b"]`,
		},
		{
			name: "quote at end of input is a closer",
			in:   `"tail"`,
			want: `"tail"`,
		},
		{
			name: "whitespace before separator still a closer",
			in:   `["a"  , "b"]`,
			want: `["a"  , "b"]`,
		},
		{
			name: "empty input",
			in:   ``,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.in)
			if got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairIdempotent(t *testing.T) {
	inputs := []string{
		`[["F1", false, "size 10" pipe", "F1", "CHAR", "10", "0"]]`,
		`[["A", true, "desc with "two" quoted "words"", "A", "CHAR", "5", "0"]]`,
		`["clean", "strings"]`,
	}
	for _, in := range inputs {
		once := Repair(in)
		twice := Repair(once)
		if once != twice {
			t.Errorf("Repair not idempotent:\n once=%q\ntwice=%q", once, twice)
		}
	}
}

func TestRepairProducesParseableJSON(t *testing.T) {
	in := `[["F1", false, "size 10" pipe", "F1", "CHAR", "10", "0"], ["F2", true, "plain", "F2", "NUMC", "4", "0"]]`
	repaired := Repair(in)

	var parsed [][]any
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		t.Fatalf("repaired text does not parse: %v\nrepaired=%q", err, repaired)
	}
	if len(parsed) != 2 {
		t.Fatalf("parsed %d records, want 2", len(parsed))
	}
	if parsed[0][2] != `size 10" pipe` {
		t.Errorf("field desc = %q, want %q", parsed[0][2], `size 10" pipe`)
	}
}
