package stats

import (
	"bytes"
	"testing"
)

func TestTableAlignsColumns(t *testing.T) {
	tbl := newTable("Hands", left("Hand"), right("Accuracy"), right("Correct"))
	tbl.add("AKs", "97.50%", "12")
	tbl.add("72o", "8.00%", "3")

	lines := tbl.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Hand  Accuracy  Correct" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "AKs     97.50%       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "72o      8.00%        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTableWideRunes(t *testing.T) {
	tbl := newTable("", left("Scenario"), right("Q"))
	tbl.add("東京", "1")
	if lines := tbl.lines(); lines[1] != "東京      1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
}

func TestTableWriteTo(t *testing.T) {
	tbl := newTable("Recent", left("Status"), right("N"))
	tbl.add("open")
	var buf bytes.Buffer
	if err := tbl.writeTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Recent\nStatus  N\nopen\n\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}
