package engine

import (
	"reflect"
	"testing"

	"claimdesk/internal"
)

func discoveryRows(edits []string, notes []string) []internal.RawRow {
	n := len(edits)
	if len(notes) > n {
		n = len(notes)
	}
	rows := make([]internal.RawRow, n)
	for i := range rows {
		row := internal.RawRow{}
		if i < len(edits) && edits[i] != "" {
			row["EditCol"] = edits[i]
		}
		if i < len(notes) && notes[i] != "" {
			row["NoteCol"] = notes[i]
		}
		rows[i] = row
	}
	return rows
}

func itemTexts(items []internal.DiscoveryItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Text)
	}
	return out
}

func TestDiscoverDedupesAndExcludesKnown(t *testing.T) {
	rows := discoveryRows([]string{"A", "C", "C", ""}, nil)
	known := map[string]struct{}{"A": {}, "B": {}}

	result := Discover(rows, testMapping(), known, map[string]struct{}{})
	if got := itemTexts(result.Edits); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("edits = %v, want [C]", got)
	}
	if len(result.Notes) != 0 {
		t.Fatalf("notes = %v, want empty", result.Notes)
	}
}

func TestDiscoverSortsAlphabetically(t *testing.T) {
	rows := discoveryRows([]string{"ZZ-9", "AA-1", "MM-5"}, []string{"zebra note", "alpha note"})

	result := Discover(rows, testMapping(), map[string]struct{}{}, map[string]struct{}{})
	if got := itemTexts(result.Edits); !reflect.DeepEqual(got, []string{"AA-1", "MM-5", "ZZ-9"}) {
		t.Fatalf("edits = %v", got)
	}
	if got := itemTexts(result.Notes); !reflect.DeepEqual(got, []string{"alpha note", "zebra note"}) {
		t.Fatalf("notes = %v", got)
	}
}

func TestDiscoverTrimsValues(t *testing.T) {
	rows := []internal.RawRow{
		{"EditCol": "  CO-45  ", "NoteCol": "  needs review  "},
	}

	result := Discover(rows, testMapping(), map[string]struct{}{}, map[string]struct{}{})
	if got := itemTexts(result.Edits); !reflect.DeepEqual(got, []string{"CO-45"}) {
		t.Fatalf("edits = %v", got)
	}
	if got := itemTexts(result.Notes); !reflect.DeepEqual(got, []string{"needs review"}) {
		t.Fatalf("notes = %v", got)
	}

	// Membership is exact on the trimmed value.
	known := map[string]struct{}{"CO-45": {}}
	result = Discover(rows, testMapping(), known, map[string]struct{}{})
	if len(result.Edits) != 0 {
		t.Fatalf("edits = %v, want empty", result.Edits)
	}
}

func TestDiscoverIsIdempotent(t *testing.T) {
	rows := discoveryRows([]string{"B", "A", "B"}, []string{"note two", "note one"})
	knownEdits := map[string]struct{}{"X": {}}
	knownNotes := map[string]struct{}{"note zero": {}}

	first := Discover(rows, testMapping(), knownEdits, knownNotes)
	second := Discover(rows, testMapping(), knownEdits, knownNotes)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("discovery not idempotent: %+v vs %+v", first, second)
	}

	// The known sets are inputs, not scratch space.
	if len(knownEdits) != 1 || len(knownNotes) != 1 {
		t.Fatal("known sets were mutated")
	}
}

func TestDiscoverUnmappedColumnsFindNothing(t *testing.T) {
	rows := discoveryRows([]string{"CO-45"}, []string{"some note"})

	result := Discover(rows, map[string]string{}, map[string]struct{}{}, map[string]struct{}{})
	if len(result.Edits) != 0 || len(result.Notes) != 0 {
		t.Fatalf("unexpected result without mapped columns: %+v", result)
	}
}

func TestDiscoverItemsStartUnassigned(t *testing.T) {
	rows := discoveryRows([]string{"CO-45"}, nil)

	result := Discover(rows, testMapping(), map[string]struct{}{}, map[string]struct{}{})
	if len(result.Edits) != 1 || result.Edits[0].CategoryID != 0 {
		t.Fatalf("unexpected edits: %+v", result.Edits)
	}
}
