package engine

import (
	"testing"

	"claimdesk/internal"
)

func testRuleSet() internal.RuleSet {
	return internal.RuleSet{
		EditRules: []internal.Rule{
			{Text: "CO-45", CategoryID: 1, CategoryName: "Contractual Adjustment", TeamName: "Denials"},
			{Text: "MA-130", CategoryID: 2, CategoryName: "Incomplete Claim", TeamName: "Intake"},
		},
		NoteRules: []internal.Rule{
			{Text: "filing", CategoryID: 3, CategoryName: "Filing Generic", TeamName: "Appeals"},
			{Text: "timely filing", CategoryID: 4, CategoryName: "Timely Filing", TeamName: "Appeals"},
		},
	}
}

func TestClassifyEditRuleWinsOverNote(t *testing.T) {
	r := NewResolver(testRuleSet())

	// Note text matches a note rule too; the edit match must win.
	got := r.Classify("CO-45", "denied for timely filing issue")
	if got.Source != internal.SourceEditRule {
		t.Fatalf("source = %q, want %q", got.Source, internal.SourceEditRule)
	}
	if got.Category != "Contractual Adjustment" || got.Team != "Denials" {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestClassifyEditRuleIsCaseSensitive(t *testing.T) {
	r := NewResolver(testRuleSet())

	got := r.Classify("co-45", "")
	if got.Source != internal.SourceDefault {
		t.Fatalf("source = %q, want %q", got.Source, internal.SourceDefault)
	}
}

func TestClassifyLongestNoteKeywordWins(t *testing.T) {
	r := NewResolver(testRuleSet())

	got := r.Classify("XYZ", "denied for timely filing issue")
	if got.Source != internal.SourceNoteRule {
		t.Fatalf("source = %q, want %q", got.Source, internal.SourceNoteRule)
	}
	if got.Category != "Timely Filing" {
		t.Fatalf("category = %q, want Timely Filing (longer keyword must win)", got.Category)
	}
}

func TestClassifyNoteMatchIsCaseInsensitive(t *testing.T) {
	r := NewResolver(testRuleSet())

	got := r.Classify("", "DENIED FOR TIMELY FILING")
	if got.Source != internal.SourceNoteRule || got.Category != "Timely Filing" {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestClassifyEqualLengthKeywordsKeepRepositoryOrder(t *testing.T) {
	rules := internal.RuleSet{
		NoteRules: []internal.Rule{
			{Text: "appeal", CategoryID: 1, CategoryName: "First", TeamName: "A"},
			{Text: "denied", CategoryID: 2, CategoryName: "Second", TeamName: "B"},
		},
	}
	r := NewResolver(rules)

	got := r.Classify("", "appeal denied by payer")
	if got.Category != "First" {
		t.Fatalf("category = %q, want First (insertion order on length tie)", got.Category)
	}
}

func TestClassifyDefault(t *testing.T) {
	r := NewResolver(testRuleSet())

	cases := []struct {
		name     string
		editCode string
		noteText string
	}{
		{name: "both empty", editCode: "", noteText: ""},
		{name: "unknown edit no note", editCode: "ZZ-99", noteText: ""},
		{name: "unknown edit unmatched note", editCode: "ZZ-99", noteText: "routine followup"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Classify(tc.editCode, tc.noteText)
			if got.Source != internal.SourceDefault {
				t.Fatalf("source = %q, want %q", got.Source, internal.SourceDefault)
			}
			if got.Category != DefaultCategory || got.Team != DefaultTeam {
				t.Fatalf("unexpected default classification: %+v", got)
			}
		})
	}
}
