package engine

import (
	"sort"
	"strings"

	"claimdesk/internal"
)

// Discover diffs the edit codes and note texts present in an upload
// against the sets already covered by rules, yielding the uncovered
// surplus for operator assignment. Pure over its inputs: the known
// sets are never mutated and re-running on the same upload reproduces
// the same result.
func Discover(rows []internal.RawRow, mapping map[string]string, knownEdits, knownNotes map[string]struct{}) internal.DiscoveryResult {
	newEdits := map[string]struct{}{}
	newNotes := map[string]struct{}{}

	for _, row := range rows {
		editValue, _ := Resolve(row, FieldClaimEdits, mapping)
		if editValue = strings.TrimSpace(editValue); editValue != "" {
			if _, known := knownEdits[editValue]; !known {
				newEdits[editValue] = struct{}{}
			}
		}

		noteValue, _ := Resolve(row, FieldClaimNotes, mapping)
		if noteValue = strings.TrimSpace(noteValue); noteValue != "" {
			if _, known := knownNotes[noteValue]; !known {
				newNotes[noteValue] = struct{}{}
			}
		}
	}

	return internal.DiscoveryResult{
		Edits: toAssignableItems(newEdits),
		Notes: toAssignableItems(newNotes),
	}
}

// KnownRuleTexts builds the membership set Discover diffs against,
// scoped to one configuration's rules.
func KnownRuleTexts(rules []internal.Rule) map[string]struct{} {
	out := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		out[r.Text] = struct{}{}
	}
	return out
}

func toAssignableItems(values map[string]struct{}) []internal.DiscoveryItem {
	texts := make([]string, 0, len(values))
	for text := range values {
		texts = append(texts, text)
	}
	sort.Strings(texts)

	out := make([]internal.DiscoveryItem, 0, len(texts))
	for _, text := range texts {
		out = append(out, internal.DiscoveryItem{Text: text})
	}
	return out
}
