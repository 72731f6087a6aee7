package engine

import (
	"sort"
	"strings"

	"claimdesk/internal"
)

// Defaults applied when no rule matches an actionable claim.
const (
	DefaultCategory = "Needs Triage"
	DefaultTeam     = "Needs Assignment"
)

// Resolver answers category/team lookups for one rule-set snapshot.
// Edit rules match the edit code exactly (case-sensitive); note rules
// match case-insensitive substrings of the note text, longest keyword
// first so a specific phrase is never shadowed by a shorter generic
// one. An edit match always wins over any note match.
type Resolver struct {
	editRules map[string]internal.Rule
	noteRules []noteRule
}

type noteRule struct {
	keyword string
	rule    internal.Rule
}

func NewResolver(rules internal.RuleSet) *Resolver {
	editRules := make(map[string]internal.Rule, len(rules.EditRules))
	for _, r := range rules.EditRules {
		editRules[r.Text] = r
	}

	noteRules := make([]noteRule, 0, len(rules.NoteRules))
	for _, r := range rules.NoteRules {
		noteRules = append(noteRules, noteRule{keyword: strings.ToLower(r.Text), rule: r})
	}
	// Equal lengths keep repository order.
	sort.SliceStable(noteRules, func(i, j int) bool {
		return len(noteRules[i].keyword) > len(noteRules[j].keyword)
	})

	return &Resolver{editRules: editRules, noteRules: noteRules}
}

func (r *Resolver) Classify(editCode, noteText string) internal.Classification {
	if editCode != "" {
		if rule, ok := r.editRules[editCode]; ok {
			return internal.Classification{
				Source:   internal.SourceEditRule,
				Category: rule.CategoryName,
				Team:     rule.TeamName,
			}
		}
	}

	if notes := strings.ToLower(noteText); notes != "" {
		for _, nr := range r.noteRules {
			if strings.Contains(notes, nr.keyword) {
				return internal.Classification{
					Source:   internal.SourceNoteRule,
					Category: nr.rule.CategoryName,
					Team:     nr.rule.TeamName,
				}
			}
		}
	}

	return internal.Classification{
		Source:   internal.SourceDefault,
		Category: DefaultCategory,
		Team:     DefaultTeam,
	}
}
