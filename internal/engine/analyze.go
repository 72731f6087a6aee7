package engine

import (
	"sort"
	"strings"

	"claimdesk/internal"
)

// Values applied when a mapped column is missing from a row.
const (
	unknownValue        = "UNKNOWN"
	notApplicableValue  = "N/A"
	unknownProviderName = "Unknown"
)

// nonActionableScore marks claims that bypass scoring entirely.
const nonActionableScore = -1

// actionableStates is the fixed set of claim states eligible for
// classification and scoring. Status plays no part here: a PEND claim
// with an APPROVE status is still worked.
var actionableStates = map[string]struct{}{
	"PEND":             {},
	"ONHOLD":           {},
	"MANAGEMENTREVIEW": {},
}

type Analysis struct {
	Claims  []internal.NormalizedClaim
	Metrics internal.Metrics
}

// Analyze normalizes every raw row against the client's column
// mapping, classifies and scores the actionable ones, and accumulates
// portfolio metrics over all of them. Output order matches input
// order; callers sort for presentation.
func Analyze(rows []internal.RawRow, mapping map[string]string, rules internal.RuleSet) Analysis {
	resolver := NewResolver(rules)

	metrics := internal.Metrics{ClaimsByStatus: map[string]int{}}
	claims := make([]internal.NormalizedClaim, 0, len(rows))

	for _, row := range rows {
		claim := internal.NormalizedClaim{
			ClaimID:      valueOr(row, FieldClaimNumber, mapping, notApplicableValue),
			State:        normalizeToken(row, FieldClaimState, mapping),
			Status:       normalizeToken(row, FieldClaimStatus, mapping),
			ProviderName: valueOr(row, FieldBillingProvider, mapping, unknownProviderName),
		}

		ageValue, _ := Resolve(row, FieldAge, mapping)
		claim.Age = parseWholeNumber(ageValue)

		paymentValue, _ := Resolve(row, FieldTotalNetPayment, mapping)
		payment, parsed := parseAmount(paymentValue)
		claim.NetPayment = payment

		metrics.TotalClaims++
		if parsed {
			metrics.TotalNetPayment += payment
		}
		metrics.ClaimsByStatus[claim.Status]++

		_, claim.Actionable = actionableStates[claim.State]

		if claim.Actionable {
			editCode, _ := Resolve(row, FieldClaimEdits, mapping)
			noteText, _ := Resolve(row, FieldClaimNotes, mapping)
			classification := resolver.Classify(editCode, noteText)
			claim.Category = classification.Category
			claim.Team = classification.Team
			claim.Source = classification.Source

			chargesValue, _ := Resolve(row, FieldTotalCharges, mapping)
			charges, _ := parseAmount(chargesValue)
			claim.PriorityScore = Score(charges, claim.Age, claim.Status)
		} else {
			claim.Category = notApplicableValue
			claim.Team = notApplicableValue
			claim.PriorityScore = nonActionableScore
		}

		claims = append(claims, claim)
	}

	return Analysis{Claims: claims, Metrics: metrics}
}

// WorkQueue filters to actionable claims sorted by descending
// priority, the presentation order of the operational queue.
func WorkQueue(claims []internal.NormalizedClaim) []internal.NormalizedClaim {
	out := make([]internal.NormalizedClaim, 0, len(claims))
	for _, c := range claims {
		if c.Actionable {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore > out[j].PriorityScore
	})
	return out
}

func valueOr(row internal.RawRow, field string, mapping map[string]string, fallback string) string {
	value, ok := Resolve(row, field, mapping)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func normalizeToken(row internal.RawRow, field string, mapping map[string]string) string {
	value, ok := Resolve(row, field, mapping)
	if !ok || strings.TrimSpace(value) == "" {
		return unknownValue
	}
	return strings.TrimSpace(strings.ToUpper(value))
}
