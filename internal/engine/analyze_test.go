package engine

import (
	"testing"

	"claimdesk/internal"
)

func testMapping() map[string]string {
	return map[string]string{
		FieldClaimNumber:     "ClaimNo",
		FieldClaimState:      "State",
		FieldClaimStatus:     "Status",
		FieldAge:             "AgeDays",
		FieldTotalCharges:    "Charges",
		FieldTotalNetPayment: "NetPay",
		FieldBillingProvider: "Provider",
		FieldClaimEdits:      "EditCol",
		FieldClaimNotes:      "NoteCol",
	}
}

func TestAnalyzeClassifiesActionableClaim(t *testing.T) {
	rows := []internal.RawRow{
		{
			"ClaimNo": "C-100", "State": "PEND", "Status": "DENY", "AgeDays": "10",
			"Charges": "1000", "NetPay": "350.25", "Provider": "Acme Medical",
			"EditCol": "CO-45", "NoteCol": "pending review",
		},
	}

	analysis := Analyze(rows, testMapping(), testRuleSet())
	if len(analysis.Claims) != 1 {
		t.Fatalf("claims = %d, want 1", len(analysis.Claims))
	}

	claim := analysis.Claims[0]
	if !claim.Actionable {
		t.Fatal("claim should be actionable")
	}
	if claim.Source != internal.SourceEditRule || claim.Category != "Contractual Adjustment" {
		t.Fatalf("unexpected classification: %+v", claim)
	}
	if claim.PriorityScore != 117 {
		t.Fatalf("priorityScore = %d, want 117", claim.PriorityScore)
	}
}

func TestAnalyzeNonActionableSkipsRules(t *testing.T) {
	// The edit code would match a rule, but the state is not
	// actionable so no classification may happen.
	rows := []internal.RawRow{
		{"ClaimNo": "C-1", "State": "PAID", "Status": "PAID", "EditCol": "CO-45"},
		{"ClaimNo": "C-2", "State": "DENIED", "Status": "DENY"},
	}

	analysis := Analyze(rows, testMapping(), testRuleSet())
	for _, claim := range analysis.Claims {
		if claim.Actionable {
			t.Fatalf("claim %s should not be actionable", claim.ClaimID)
		}
		if claim.Category != "N/A" || claim.Team != "N/A" {
			t.Fatalf("claim %s category/team = %q/%q, want N/A/N/A", claim.ClaimID, claim.Category, claim.Team)
		}
		if claim.PriorityScore != -1 {
			t.Fatalf("claim %s priorityScore = %d, want -1", claim.ClaimID, claim.PriorityScore)
		}
		if claim.Source != "" {
			t.Fatalf("claim %s has classification source %q", claim.ClaimID, claim.Source)
		}
	}
}

func TestAnalyzeActionableByStateRegardlessOfStatus(t *testing.T) {
	rows := []internal.RawRow{
		{"ClaimNo": "C-1", "State": "pend ", "Status": "APPROVE"},
	}

	analysis := Analyze(rows, testMapping(), internal.RuleSet{})
	claim := analysis.Claims[0]
	if claim.State != "PEND" {
		t.Fatalf("state = %q, want PEND", claim.State)
	}
	if !claim.Actionable {
		t.Fatal("PEND/APPROVE claim must still be actionable")
	}
	if claim.Source != internal.SourceDefault {
		t.Fatalf("source = %q, want %q", claim.Source, internal.SourceDefault)
	}
}

func TestAnalyzeDefaultsForMissingColumns(t *testing.T) {
	// Row has no mapped columns at all.
	rows := []internal.RawRow{{"SomethingElse": "x"}}

	analysis := Analyze(rows, testMapping(), internal.RuleSet{})
	claim := analysis.Claims[0]
	if claim.ClaimID != "N/A" {
		t.Fatalf("claimId = %q, want N/A", claim.ClaimID)
	}
	if claim.State != "UNKNOWN" || claim.Status != "UNKNOWN" {
		t.Fatalf("state/status = %q/%q, want UNKNOWN/UNKNOWN", claim.State, claim.Status)
	}
	if claim.ProviderName != "Unknown" {
		t.Fatalf("provider = %q, want Unknown", claim.ProviderName)
	}
	if claim.Age != 0 || claim.NetPayment != 0 {
		t.Fatalf("age/netPayment = %d/%v, want 0/0", claim.Age, claim.NetPayment)
	}
}

func TestAnalyzeMetrics(t *testing.T) {
	rows := []internal.RawRow{
		{"State": "PEND", "Status": "DENY", "NetPay": "100.50"},
		{"State": "PAID", "Status": "PAID", "NetPay": "not-a-number"},
		{"State": "PAID", "Status": "PAID", "NetPay": "49.50"},
		{"State": "DENIED"},
	}

	analysis := Analyze(rows, testMapping(), internal.RuleSet{})
	metrics := analysis.Metrics

	if metrics.TotalClaims != 4 {
		t.Fatalf("totalClaims = %d, want 4", metrics.TotalClaims)
	}
	// The unparseable payment is excluded from the sum.
	if metrics.TotalNetPayment != 150.0 {
		t.Fatalf("totalNetPayment = %v, want 150", metrics.TotalNetPayment)
	}
	if metrics.ClaimsByStatus["DENY"] != 1 || metrics.ClaimsByStatus["PAID"] != 2 || metrics.ClaimsByStatus["UNKNOWN"] != 1 {
		t.Fatalf("unexpected claimsByStatus: %v", metrics.ClaimsByStatus)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	analysis := Analyze(nil, testMapping(), internal.RuleSet{})
	if analysis.Metrics.TotalClaims != 0 {
		t.Fatalf("totalClaims = %d, want 0", analysis.Metrics.TotalClaims)
	}
	if len(analysis.Claims) != 0 {
		t.Fatalf("claims = %d, want 0", len(analysis.Claims))
	}
}

func TestAnalyzePreservesInputOrder(t *testing.T) {
	rows := []internal.RawRow{
		{"ClaimNo": "C-1", "State": "PEND", "Charges": "500"},
		{"ClaimNo": "C-2", "State": "PAID"},
		{"ClaimNo": "C-3", "State": "PEND", "Charges": "5000"},
	}

	analysis := Analyze(rows, testMapping(), internal.RuleSet{})
	for i, want := range []string{"C-1", "C-2", "C-3"} {
		if analysis.Claims[i].ClaimID != want {
			t.Fatalf("claims[%d] = %s, want %s", i, analysis.Claims[i].ClaimID, want)
		}
	}
}

func TestWorkQueueSortsByDescendingPriority(t *testing.T) {
	rows := []internal.RawRow{
		{"ClaimNo": "LOW", "State": "PEND", "Charges": "500"},
		{"ClaimNo": "SKIP", "State": "PAID"},
		{"ClaimNo": "HIGH", "State": "PEND", "Status": "DENY", "Charges": "5000"},
	}

	analysis := Analyze(rows, testMapping(), internal.RuleSet{})
	queue := WorkQueue(analysis.Claims)
	if len(queue) != 2 {
		t.Fatalf("queue = %d claims, want 2", len(queue))
	}
	if queue[0].ClaimID != "HIGH" || queue[1].ClaimID != "LOW" {
		t.Fatalf("unexpected queue order: %s, %s", queue[0].ClaimID, queue[1].ClaimID)
	}
}
