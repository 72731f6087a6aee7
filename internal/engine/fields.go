package engine

import "claimdesk/internal"

// Standard field names used programmatically. The full catalog below
// is a public contract for mapping UIs: order is stable and additions
// are append-only.
const (
	FieldClaimNumber     = "Claim Number"
	FieldClaimState      = "Claim State"
	FieldClaimStatus     = "Claim Status"
	FieldAge             = "Age"
	FieldTotalCharges    = "TotalCharges"
	FieldTotalNetPayment = "TotalNetPaymentAmt"
	FieldBillingProvider = "Billing Provider Name"
	FieldClaimEdits      = "Claim Edits"
	FieldClaimNotes      = "Claim Notes"
)

// StandardFields is the fixed catalog of standardized claim fields a
// client configuration can map report headers onto.
var StandardFields = []string{
	"Payer", "Category", "Claim Number", "Type", "Received Date",
	"Billing Provider Name", "Billing Provider Tax ID", "Billing Provider NPI",
	"Claim State", "Claim Status", "Patient", "Subs Id", "Rendering Provider Name",
	"Rendering Provider NPI", "DOSFromDate", "DOSToDate", "Clean Age", "Age",
	"TotalCharges", "TotalNetPaymentAmt", "NetworkStatus", "PBP Name", "Plan Name",
	"DSNP or Non DSNP", "Claim Edits", "Claim Notes", "Activity Logger Description",
	"Activity Performed By", "Activity Performed On",
}

// Resolve maps a standardized field to the row value under the
// client's header for that field. A field missing from the mapping, or
// a header missing from the row, resolves to absent; never an error.
func Resolve(row internal.RawRow, field string, mapping map[string]string) (string, bool) {
	header, ok := mapping[field]
	if !ok || header == "" {
		return "", false
	}
	value, ok := row[header]
	if !ok {
		return "", false
	}
	return value, true
}
