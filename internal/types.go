package internal

// RuleKind selects which rule table a repository call operates on.
type RuleKind string

const (
	RuleEdit RuleKind = "edit"
	RuleNote RuleKind = "note"
)

// ClassificationSource tags how a claim's category was decided.
type ClassificationSource string

const (
	SourceEditRule ClassificationSource = "Edit Rule"
	SourceNoteRule ClassificationSource = "Note Rule"
	SourceDefault  ClassificationSource = "Default"
)

type Team struct {
	ID   int
	Name string
}

type Category struct {
	ID              int
	Name            string
	TeamID          *int
	TeamName        string
	SendToL1Monitor bool
}

// ClientConfig carries one client's column mapping: standard field
// name -> that client's report header.
type ClientConfig struct {
	ID             int
	Name           string
	ColumnMappings map[string]string
}

// Rule is one classification rule as read from the repository, with
// category and team display names joined in at read time.
type Rule struct {
	Text         string
	CategoryID   int
	CategoryName string
	TeamName     string
}

// RuleSet is the rule snapshot for one client configuration. Core
// functions take it as an explicit argument; nothing reads a selected
// configuration from ambient state.
type RuleSet struct {
	EditRules []Rule
	NoteRules []Rule
}

// RuleAssignment is a rule to be upserted: text plus the category an
// operator assigned to it.
type RuleAssignment struct {
	Text       string
	CategoryID int
}

// RawRow is one uploaded record keyed by the client's source headers.
// Opaque to everything except the column mapper.
type RawRow map[string]string

type Classification struct {
	Source   ClassificationSource
	Category string
	Team     string
}

type NormalizedClaim struct {
	ClaimID       string
	State         string
	Status        string
	Age           int
	NetPayment    float64
	ProviderName  string
	Actionable    bool
	Category      string
	Team          string
	Source        ClassificationSource
	PriorityScore int
}

type Metrics struct {
	TotalClaims     int
	TotalNetPayment float64
	ClaimsByStatus  map[string]int
}

// DiscoveryItem is one previously-unseen edit code or note text,
// awaiting a category assignment (CategoryID 0 = unassigned).
type DiscoveryItem struct {
	Text       string
	CategoryID int
}

type DiscoveryResult struct {
	Edits []DiscoveryItem
	Notes []DiscoveryItem
}

type ReportConfig struct {
	ID          int
	Name        string
	PayloadJSON string
}
