package engine

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"claimdesk/internal"
)

// AssignmentBatches holds the save-ready rules read back from a filled
// discovery workbook.
type AssignmentBatches struct {
	Edits []internal.RuleAssignment
	Notes []internal.RuleAssignment
}

// ReadAssignmentsFromXLSX parses a discovery assignment workbook after
// an operator filled in category ids. Rows without a category are
// dropped here, before anything reaches the repository.
func ReadAssignmentsFromXLSX(blob []byte) (AssignmentBatches, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return AssignmentBatches{}, fmt.Errorf("failed to parse the assignment workbook: %w", err)
	}
	defer f.Close()

	edits, err := readAssignmentSheet(f, DiscoveryEditsSheet)
	if err != nil {
		return AssignmentBatches{}, err
	}
	notes, err := readAssignmentSheet(f, DiscoveryNotesSheet)
	if err != nil {
		return AssignmentBatches{}, err
	}

	return AssignmentBatches{Edits: edits, Notes: notes}, nil
}

func readAssignmentSheet(f *excelize.File, sheet string) ([]internal.RuleAssignment, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		// A workbook without the sheet contributes no assignments.
		return nil, nil
	}
	if len(rows) < 2 {
		return nil, nil
	}

	var out []internal.RuleAssignment
	for i, cells := range rows[1:] {
		text := ""
		if len(cells) > 0 {
			text = strings.TrimSpace(cells[0])
		}
		if text == "" {
			continue
		}

		rawCategory := ""
		if len(cells) > 1 {
			rawCategory = strings.TrimSpace(cells[1])
		}
		if rawCategory == "" {
			continue
		}
		categoryID, err := strconv.Atoi(rawCategory)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: invalid category id %q", sheet, i+2, rawCategory)
		}

		out = append(out, internal.RuleAssignment{Text: text, CategoryID: categoryID})
	}

	return out, nil
}
