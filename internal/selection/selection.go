// Package selection models the two-stage candidate picking flow as a pure
// state machine: first a daily term, then one of its legal terms. It carries
// no UI concerns, only the transition rules any client must follow.
package selection

import "github.com/lawglot/lawglot-go/internal/errors"

// Phase is the current selection stage.
type Phase int

const (
	NoSelection Phase = iota
	DailySelected
	LegalSelected
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case NoSelection:
		return "none"
	case DailySelected:
		return "daily"
	case LegalSelected:
		return "legal"
	default:
		return "unknown"
	}
}

// Selection is the immutable selection state. Transitions return a new value
// so callers can keep history or compare states freely.
type Selection struct {
	Phase       Phase
	DailyTermID string
	LegalTermID string
}

// SelectDaily picks a daily term. Picking a different daily term (or the
// same one again) discards any legal-term selection.
func (s Selection) SelectDaily(dailyTermID string) (Selection, error) {
	if dailyTermID == "" {
		return s, errors.Newf("daily term id is required").
			Component("selection").
			Category(errors.CategoryValidation).
			Build()
	}
	return Selection{Phase: DailySelected, DailyTermID: dailyTermID}, nil
}

// SelectLegal picks a legal term under the selected daily term. Only valid
// once a daily term is selected.
func (s Selection) SelectLegal(legalTermID string) (Selection, error) {
	if legalTermID == "" {
		return s, errors.Newf("legal term id is required").
			Component("selection").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.Phase == NoSelection {
		return s, errors.Newf("select a daily term before a legal term").
			Component("selection").
			Category(errors.CategoryState).
			Build()
	}
	return Selection{Phase: LegalSelected, DailyTermID: s.DailyTermID, LegalTermID: legalTermID}, nil
}

// Reset clears the selection entirely.
func (s Selection) Reset() Selection {
	return Selection{}
}
