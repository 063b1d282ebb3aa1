package registry

import "context"

// Wizard phases. The wizard is linear per industry: all stacks first, then
// instruments stack by stack, in whatever stack order the user chooses.
const (
	PhaseStacks      = "stacks"
	PhaseInstruments = "instruments"
	PhaseComplete    = "complete"
)

// StackProgress describes the instrument phase of one stack.
type StackProgress struct {
	StackID         StackID  `json:"stack_id"`
	ProcessAttached string   `json:"process_attached"`
	Declared        []string `json:"declared_parameters"`
	Remaining       []string `json:"remaining_parameters"`
}

// Progress is the wizard state for one industry, recomputed from row counts
// on every call. Session state never feeds into it.
type Progress struct {
	DeclaredStacks  int             `json:"declared_stacks"`
	CompletedStacks int             `json:"completed_stacks"`
	Phase           string          `json:"phase"`
	NextStack       int             `json:"next_stack,omitempty"` // 1-based, set while Phase == "stacks"
	Stacks          []StackProgress `json:"stacks"`
}

// Progress derives the wizard state for an industry from the database.
func (s *Store) Progress(ctx context.Context, indID IndustryID) (*Progress, error) {
	ind, err := s.IndustryByID(ctx, indID)
	if err != nil {
		return nil, err
	}
	stacks, err := s.StacksByIndustry(ctx, indID)
	if err != nil {
		return nil, err
	}

	p := &Progress{
		DeclaredStacks:  ind.NumStacks,
		CompletedStacks: len(stacks),
		Stacks:          []StackProgress{},
	}

	pendingInstruments := false
	for _, st := range stacks {
		filled, err := s.filledParameters(ctx, s.db, st.ID)
		if err != nil {
			return nil, err
		}
		remaining := diffParams(st.Parameters, filled)
		if len(remaining) > 0 {
			pendingInstruments = true
		}
		p.Stacks = append(p.Stacks, StackProgress{
			StackID:         st.ID,
			ProcessAttached: st.ProcessAttached,
			Declared:        st.Parameters,
			Remaining:       remaining,
		})
	}

	switch {
	case p.CompletedStacks < p.DeclaredStacks:
		p.Phase = PhaseStacks
		p.NextStack = p.CompletedStacks + 1
	case pendingInstruments:
		p.Phase = PhaseInstruments
	default:
		p.Phase = PhaseComplete
	}
	return p, nil
}
