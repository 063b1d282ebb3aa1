package registry

import (
	"context"
	"testing"
)

func TestProgress_EndToEnd(t *testing.T) {
	// WHAT: the two-stack scenario — counters and parameter lists advance
	// exactly with each submission.
	s := newTestStore(t)
	ctx := context.Background()
	indID, _ := mustRegister(t, s, validRegistration()) // declares 2 stacks

	p, err := s.Progress(ctx, indID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Phase != PhaseStacks || p.NextStack != 1 || p.CompletedStacks != 0 {
		t.Fatalf("initial: %+v", p)
	}

	stack1, err := s.AddStack(ctx, indID, validCircularStack())
	if err != nil {
		t.Fatal(err)
	}

	p, err = s.Progress(ctx, indID)
	if err != nil {
		t.Fatal(err)
	}
	if p.CompletedStacks != 1 || p.Phase != PhaseStacks || p.NextStack != 2 {
		t.Fatalf("after stack 1: %+v", p)
	}

	if _, err := s.AddStack(ctx, indID, validCircularStack()); err != nil {
		t.Fatal(err)
	}

	p, err = s.Progress(ctx, indID)
	if err != nil {
		t.Fatal(err)
	}
	if p.CompletedStacks != 2 || p.Phase != PhaseInstruments {
		t.Fatalf("after stack 2: %+v", p)
	}

	// Instrument PM on stack 1: its remaining list shrinks to {SOx}.
	if _, err := s.AddInstrument(ctx, stack1, validInstrument("PM")); err != nil {
		t.Fatal(err)
	}
	p, err = s.Progress(ctx, indID)
	if err != nil {
		t.Fatal(err)
	}
	var sp *StackProgress
	for i := range p.Stacks {
		if p.Stacks[i].StackID == stack1 {
			sp = &p.Stacks[i]
		}
	}
	if sp == nil {
		t.Fatal("stack 1 missing from progress")
	}
	if len(sp.Remaining) != 1 || sp.Remaining[0] != "SOx" {
		t.Errorf("stack 1 remaining: %v, want [SOx]", sp.Remaining)
	}
	if p.Phase != PhaseInstruments {
		t.Errorf("phase: %s", p.Phase)
	}
}

func TestProgress_CompleteWhenAllInstrumented(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reg := validRegistration()
	reg.NumStacks = 1
	indID, _ := mustRegister(t, s, reg)

	stackID, err := s.AddStack(ctx, indID, validCircularStack())
	if err != nil {
		t.Fatal(err)
	}
	for _, param := range []string{"PM", "SOx"} {
		if _, err := s.AddInstrument(ctx, stackID, validInstrument(param)); err != nil {
			t.Fatalf("instrument %s: %v", param, err)
		}
	}

	p, err := s.Progress(ctx, indID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Phase != PhaseComplete {
		t.Errorf("phase: %s, want complete", p.Phase)
	}
	if len(p.Stacks[0].Remaining) != 0 {
		t.Errorf("remaining: %v", p.Stacks[0].Remaining)
	}
}

func TestProgress_UnknownIndustry(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Progress(context.Background(), 999); err == nil {
		t.Fatal("expected error for unknown industry")
	}
}
