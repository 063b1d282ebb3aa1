package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cemsreg/dbopen"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return NewStore(db)
}

func mustRegister(t *testing.T, s *Store, in *RegistrationInput) (IndustryID, UserID) {
	t.Helper()
	indID, userID, err := s.RegisterIndustry(context.Background(), in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return indID, userID
}

func TestRegisterIndustry_AndAuthenticate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	indID, userID := mustRegister(t, s, validRegistration())

	gotUser, gotInd, err := s.Authenticate(ctx, "env@gangathermal.in", "pass-word-1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if gotUser != userID || gotInd != indID {
		t.Errorf("ids: got (%d,%d), want (%d,%d)", gotUser, gotInd, userID, indID)
	}

	if _, _, err := s.Authenticate(ctx, "env@gangathermal.in", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, _, err := s.Authenticate(ctx, "nobody@x.in", "pass-word-1"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
}

func TestRegisterIndustry_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustRegister(t, s, validRegistration())

	dup := validRegistration()
	dup.StateOCMMSID = "BR-OCMMS-002"
	_, _, err := s.RegisterIndustry(ctx, dup)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("got %v, want ErrEmailExists", err)
	}

	// No second user row was created.
	var users int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM user`).Scan(&users); err != nil {
		t.Fatal(err)
	}
	if users != 1 {
		t.Errorf("user rows: got %d, want 1", users)
	}
}

func TestRegisterIndustry_DuplicateRegistrationCode(t *testing.T) {
	s := newTestStore(t)
	mustRegister(t, s, validRegistration())

	dup := validRegistration()
	dup.Email = "other@plant.in"
	_, _, err := s.RegisterIndustry(context.Background(), dup)
	if !errors.Is(err, ErrRegistrationCodeExists) {
		t.Fatalf("got %v, want ErrRegistrationCodeExists", err)
	}

	// The duplicate's user insert must have rolled back, no orphan account.
	var users int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM user`).Scan(&users); err != nil {
		t.Fatal(err)
	}
	if users != 1 {
		t.Errorf("user rows: got %d, want 1 (orphan user left behind)", users)
	}
}

func TestAddStack_GeometryMatchesShape(t *testing.T) {
	// WHAT: exactly one of {diameter} or {length,width} is persisted.
	s := newTestStore(t)
	ctx := context.Background()
	indID, _ := mustRegister(t, s, validRegistration())

	circular := validCircularStack()
	circular.Length = f64(99) // stray input must not be persisted
	id1, err := s.AddStack(ctx, indID, circular)
	if err != nil {
		t.Fatalf("add circular: %v", err)
	}
	st1, err := s.StackByID(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	if st1.Diameter == nil || *st1.Diameter != 2.0 {
		t.Errorf("diameter: %v", st1.Diameter)
	}
	if st1.Length != nil || st1.Width != nil {
		t.Errorf("rectangular geometry persisted for circular stack: %v %v", st1.Length, st1.Width)
	}

	rect := validCircularStack()
	rect.Shape = "Rectangular"
	rect.Diameter = f64(7)
	rect.Length = f64(3)
	rect.Width = f64(1.5)
	id2, err := s.AddStack(ctx, indID, rect)
	if err != nil {
		t.Fatalf("add rectangular: %v", err)
	}
	st2, err := s.StackByID(ctx, id2)
	if err != nil {
		t.Fatal(err)
	}
	if st2.Diameter != nil {
		t.Errorf("diameter persisted for rectangular stack: %v", st2.Diameter)
	}
	if st2.Length == nil || st2.Width == nil {
		t.Errorf("rectangular geometry missing: %v %v", st2.Length, st2.Width)
	}
}

func TestAddStack_QuotaEnforced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := validRegistration()
	in.NumStacks = 1
	indID, _ := mustRegister(t, s, in)

	if _, err := s.AddStack(ctx, indID, validCircularStack()); err != nil {
		t.Fatalf("first stack: %v", err)
	}
	_, err := s.AddStack(ctx, indID, validCircularStack())
	if !errors.Is(err, ErrStackQuotaReached) {
		t.Fatalf("got %v, want ErrStackQuotaReached", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM stacks`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("stack rows: got %d, want 1", count)
	}
}

// Two submissions racing for the last remaining slot: exactly one wins and
// the loser gets the quota sentinel, not a raw lock error. A file-backed
// database gives each goroutine its own connection.
func TestAddStack_ConcurrentLastSlot(t *testing.T) {
	db, err := dbopen.Open(filepath.Join(t.TempDir(), "portal.db"),
		dbopen.WithSchema(Schema))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := NewStore(db)

	ctx := context.Background()
	reg := validRegistration()
	reg.NumStacks = 1
	indID, _ := mustRegister(t, s, reg)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := s.AddStack(ctx, indID, validCircularStack())
			errs <- err
		}()
	}

	var wins, rejections int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			wins++
		case errors.Is(err, ErrStackQuotaReached):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || rejections != 1 {
		t.Fatalf("got %d wins and %d quota rejections, want 1 and 1", wins, rejections)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM stacks`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("stack rows: got %d, want 1", count)
	}
}

func TestAddInstrument_FiltersAndUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	indID, _ := mustRegister(t, s, validRegistration())
	stackID, err := s.AddStack(ctx, indID, validCircularStack())
	if err != nil {
		t.Fatal(err)
	}

	remaining, err := s.RemainingParameters(ctx, stackID)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 || remaining[0] != "PM" || remaining[1] != "SOx" {
		t.Fatalf("initial remaining: %v", remaining)
	}

	if _, err := s.AddInstrument(ctx, stackID, validInstrument("PM")); err != nil {
		t.Fatalf("add PM: %v", err)
	}

	remaining, err = s.RemainingParameters(ctx, stackID)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0] != "SOx" {
		t.Errorf("after PM: remaining = %v, want [SOx]", remaining)
	}

	if _, err := s.AddInstrument(ctx, stackID, validInstrument("PM")); !errors.Is(err, ErrParameterTaken) {
		t.Errorf("duplicate parameter: got %v", err)
	}
	if _, err := s.AddInstrument(ctx, stackID, validInstrument("NOx")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("undeclared parameter: got %v", err)
	}
}

func TestIndustryDetail_Nested(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	indID, _ := mustRegister(t, s, validRegistration())
	stackID, err := s.AddStack(ctx, indID, validCircularStack())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddInstrument(ctx, stackID, validInstrument("PM")); err != nil {
		t.Fatal(err)
	}

	detail, err := s.IndustryDetail(ctx, indID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Name != "Ganga Thermal" {
		t.Errorf("name: %q", detail.Name)
	}
	if len(detail.Stacks) != 1 {
		t.Fatalf("stacks: %d", len(detail.Stacks))
	}
	if len(detail.Stacks[0].Instruments) != 1 {
		t.Fatalf("instruments: %d", len(detail.Stacks[0].Instruments))
	}
	inst := detail.Stacks[0].Instruments[0]
	if inst.Parameter != "PM" || inst.Make != "Siemens" {
		t.Errorf("instrument: %+v", inst)
	}
}

func TestAdminListIndustries_Filter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustRegister(t, s, validRegistration())

	second := validRegistration()
	second.Name = "Koshi Cement Works"
	second.StateOCMMSID = "BR-OCMMS-002"
	second.Email = "env@koshicement.in"
	mustRegister(t, s, second)

	all, err := s.AdminListIndustries(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("all: %d", len(all))
	}

	// Case-insensitive substring.
	filtered, err := s.AdminListIndustries(ctx, "cement")
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Koshi Cement Works" {
		t.Errorf("filtered: %+v", filtered)
	}

	// LIKE wildcards in the filter are literals.
	none, err := s.AdminListIndustries(ctx, "%")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("wildcard filter matched %d rows", len(none))
	}
}

func TestSeedAdmin_OnlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.SeedAdmin(ctx, "admin@cemsreg.local", "first-password")
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	created, err = s.SeedAdmin(ctx, "other@cemsreg.local", "second-password")
	if err != nil || created {
		t.Fatalf("second seed: created=%v err=%v", created, err)
	}

	if _, err := s.AuthenticateAdmin(ctx, "admin@cemsreg.local", "first-password"); err != nil {
		t.Errorf("admin auth: %v", err)
	}
	if _, err := s.AuthenticateAdmin(ctx, "admin@cemsreg.local", "bad"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("bad admin password: got %v", err)
	}
}
