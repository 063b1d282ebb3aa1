package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cemsreg/auth"
)

// Store performs all persistence for the portal. Every write is a single
// transaction; completion counts are derived with COUNT(*) inside the same
// transaction as the insert they gate, so concurrent submissions cannot
// overshoot a quota or double-fill a parameter.
type Store struct {
	db *sql.DB
}

// NewStore wraps db. The Schema must already be applied.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RegisterIndustry creates the login account and the industry record in one
// transaction: a failed industry insert leaves no orphan user row.
func (s *Store) RegisterIndustry(ctx context.Context, in *RegistrationInput) (IndustryID, UserID, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, 0, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user WHERE email = ?`, in.Email).Scan(&exists); err != nil {
		return 0, 0, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return 0, 0, ErrEmailExists
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM industry WHERE state_ocmms_id = ?`, in.StateOCMMSID).Scan(&exists); err != nil {
		return 0, 0, fmt.Errorf("check registration code: %w", err)
	}
	if exists > 0 {
		return 0, 0, ErrRegistrationCodeExists
	}

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO user (email, password_hash, created_at) VALUES (?, ?, ?)`,
		in.Email, hash, now)
	if err != nil {
		return 0, 0, mapUniqueErr(err, fmt.Errorf("insert user: %w", err))
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("user id: %w", err)
	}

	res, err = tx.ExecContext(ctx, `
		INSERT INTO industry (user_id, category, state_ocmms_id, name, address, state,
			district, production_capacity, num_stacks, environment_head,
			instrument_head, cems_contact, contact_email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, in.Category, in.StateOCMMSID, in.Name, in.Address, in.State,
		in.District, in.ProductionCapacity, in.NumStacks, in.EnvironmentHead,
		in.InstrumentHead, in.CEMSContact, in.Email, now)
	if err != nil {
		return 0, 0, mapUniqueErr(err, fmt.Errorf("insert industry: %w", err))
	}
	indID, err := res.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("industry id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return IndustryID(indID), UserID(userID), nil
}

// Authenticate verifies an industry representative's credentials and returns
// the account and its industry.
func (s *Store) Authenticate(ctx context.Context, email, password string) (UserID, IndustryID, error) {
	var userID int64
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM user WHERE email = ?`, email).Scan(&userID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrBadCredentials
	}
	if err != nil {
		return 0, 0, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(hash, password) {
		return 0, 0, ErrBadCredentials
	}

	var indID int64
	err = s.db.QueryRowContext(ctx,
		`SELECT ind_id FROM industry WHERE user_id = ?`, userID).Scan(&indID)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup industry: %w", err)
	}
	return UserID(userID), IndustryID(indID), nil
}

// AuthenticateAdmin verifies administrator credentials.
func (s *Store) AuthenticateAdmin(ctx context.Context, email, password string) (AdminID, error) {
	var adminID int64
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM admin WHERE email = ?`, email).Scan(&adminID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBadCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("lookup admin: %w", err)
	}
	if !auth.CheckPassword(hash, password) {
		return 0, ErrBadCredentials
	}
	return AdminID(adminID), nil
}

// SeedAdmin inserts an administrator account if the admin table is empty.
// Returns true when an account was created.
func (s *Store) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin`).Scan(&count); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admin (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, hash, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}

// IndustryByUser returns the industry owned by the given account.
func (s *Store) IndustryByUser(ctx context.Context, userID UserID) (*Industry, error) {
	return s.industryWhere(ctx, "user_id = ?", int64(userID))
}

// IndustryByID returns an industry by its identifier.
func (s *Store) IndustryByID(ctx context.Context, id IndustryID) (*Industry, error) {
	return s.industryWhere(ctx, "ind_id = ?", int64(id))
}

func (s *Store) industryWhere(ctx context.Context, where string, arg any) (*Industry, error) {
	ind := &Industry{}
	err := s.db.QueryRowContext(ctx, `
		SELECT ind_id, user_id, category, state_ocmms_id, name, address, state,
			district, production_capacity, num_stacks, environment_head,
			instrument_head, cems_contact, contact_email, created_at
		FROM industry WHERE `+where, arg).Scan(
		&ind.ID, &ind.UserID, &ind.Category, &ind.StateOCMMSID, &ind.Name,
		&ind.Address, &ind.State, &ind.District, &ind.ProductionCapacity,
		&ind.NumStacks, &ind.EnvironmentHead, &ind.InstrumentHead,
		&ind.CEMSContact, &ind.ContactEmail, &ind.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load industry: %w", err)
	}
	return ind, nil
}

// AddStack persists the next stack for an industry. The declared-count check
// runs inside the insert transaction, so racing submissions cannot exceed
// the declared number of stacks; a submission that loses the race is retried
// on a fresh snapshot and resolves to ErrStackQuotaReached. Only the
// geometry matching the shape is persisted regardless of what the input
// carries.
func (s *Store) AddStack(ctx context.Context, indID IndustryID, in *StackInput) (StackID, error) {
	var id StackID
	err := s.retryBusy(ctx, func() error {
		var err error
		id, err = s.addStack(ctx, indID, in)
		return err
	})
	return id, err
}

func (s *Store) addStack(ctx context.Context, indID IndustryID, in *StackInput) (StackID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var declared int
	err = tx.QueryRowContext(ctx,
		`SELECT num_stacks FROM industry WHERE ind_id = ?`, int64(indID)).Scan(&declared)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load declared count: %w", err)
	}

	var completed int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stacks WHERE ind_id = ?`, int64(indID)).Scan(&completed); err != nil {
		return 0, fmt.Errorf("count stacks: %w", err)
	}
	if completed >= declared {
		return 0, ErrStackQuotaReached
	}

	var diameter, length, width sql.NullFloat64
	if in.Shape == "Circular" {
		diameter = nullFloat(in.Diameter)
	} else {
		length = nullFloat(in.Length)
		width = nullFloat(in.Width)
	}
	var manualPort sql.NullBool
	if in.ManualPortInstalled != nil {
		manualPort = sql.NullBool{Bool: *in.ManualPortInstalled, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO stacks (ind_id, process_attached, apcd_details, latitude, longitude,
			condition, shape, diameter, length, width, material, height, platform_height,
			platform_approachable, approach_medium, cems_placement, stack_params,
			duct_params, follows_formula, manual_port_installed, cems_below_manual,
			parameters, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(indID), in.ProcessAttached, in.APCDDetails, in.Latitude, in.Longitude,
		in.Condition, in.Shape, diameter, length, width, in.Material, in.Height,
		in.PlatformHeight, in.PlatformApproachable, in.ApproachMedium,
		in.CEMSPlacement, joinParams(in.StackParams), joinParams(in.DuctParams),
		in.FollowsFormula, manualPort, in.CEMSBelowManual,
		joinParams(in.Parameters), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert stack: %w", err)
	}
	stackID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("stack id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return StackID(stackID), nil
}

const stackColumns = `stack_id, ind_id, process_attached, apcd_details, latitude, longitude,
	condition, shape, diameter, length, width, material, height, platform_height,
	platform_approachable, approach_medium, cems_placement, stack_params,
	duct_params, follows_formula, manual_port_installed, cems_below_manual,
	parameters, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStack(row rowScanner) (*Stack, error) {
	st := &Stack{}
	var diameter, length, width sql.NullFloat64
	var manualPort sql.NullBool
	var stackParams, ductParams, parameters string
	err := row.Scan(
		&st.ID, &st.IndustryID, &st.ProcessAttached, &st.APCDDetails,
		&st.Latitude, &st.Longitude, &st.Condition, &st.Shape,
		&diameter, &length, &width, &st.Material, &st.Height, &st.PlatformHeight,
		&st.PlatformApproachable, &st.ApproachMedium, &st.CEMSPlacement,
		&stackParams, &ductParams, &st.FollowsFormula, &manualPort,
		&st.CEMSBelowManual, &parameters, &st.CreatedAt)
	if err != nil {
		return nil, err
	}
	if diameter.Valid {
		st.Diameter = &diameter.Float64
	}
	if length.Valid {
		st.Length = &length.Float64
	}
	if width.Valid {
		st.Width = &width.Float64
	}
	if manualPort.Valid {
		st.ManualPortInstalled = &manualPort.Bool
	}
	st.StackParams = splitParams(stackParams)
	st.DuctParams = splitParams(ductParams)
	st.Parameters = splitParams(parameters)
	return st, nil
}

// StackByID returns one stack. Callers enforce ownership via the returned
// IndustryID.
func (s *Store) StackByID(ctx context.Context, id StackID) (*Stack, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+stackColumns+` FROM stacks WHERE stack_id = ?`, int64(id))
	st, err := scanStack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load stack: %w", err)
	}
	return st, nil
}

// StacksByIndustry returns an industry's stacks in submission order.
func (s *Store) StacksByIndustry(ctx context.Context, indID IndustryID) ([]Stack, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+stackColumns+` FROM stacks WHERE ind_id = ? ORDER BY stack_id`, int64(indID))
	if err != nil {
		return nil, fmt.Errorf("list stacks: %w", err)
	}
	defer rows.Close()

	var stacks []Stack
	for rows.Next() {
		st, err := scanStack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stack: %w", err)
		}
		stacks = append(stacks, *st)
	}
	return stacks, rows.Err()
}

// RemainingParameters returns the stack's declared parameters that have no
// instrument yet, preserving declaration order.
func (s *Store) RemainingParameters(ctx context.Context, stackID StackID) ([]string, error) {
	st, err := s.StackByID(ctx, stackID)
	if err != nil {
		return nil, err
	}
	filled, err := s.filledParameters(ctx, s.db, stackID)
	if err != nil {
		return nil, err
	}
	return diffParams(st.Parameters, filled), nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) filledParameters(ctx context.Context, q querier, stackID StackID) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT DISTINCT parameter FROM cems_instruments WHERE stack_id = ?`, int64(stackID))
	if err != nil {
		return nil, fmt.Errorf("list filled parameters: %w", err)
	}
	defer rows.Close()

	filled := map[string]bool{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		filled[p] = true
	}
	return filled, rows.Err()
}

func diffParams(declared []string, filled map[string]bool) []string {
	remaining := []string{}
	for _, p := range declared {
		if !filled[p] {
			remaining = append(remaining, p)
		}
	}
	return remaining
}

// AddInstrument persists one instrument for a stack parameter. Membership in
// the stack's declared set and the one-instrument-per-parameter rule are
// checked inside the insert transaction; the UNIQUE(stack_id, parameter)
// constraint backs the latter. Like AddStack, a submission that loses a
// write race is retried and resolves to the sentinel.
func (s *Store) AddInstrument(ctx context.Context, stackID StackID, in *InstrumentInput) (InstrumentID, error) {
	var id InstrumentID
	err := s.retryBusy(ctx, func() error {
		var err error
		id, err = s.addInstrument(ctx, stackID, in)
		return err
	})
	return id, err
}

func (s *Store) addInstrument(ctx context.Context, stackID StackID, in *InstrumentInput) (InstrumentID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var parameters string
	err = tx.QueryRowContext(ctx,
		`SELECT parameters FROM stacks WHERE stack_id = ?`, int64(stackID)).Scan(&parameters)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load stack parameters: %w", err)
	}

	declared := splitParams(parameters)
	found := false
	for _, p := range declared {
		if p == in.Parameter {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: parameter %q is not declared for this stack", ErrInvalidInput, in.Parameter)
	}

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cems_instruments WHERE stack_id = ? AND parameter = ?`,
		int64(stackID), in.Parameter).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check parameter: %w", err)
	}
	if exists > 0 {
		return 0, ErrParameterTaken
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO cems_instruments (stack_id, parameter, make, model, serial_number,
			emission_limit, range_low, range_high, certified, certification_agency,
			communication_protocol, measurement_method, technology,
			bspcb_connected, bspcb_url, cpcb_connected, cpcb_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(stackID), in.Parameter, in.Make, in.Model, in.SerialNumber,
		in.EmissionLimit, in.RangeLow, in.RangeHigh, in.Certified,
		in.CertificationAgency, in.CommunicationProtocol, in.MeasurementMethod,
		in.Technology, in.BSPCBConnected, in.BSPCBURL, in.CPCBConnected,
		in.CPCBURL, time.Now().Unix())
	if err != nil {
		if isUniqueErr(err) {
			return 0, ErrParameterTaken
		}
		return 0, fmt.Errorf("insert instrument: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("instrument id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return InstrumentID(id), nil
}

// InstrumentsByStack returns a stack's instruments in submission order.
func (s *Store) InstrumentsByStack(ctx context.Context, stackID StackID) ([]Instrument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cems_id, stack_id, parameter, make, model, serial_number,
			emission_limit, range_low, range_high, certified, certification_agency,
			communication_protocol, measurement_method, technology,
			bspcb_connected, bspcb_url, cpcb_connected, cpcb_url, created_at
		FROM cems_instruments WHERE stack_id = ? ORDER BY cems_id`, int64(stackID))
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	var instruments []Instrument
	for rows.Next() {
		var inst Instrument
		if err := rows.Scan(
			&inst.ID, &inst.StackID, &inst.Parameter, &inst.Make, &inst.Model,
			&inst.SerialNumber, &inst.EmissionLimit, &inst.RangeLow, &inst.RangeHigh,
			&inst.Certified, &inst.CertificationAgency, &inst.CommunicationProtocol,
			&inst.MeasurementMethod, &inst.Technology, &inst.BSPCBConnected,
			&inst.BSPCBURL, &inst.CPCBConnected, &inst.CPCBURL, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		instruments = append(instruments, inst)
	}
	return instruments, rows.Err()
}

// IndustryDetail returns the full nested view for one industry:
// industry → stacks → instruments.
func (s *Store) IndustryDetail(ctx context.Context, indID IndustryID) (*IndustryDetail, error) {
	ind, err := s.IndustryByID(ctx, indID)
	if err != nil {
		return nil, err
	}
	stacks, err := s.StacksByIndustry(ctx, indID)
	if err != nil {
		return nil, err
	}

	detail := &IndustryDetail{Industry: *ind, Stacks: []StackDetail{}}
	for _, st := range stacks {
		instruments, err := s.InstrumentsByStack(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		if instruments == nil {
			instruments = []Instrument{}
		}
		detail.Stacks = append(detail.Stacks, StackDetail{Stack: st, Instruments: instruments})
	}
	return detail, nil
}

// AdminListIndustries returns all industries, optionally filtered by a
// case-insensitive substring of the industry name.
func (s *Store) AdminListIndustries(ctx context.Context, nameFilter string) ([]IndustrySummary, error) {
	query := `
		SELECT i.ind_id, i.name, i.category, i.state, i.district, i.num_stacks,
			(SELECT COUNT(*) FROM stacks st WHERE st.ind_id = i.ind_id),
			i.contact_email
		FROM industry i`
	args := []any{}
	if nameFilter != "" {
		query += ` WHERE i.name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(nameFilter)+"%")
	}
	query += ` ORDER BY i.ind_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list industries: %w", err)
	}
	defer rows.Close()

	summaries := []IndustrySummary{}
	for rows.Next() {
		var sum IndustrySummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Category, &sum.State,
			&sum.District, &sum.NumStacks, &sum.CompletedStacks, &sum.ContactEmail); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func joinParams(params []string) string {
	return strings.Join(params, ",")
}

func splitParams(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// escapeLike escapes LIKE wildcards in a user-supplied filter.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func isUniqueErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isBusyErr matches SQLite lock contention, including the WAL stale-snapshot
// variant (SQLITE_BUSY_SNAPSHOT) that busy_timeout does not resolve.
func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// retryBusy reruns fn when it fails with lock contention. Each rerun begins
// a fresh transaction, so a write that raced another one re-reads the
// committed state and resolves to the proper sentinel instead of a lock
// error.
func (s *Store) retryBusy(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 20 * time.Millisecond):
			}
		}
		if err = fn(); !isBusyErr(err) {
			return err
		}
	}
	return err
}

// mapUniqueErr converts a UNIQUE violation that slipped past the pre-checks
// into the matching sentinel; other errors pass through as fallback.
func mapUniqueErr(err error, fallback error) error {
	if !isUniqueErr(err) {
		return fallback
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "user.email"):
		return ErrEmailExists
	case strings.Contains(msg, "industry.state_ocmms_id"):
		return ErrRegistrationCodeExists
	default:
		return fallback
	}
}
