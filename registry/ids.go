package registry

import "strconv"

// Typed identifiers for the ownership chain. One integer key type per entity
// end to end — no formatted string keys.
type (
	// UserID identifies a login account.
	UserID int64
	// AdminID identifies an administrator account.
	AdminID int64
	// IndustryID identifies a registered facility.
	IndustryID int64
	// StackID identifies an emission stack belonging to an industry.
	StackID int64
	// InstrumentID identifies a CEMS instrument belonging to a stack.
	InstrumentID int64
)

func (id UserID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id IndustryID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id StackID) String() string      { return strconv.FormatInt(int64(id), 10) }
func (id InstrumentID) String() string { return strconv.FormatInt(int64(id), 10) }
