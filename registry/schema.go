package registry

// Schema creates the portal tables. Integer primary keys alias SQLite's
// rowid; the ownership chain uses plain integer foreign keys throughout.
const Schema = `
CREATE TABLE IF NOT EXISTS user (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS admin (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS industry (
	ind_id              INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id             INTEGER NOT NULL UNIQUE REFERENCES user(id),
	category            TEXT NOT NULL,
	state_ocmms_id      TEXT NOT NULL UNIQUE,
	name                TEXT NOT NULL,
	address             TEXT NOT NULL,
	state               TEXT NOT NULL,
	district            TEXT NOT NULL,
	production_capacity TEXT NOT NULL,
	num_stacks          INTEGER NOT NULL CHECK (num_stacks >= 1),
	environment_head    TEXT NOT NULL,
	instrument_head     TEXT NOT NULL,
	cems_contact        TEXT NOT NULL,
	contact_email       TEXT NOT NULL,
	created_at          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stacks (
	stack_id              INTEGER PRIMARY KEY AUTOINCREMENT,
	ind_id                INTEGER NOT NULL REFERENCES industry(ind_id),
	process_attached      TEXT NOT NULL,
	apcd_details          TEXT NOT NULL,
	latitude              REAL NOT NULL,
	longitude             REAL NOT NULL,
	condition             TEXT NOT NULL,
	shape                 TEXT NOT NULL,
	diameter              REAL,
	length                REAL,
	width                 REAL,
	material              TEXT NOT NULL,
	height                REAL NOT NULL,
	platform_height       REAL NOT NULL,
	platform_approachable INTEGER NOT NULL,
	approach_medium       TEXT NOT NULL DEFAULT '',
	cems_placement        TEXT NOT NULL,
	stack_params          TEXT NOT NULL DEFAULT '',
	duct_params           TEXT NOT NULL DEFAULT '',
	follows_formula       INTEGER NOT NULL,
	manual_port_installed INTEGER,
	cems_below_manual     INTEGER NOT NULL,
	parameters            TEXT NOT NULL,
	created_at            INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stacks_industry ON stacks(ind_id);

CREATE TABLE IF NOT EXISTS cems_instruments (
	cems_id                INTEGER PRIMARY KEY AUTOINCREMENT,
	stack_id               INTEGER NOT NULL REFERENCES stacks(stack_id),
	parameter              TEXT NOT NULL,
	make                   TEXT NOT NULL,
	model                  TEXT NOT NULL,
	serial_number          TEXT NOT NULL,
	emission_limit         REAL NOT NULL,
	range_low              REAL NOT NULL,
	range_high             REAL NOT NULL,
	certified              INTEGER NOT NULL,
	certification_agency   TEXT NOT NULL DEFAULT '',
	communication_protocol TEXT NOT NULL,
	measurement_method     TEXT NOT NULL,
	technology             TEXT NOT NULL,
	bspcb_connected        INTEGER NOT NULL,
	bspcb_url              TEXT NOT NULL DEFAULT '',
	cpcb_connected         INTEGER NOT NULL,
	cpcb_url               TEXT NOT NULL DEFAULT '',
	created_at             INTEGER NOT NULL,
	UNIQUE (stack_id, parameter)
);
CREATE INDEX IF NOT EXISTS idx_instruments_stack ON cems_instruments(stack_id);
`
