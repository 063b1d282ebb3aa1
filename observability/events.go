package observability

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"cemsreg/idgen"
)

// EventSchema creates the business-event log table.
const EventSchema = `
CREATE TABLE IF NOT EXISTS event_log (
	event_id    TEXT PRIMARY KEY,
	event_type  TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	success     INTEGER NOT NULL DEFAULT 1,
	details     TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_event_log_type_time ON event_log(event_type, created_at);
`

// Event represents a domain-level event to record: a registration, a login,
// a stack or instrument submission.
type Event struct {
	Type       string // e.g. "industry_registered", "stack_submitted"
	EntityType string // "industry", "stack", "instrument", "user"
	EntityID   string
	UserID     string
	Success    bool
	Details    string // optional JSON
}

// eventRecord is an Event stamped with its ID and timestamp at enqueue time,
// so the persisted row reflects when the request happened, not when the
// flush ran.
type eventRecord struct {
	Event
	id        string
	createdAt int64
}

// EventLogger persists business events asynchronously: Log enqueues onto a
// buffered channel drained by a background flush goroutine. Close drains the
// buffer before returning.
type EventLogger struct {
	db    *sql.DB
	newID idgen.Generator
	ch    chan eventRecord
	stop  chan struct{}
	done  chan struct{}
}

// EventLoggerOption configures an EventLogger.
type EventLoggerOption func(*EventLogger)

// WithEventIDGenerator sets a custom ID generator for event IDs.
func WithEventIDGenerator(gen idgen.Generator) EventLoggerOption {
	return func(l *EventLogger) { l.newID = gen }
}

// WithEventBuffer sets the channel buffer size. Default: 256.
func WithEventBuffer(n int) EventLoggerOption {
	return func(l *EventLogger) { l.ch = make(chan eventRecord, n) }
}

// NewEventLogger creates a logger backed by db and starts its flush
// goroutine. The event_log table must exist (apply EventSchema via
// dbopen.WithSchema). Call Close on shutdown to drain pending events.
func NewEventLogger(db *sql.DB, opts ...EventLoggerOption) *EventLogger {
	l := &EventLogger{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.Default),
		ch:    make(chan eventRecord, 256),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(l)
	}
	go l.flushLoop()
	return l
}

// Log queues a business event for persistence. When the buffer is full it
// falls back to a synchronous insert. Errors are logged via slog but never
// propagate to the caller.
func (l *EventLogger) Log(event Event) {
	rec := eventRecord{
		Event:     event,
		id:        l.newID(),
		createdAt: time.Now().Unix(),
	}
	select {
	case l.ch <- rec:
	default:
		slog.Warn("event buffer full, sync fallback", "event_type", event.Type)
		l.insert(rec)
	}
}

// Close drains the buffer and stops the flush goroutine.
func (l *EventLogger) Close() error {
	close(l.stop)
	<-l.done
	return nil
}

func (l *EventLogger) insert(rec eventRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO event_log (event_id, event_type, entity_type, entity_id, user_id, success, details, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.id, rec.Type, rec.EntityType, rec.EntityID,
		rec.UserID, rec.Success, rec.Details, rec.createdAt)
	if err != nil {
		slog.Error("event log failed", "error", err, "event_type", rec.Type)
	}
}

func (l *EventLogger) flushLoop() {
	defer close(l.done)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	batch := make([]eventRecord, 0, 64)

	flush := func() {
		for _, rec := range batch {
			l.insert(rec)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-l.stop:
			// drain whatever is still queued
			for {
				select {
				case rec := <-l.ch:
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		case rec := <-l.ch:
			batch = append(batch, rec)
			if len(batch) >= 64 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
