package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds the store's target table settings.
type Config struct {
	// Table is the table all bulk writes target. It must have a text "id"
	// primary key column.
	Table string

	// ExternalIDColumn is the unique column upserts key on.
	ExternalIDColumn string

	// StatementTimeout bounds each per-record statement. Zero disables the
	// bound; the caller's context still applies.
	StatementTimeout time.Duration
}

// Store executes bulk writes against a single PostgreSQL table.
type Store struct {
	db  DB
	cfg Config
}

// New creates a Store over db with the given settings.
func New(db DB, cfg Config) *Store {
	return &Store{db: db, cfg: cfg}
}

// BulkWrite executes op for every record and returns one raw outcome per
// record, index-aligned with records. The returned slice holds
// SaveOutcome, UpsertOutcome, or DeleteOutcome values depending on op.
//
// A failing record never aborts the batch: its failure is captured in that
// record's outcome and the remaining records still run. BulkWrite itself
// returns an error only when the batch as a whole is refused — no records,
// an unknown operation, or a cancelled context.
func (s *Store) BulkWrite(ctx context.Context, op Operation, records []Record) ([]any, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records provided")
	}

	switch op {
	case OpSave, OpUpsert, OpDelete:
	default:
		return nil, fmt.Errorf("unsupported operation: %q", op)
	}

	outcomes := make([]any, 0, len(records))
	for _, rec := range records {
		// Cancellation aborts the whole batch; the caller gets an error, not
		// a partial outcome list padded with fabricated failures.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bulk write aborted: %w", err)
		}

		switch op {
		case OpSave:
			outcomes = append(outcomes, s.save(ctx, rec))
		case OpUpsert:
			outcomes = append(outcomes, s.upsert(ctx, rec))
		case OpDelete:
			outcomes = append(outcomes, s.delete(ctx, rec))
		}
	}

	return outcomes, nil
}

// save inserts the record when it has no ID, assigning one, and updates the
// existing row otherwise.
func (s *Store) save(ctx context.Context, rec Record) SaveOutcome {
	if len(rec.Fields) == 0 {
		return SaveOutcome{
			ID:    rec.ID,
			HasID: rec.ID != "",
			Errors: []WriteError{{
				Message: "record has no fields to write",
				Code:    CodeRequiredFieldMissing,
			}},
		}
	}

	if rec.ID == "" {
		id := uuid.New().String()
		query, args := buildInsert(s.cfg.Table, id, rec.Fields)
		if err := s.exec(ctx, query, args); err != nil {
			// The insert failed, so the generated id was never persisted and
			// is not reported.
			return SaveOutcome{Errors: []WriteError{translateError(err)}}
		}
		return SaveOutcome{ID: id, HasID: true, Success: true}
	}

	query, args := buildUpdate(s.cfg.Table, rec.ID, rec.Fields)
	tag, err := s.execTag(ctx, query, args)
	if err != nil {
		return SaveOutcome{ID: rec.ID, HasID: true, Errors: []WriteError{translateError(err)}}
	}
	if tag.RowsAffected() == 0 {
		return SaveOutcome{ID: rec.ID, HasID: true, Errors: []WriteError{{
			Message: fmt.Sprintf("record %s does not exist", rec.ID),
			Code:    CodeRecordNotFound,
		}}}
	}
	return SaveOutcome{ID: rec.ID, HasID: true, Success: true}
}

// upsert inserts or updates by the configured external-id field, which every
// record must carry.
func (s *Store) upsert(ctx context.Context, rec Record) UpsertOutcome {
	extCol := s.cfg.ExternalIDColumn
	if v, ok := rec.Fields[extCol]; !ok || v == nil || v == "" {
		return UpsertOutcome{Errors: []WriteError{{
			Fields:  []string{extCol},
			Message: fmt.Sprintf("upsert requires the %s field", extCol),
			Code:    CodeRequiredFieldMissing,
		}}}
	}

	query, args := buildUpsert(s.cfg.Table, extCol, uuid.New().String(), rec.Fields)

	stmtCtx, cancel := s.statementContext(ctx)
	defer cancel()

	var (
		id      string
		created bool
	)
	if err := s.db.QueryRow(stmtCtx, query, args...).Scan(&id, &created); err != nil {
		return UpsertOutcome{Errors: []WriteError{translateError(err)}}
	}
	return UpsertOutcome{ID: id, HasID: true, Success: true, Created: created}
}

// delete removes the record by ID. Delete outcomes carry no field-level
// error detail; there are no submitted fields to point at.
func (s *Store) delete(ctx context.Context, rec Record) DeleteOutcome {
	if rec.ID == "" {
		return DeleteOutcome{Errors: []WriteError{{
			Message: "record id is required for delete",
			Code:    CodeRequiredFieldMissing,
		}}}
	}

	query, args := buildDelete(s.cfg.Table, rec.ID)
	tag, err := s.execTag(ctx, query, args)
	if err != nil {
		return DeleteOutcome{ID: rec.ID, HasID: true, Errors: []WriteError{translateError(err)}}
	}
	if tag.RowsAffected() == 0 {
		return DeleteOutcome{ID: rec.ID, HasID: true, Errors: []WriteError{{
			Message: fmt.Sprintf("record %s does not exist", rec.ID),
			Code:    CodeRecordNotFound,
		}}}
	}
	return DeleteOutcome{ID: rec.ID, HasID: true, Success: true}
}

func (s *Store) exec(ctx context.Context, query string, args []any) error {
	_, err := s.execTag(ctx, query, args)
	return err
}

func (s *Store) execTag(ctx context.Context, query string, args []any) (pgconn.CommandTag, error) {
	stmtCtx, cancel := s.statementContext(ctx)
	defer cancel()
	return s.db.Exec(stmtCtx, query, args...)
}

// statementContext bounds a single statement with the configured timeout.
func (s *Store) statementContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StatementTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.StatementTimeout)
}
