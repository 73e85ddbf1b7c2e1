package store

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is a scripted DB. Exec and QueryRow responses are consumed in call
// order; when the script runs out, Exec reports one affected row.
type fakeDB struct {
	execs   []execResponse
	rows    []*fakeRow
	queries []string
	allArgs [][]any
}

type execResponse struct {
	tag pgconn.CommandTag
	err error
}

type fakeRow struct {
	id      string
	created bool
	err     error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*string); ok {
		*p = r.id
	}
	if p, ok := dest[1].(*bool); ok {
		*p = r.created
	}
	return nil
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	f.allArgs = append(f.allArgs, args)
	if len(f.execs) == 0 {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	resp := f.execs[0]
	f.execs = f.execs[1:]
	return resp.tag, resp.err
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	f.allArgs = append(f.allArgs, args)
	if len(f.rows) == 0 {
		return &fakeRow{}
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

func newTestStore(db *fakeDB) *Store {
	return New(db, Config{Table: "records", ExternalIDColumn: "external_id"})
}

func TestBulkWriteEmptyBatch(t *testing.T) {
	s := newTestStore(&fakeDB{})

	_, err := s.BulkWrite(context.Background(), OpSave, nil)
	if err == nil {
		t.Fatal("expected error for empty batch")
	}
	if !strings.Contains(err.Error(), "no records provided") {
		t.Errorf("error = %q", err)
	}
}

func TestBulkWriteUnknownOperation(t *testing.T) {
	s := newTestStore(&fakeDB{})

	_, err := s.BulkWrite(context.Background(), Operation("merge"), []Record{{ID: "a"}})
	if err == nil {
		t.Fatal("expected error for unknown operation")
	}
	if !strings.Contains(err.Error(), "unsupported operation") {
		t.Errorf("error = %q", err)
	}
}

func TestBulkWriteCancelledContext(t *testing.T) {
	db := &fakeDB{}
	s := newTestStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.BulkWrite(ctx, OpSave, []Record{{Fields: map[string]any{"name": "a"}}})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if len(db.queries) != 0 {
		t.Errorf("executed %d statements after cancellation, want 0", len(db.queries))
	}
}

func TestSaveInsertAssignsID(t *testing.T) {
	db := &fakeDB{execs: []execResponse{{tag: pgconn.NewCommandTag("INSERT 0 1")}}}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpSave, []Record{
		{Fields: map[string]any{"name": "Acme"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outcomes[0].(SaveOutcome)
	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if !out.HasID || out.ID == "" {
		t.Errorf("outcome has no assigned id: %+v", out)
	}
	if !strings.HasPrefix(db.queries[0], `INSERT INTO "records"`) {
		t.Errorf("query = %q, want INSERT", db.queries[0])
	}
}

func TestSaveInsertFailureReportsNoID(t *testing.T) {
	// The generated id was never persisted, so the outcome must not claim it.
	db := &fakeDB{execs: []execResponse{{err: &pgconn.PgError{
		Code:    "23505",
		Message: "duplicate key value violates unique constraint",
		Detail:  "Key (email)=(a@acme.test) already exists.",
	}}}}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpSave, []Record{
		{Fields: map[string]any{"email": "a@acme.test"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outcomes[0].(SaveOutcome)
	if out.Success || out.HasID {
		t.Errorf("outcome = %+v, want failed with no id", out)
	}
	if len(out.Errors) != 1 || out.Errors[0].Code != CodeDuplicateValue {
		t.Errorf("errors = %+v, want one DUPLICATE_VALUE", out.Errors)
	}
	if len(out.Errors) == 1 && len(out.Errors[0].Fields) != 1 {
		t.Errorf("fields = %v, want [email]", out.Errors[0].Fields)
	}
}

func TestSaveUpdateNotFound(t *testing.T) {
	db := &fakeDB{execs: []execResponse{{tag: pgconn.NewCommandTag("UPDATE 0")}}}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpSave, []Record{
		{ID: "missing", Fields: map[string]any{"name": "x"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outcomes[0].(SaveOutcome)
	if out.Success {
		t.Fatalf("outcome = %+v, want failure", out)
	}
	if !out.HasID || out.ID != "missing" {
		t.Errorf("failed update lost the targeted id: %+v", out)
	}
	if out.Errors[0].Code != CodeRecordNotFound {
		t.Errorf("code = %q, want %q", out.Errors[0].Code, CodeRecordNotFound)
	}
}

func TestSaveNoFields(t *testing.T) {
	db := &fakeDB{}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpSave, []Record{{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outcomes[0].(SaveOutcome)
	if out.Success || out.Errors[0].Code != CodeRequiredFieldMissing {
		t.Errorf("outcome = %+v, want REQUIRED_FIELD_MISSING failure", out)
	}
	if len(db.queries) != 0 {
		t.Errorf("executed %d statements for a fieldless record, want 0", len(db.queries))
	}
}

func TestSavePartialFailure(t *testing.T) {
	// The failing middle record must not stop the records after it.
	db := &fakeDB{execs: []execResponse{
		{tag: pgconn.NewCommandTag("INSERT 0 1")},
		{err: &pgconn.PgError{Code: "23502", Message: "null value", ColumnName: "name"}},
		{tag: pgconn.NewCommandTag("INSERT 0 1")},
	}}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpSave, []Record{
		{Fields: map[string]any{"name": "a"}},
		{Fields: map[string]any{"name": nil}},
		{Fields: map[string]any{"name": "c"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}

	if !outcomes[0].(SaveOutcome).Success {
		t.Error("outcome 0 failed, want success")
	}
	mid := outcomes[1].(SaveOutcome)
	if mid.Success || mid.Errors[0].Code != CodeRequiredFieldMissing {
		t.Errorf("outcome 1 = %+v, want REQUIRED_FIELD_MISSING failure", mid)
	}
	if !outcomes[2].(SaveOutcome).Success {
		t.Error("outcome 2 failed, want success")
	}
}

func TestUpsertRequiresExternalID(t *testing.T) {
	db := &fakeDB{}
	s := newTestStore(db)

	records := []Record{
		{Fields: map[string]any{"name": "no external id"}},
		{Fields: map[string]any{"external_id": nil}},
		{Fields: map[string]any{"external_id": ""}},
	}
	outcomes, err := s.BulkWrite(context.Background(), OpUpsert, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, raw := range outcomes {
		out := raw.(UpsertOutcome)
		if out.Success {
			t.Errorf("outcome %d succeeded, want failure", i)
			continue
		}
		if out.Errors[0].Code != CodeRequiredFieldMissing {
			t.Errorf("outcome %d code = %q, want %q", i, out.Errors[0].Code, CodeRequiredFieldMissing)
		}
		if len(out.Errors[0].Fields) != 1 || out.Errors[0].Fields[0] != "external_id" {
			t.Errorf("outcome %d fields = %v, want [external_id]", i, out.Errors[0].Fields)
		}
	}
	if len(db.queries) != 0 {
		t.Errorf("executed %d statements, want 0", len(db.queries))
	}
}

func TestUpsertSuccess(t *testing.T) {
	db := &fakeDB{rows: []*fakeRow{
		{id: "row-1", created: true},
		{id: "row-2", created: false},
	}}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpUpsert, []Record{
		{Fields: map[string]any{"external_id": "ext-1", "name": "a"}},
		{Fields: map[string]any{"external_id": "ext-2", "name": "b"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := outcomes[0].(UpsertOutcome)
	if !first.Success || first.ID != "row-1" || !first.Created {
		t.Errorf("outcome 0 = %+v, want created row-1", first)
	}
	second := outcomes[1].(UpsertOutcome)
	if !second.Success || second.ID != "row-2" || second.Created {
		t.Errorf("outcome 1 = %+v, want updated row-2", second)
	}

	if !strings.Contains(db.queries[0], "ON CONFLICT") {
		t.Errorf("query = %q, want ON CONFLICT upsert", db.queries[0])
	}
}

func TestUpsertQueryError(t *testing.T) {
	db := &fakeDB{rows: []*fakeRow{{err: &pgconn.PgError{
		Code:    "22P02",
		Message: "invalid input syntax",
	}}}}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpUpsert, []Record{
		{Fields: map[string]any{"external_id": "ext-1", "age": "abc"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outcomes[0].(UpsertOutcome)
	if out.Success || out.HasID {
		t.Errorf("outcome = %+v, want failed with no id", out)
	}
	if out.Errors[0].Code != CodeFieldValidation {
		t.Errorf("code = %q, want %q", out.Errors[0].Code, CodeFieldValidation)
	}
}

func TestDeleteRequiresID(t *testing.T) {
	db := &fakeDB{}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpDelete, []Record{{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outcomes[0].(DeleteOutcome)
	if out.Success || out.Errors[0].Code != CodeRequiredFieldMissing {
		t.Errorf("outcome = %+v, want REQUIRED_FIELD_MISSING failure", out)
	}
	if len(out.Errors[0].Fields) != 0 {
		t.Errorf("fields = %v, want none for delete", out.Errors[0].Fields)
	}
}

func TestDeleteNotFound(t *testing.T) {
	db := &fakeDB{execs: []execResponse{{tag: pgconn.NewCommandTag("DELETE 0")}}}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpDelete, []Record{{ID: "missing"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outcomes[0].(DeleteOutcome)
	if out.Success || out.Errors[0].Code != CodeRecordNotFound {
		t.Errorf("outcome = %+v, want RECORD_NOT_FOUND failure", out)
	}
}

func TestDeleteSuccess(t *testing.T) {
	db := &fakeDB{execs: []execResponse{{tag: pgconn.NewCommandTag("DELETE 1")}}}
	s := newTestStore(db)

	outcomes, err := s.BulkWrite(context.Background(), OpDelete, []Record{{ID: "rec-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outcomes[0].(DeleteOutcome)
	if !out.Success || out.ID != "rec-1" || !out.HasID {
		t.Errorf("outcome = %+v, want successful delete of rec-1", out)
	}
	if !strings.HasPrefix(db.queries[0], `DELETE FROM "records"`) {
		t.Errorf("query = %q, want DELETE", db.queries[0])
	}
}
