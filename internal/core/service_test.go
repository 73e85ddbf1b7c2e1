package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/bulkbridge/internal/store"
)

// fakeWriter is a scripted BulkWriter.
type fakeWriter struct {
	raws []any
	err  error

	gotOp      store.Operation
	gotRecords []store.Record
	calls      int
}

func (f *fakeWriter) BulkWrite(ctx context.Context, op store.Operation, records []store.Record) ([]any, error) {
	f.calls++
	f.gotOp = op
	f.gotRecords = records
	if f.err != nil {
		return nil, f.err
	}
	return f.raws, nil
}

func TestNormalizeAll(t *testing.T) {
	svc := NewService(&fakeWriter{})

	raws := []any{
		store.SaveOutcome{ID: "a", HasID: true, Success: true},
		struct{}{},
		store.DeleteOutcome{ID: "b", HasID: true, Errors: []store.WriteError{{
			Message: "record b does not exist",
			Code:    store.CodeRecordNotFound,
		}}},
	}

	results := svc.NormalizeAll(raws)

	if len(results) != len(raws) {
		t.Fatalf("got %d results, want %d", len(results), len(raws))
	}

	// Index alignment: each result corresponds to the raw at the same position
	if id, ok := results[0].RecordID(); !ok || id != "a" {
		t.Errorf("results[0].RecordID() = (%q, %v), want (\"a\", true)", id, ok)
	}
	if results[1].Success || results[1].Errors[0].StatusCode != StatusUnknownOutcomeShape {
		t.Errorf("results[1] = %+v, want unknown-shape failure", results[1])
	}
	if results[2].Success || results[2].Errors[0].StatusCode != StatusCode(store.CodeRecordNotFound) {
		t.Errorf("results[2] = %+v, want not-found failure", results[2])
	}
}

func TestNormalizeAllMixedBatch(t *testing.T) {
	svc := NewService(&fakeWriter{})

	raws := []any{
		store.SaveOutcome{ID: "1", HasID: true, Success: true},
		store.SaveOutcome{ID: "2", HasID: true, Success: false, Errors: []store.WriteError{{
			Fields:  []string{"Name"},
			Message: "Required",
			Code:    store.CodeRequiredFieldMissing,
		}}},
	}

	want := []Result{
		{ID: "1", HasID: true, Success: true, Errors: []Error{}},
		{ID: "2", HasID: true, Success: false, Errors: []Error{{
			Fields:     []string{"Name"},
			Message:    "Required",
			StatusCode: StatusCode(store.CodeRequiredFieldMissing),
		}}},
	}

	got := svc.NormalizeAll(raws)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeAll() = %+v, want %+v", got, want)
	}
}

func TestNormalizeAllEmpty(t *testing.T) {
	svc := NewService(&fakeWriter{})

	results := svc.NormalizeAll([]any{})
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if results == nil {
		t.Error("results is nil, want empty slice")
	}
}

func TestBulkOperationsDispatch(t *testing.T) {
	tests := []struct {
		name   string
		call   func(*Service, context.Context, []store.Record) ([]Result, error)
		wantOp store.Operation
	}{
		{"update dispatches save", (*Service).BulkUpdate, store.OpSave},
		{"upsert dispatches upsert", (*Service).BulkUpsert, store.OpUpsert},
		{"delete dispatches delete", (*Service).BulkDelete, store.OpDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw := &fakeWriter{raws: []any{store.SaveOutcome{ID: "x", HasID: true, Success: true}}}
			svc := NewService(fw)

			records := []store.Record{{Fields: map[string]any{"name": "n"}}}
			results, err := tt.call(svc, context.Background(), records)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fw.gotOp != tt.wantOp {
				t.Errorf("operation = %q, want %q", fw.gotOp, tt.wantOp)
			}
			if len(results) != 1 {
				t.Errorf("got %d results, want 1", len(results))
			}
		})
	}
}

func TestBulkUpdateEmptyBatch(t *testing.T) {
	fw := &fakeWriter{}
	svc := NewService(fw)

	_, err := svc.BulkUpdate(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for empty batch")
	}
	if !strings.Contains(err.Error(), "no records provided") {
		t.Errorf("error = %q, want mention of no records", err)
	}
	if fw.calls != 0 {
		t.Errorf("writer called %d times, want 0", fw.calls)
	}
}

func TestBulkUpdateBatchFailure(t *testing.T) {
	// A collaborator error is a batch-level failure: it comes back as an
	// error, never as fabricated per-record results.
	fw := &fakeWriter{err: errors.New("dial tcp: connection refused")}
	svc := NewService(fw)

	results, err := svc.BulkUpdate(context.Background(), []store.Record{{ID: "a"}})
	if err == nil {
		t.Fatal("expected error from failing writer")
	}
	if results != nil {
		t.Errorf("results = %+v, want nil on batch failure", results)
	}
	if !errors.Is(err, fw.err) {
		t.Errorf("error does not wrap the writer error: %v", err)
	}
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	// One failing record among successes: the batch call succeeds and the
	// failure lands in that record's result.
	fw := &fakeWriter{raws: []any{
		store.SaveOutcome{ID: "a", HasID: true, Success: true},
		store.SaveOutcome{Errors: []store.WriteError{{
			Fields:  []string{"email"},
			Message: "duplicate",
			Code:    store.CodeDuplicateValue,
		}}},
		store.SaveOutcome{ID: "c", HasID: true, Success: true},
	}}
	svc := NewService(fw)

	records := []store.Record{
		{Fields: map[string]any{"email": "a@x"}},
		{Fields: map[string]any{"email": "a@x"}},
		{Fields: map[string]any{"email": "c@x"}},
	}
	results, err := svc.BulkUpdate(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].Success || results[1].Success || !results[2].Success {
		t.Errorf("success flags = %v %v %v, want true false true",
			results[0].Success, results[1].Success, results[2].Success)
	}
	if _, ok := results[1].RecordID(); ok {
		t.Error("failed insert result carries an id, want none")
	}
}
