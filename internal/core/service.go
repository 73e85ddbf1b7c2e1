package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/bulkbridge/internal/store"
)

// BulkWriter is the bulk-write collaborator contract the Service depends on.
// Implementations must return one raw outcome per record, index-aligned with
// the input, and must not abort the batch because a single record fails;
// partial success is expected. Satisfied by *store.Store.
type BulkWriter interface {
	BulkWrite(ctx context.Context, op store.Operation, records []store.Record) ([]any, error)
}

// Service orchestrates bulk writes and result normalization. It is stateless
// between calls; concurrent use needs no locking.
type Service struct {
	writer BulkWriter
}

// NewService creates a Service over the given collaborator.
func NewService(writer BulkWriter) *Service {
	return &Service{writer: writer}
}

// NormalizeAll normalizes an ordered sequence of raw outcomes without
// performing any write. The output is index-aligned with the input and
// always has the same length — no ordering, filtering, or deduplication.
// It never fails: a malformed or unrecognized element degrades to a failure
// Result rather than aborting the batch.
func (s *Service) NormalizeAll(raws []any) []Result {
	results := make([]Result, len(raws))
	for i, raw := range raws {
		results[i] = resolve(raw).Normalize(raw)
	}
	return results
}

// BulkUpdate performs a save (insert-or-update) write for every record and
// returns the normalized results, index-aligned with records.
func (s *Service) BulkUpdate(ctx context.Context, records []store.Record) ([]Result, error) {
	return s.performBulkWrite(ctx, store.OpSave, records)
}

// BulkUpsert performs an upsert write for every record. Each record must
// carry the store's external-id field; enforcing that is the collaborator's
// responsibility and a violation surfaces as that record's failure Result.
func (s *Service) BulkUpsert(ctx context.Context, records []store.Record) ([]Result, error) {
	return s.performBulkWrite(ctx, store.OpUpsert, records)
}

// BulkDelete performs a delete write for every record.
func (s *Service) BulkDelete(ctx context.Context, records []store.Record) ([]Result, error) {
	return s.performBulkWrite(ctx, store.OpDelete, records)
}

// performBulkWrite runs one bulk operation through the collaborator and
// normalizes its raw outcomes. A batch-level refusal — empty input or the
// collaborator rejecting the call — is returned as an error, never folded
// into fabricated per-record Results.
func (s *Service) performBulkWrite(ctx context.Context, op store.Operation, records []store.Record) ([]Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records provided")
	}

	raws, err := s.writer.BulkWrite(ctx, op, records)
	if err != nil {
		return nil, fmt.Errorf("bulk %s: %w", op, err)
	}

	return s.NormalizeAll(raws), nil
}
