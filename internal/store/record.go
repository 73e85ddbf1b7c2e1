// Package store implements the PostgreSQL-backed record store that executes
// bulk write operations. It is the external collaborator consumed by
// internal/core: callers hand it an ordered batch of records, and it hands
// back one raw outcome per record, index-aligned with the input.
//
// The contract that matters to consumers is partial-failure tolerance: a
// record that fails never aborts the batch. Each record runs as its own
// statement, so the batch carries on and the failure is reported in that
// record's outcome instead of as an error from BulkWrite.
package store

// Operation identifies the kind of bulk write to perform.
type Operation string

const (
	// OpSave inserts records without an ID (assigning one) and updates
	// records that carry one.
	OpSave Operation = "save"

	// OpUpsert inserts or updates by the configured external-id field.
	OpUpsert Operation = "upsert"

	// OpDelete removes records by ID.
	OpDelete Operation = "delete"
)

// Record is the unit submitted to a bulk write.
//
// ID is the store-assigned identifier. Leave it empty for save to insert a
// new record; it is required for delete. Fields maps column names to values
// and is ignored for delete.
type Record struct {
	ID     string
	Fields map[string]any
}
