package store

// outcome.go defines the raw per-record outcome variants produced by
// BulkWrite. The variants share one logical shape (success flag, optional
// identifier, zero or more errors) but keep distinct types so consumers can
// tell which operation produced them. internal/core classifies on these
// concrete types when normalizing.

// WriteError describes one structured error attached to a raw outcome.
//
// Fields lists the columns implicated by the error and may be empty; delete
// outcomes never carry field-level detail. Code is a stable symbolic
// identifier from the code space in errors.go, not free text.
type WriteError struct {
	Fields  []string
	Message string
	Code    string
}

// SaveOutcome is the raw outcome of one record in an OpSave batch.
//
// HasID distinguishes "no identifier" from a valid empty one: an insert that
// failed never received an ID, while a failed update still knows the ID it
// targeted.
type SaveOutcome struct {
	ID      string
	HasID   bool
	Success bool
	Errors  []WriteError
}

// UpsertOutcome is the raw outcome of one record in an OpUpsert batch.
// Created reports whether the row was inserted rather than updated.
type UpsertOutcome struct {
	ID      string
	HasID   bool
	Success bool
	Created bool
	Errors  []WriteError
}

// DeleteOutcome is the raw outcome of one record in an OpDelete batch.
type DeleteOutcome struct {
	ID      string
	HasID   bool
	Success bool
	Errors  []WriteError
}
