package core

// StatusCode is a stable symbolic code identifying an error class. Codes from
// raw outcomes are preserved verbatim; the sentinels below cover raw errors
// that arrive without a code and outcomes whose shape cannot be read at all.
type StatusCode string

const (
	// StatusUncategorized marks a raw error that carried no code of its own,
	// or a raw outcome that reported failure without any error detail.
	StatusUncategorized StatusCode = "UNCATEGORIZED_ERROR"

	// StatusUnknownOutcomeShape marks the single error produced when a raw
	// outcome's shape is unrecognized and none of its fields can be read.
	StatusUnknownOutcomeShape StatusCode = "UNKNOWN_OUTCOME_SHAPE"
)

// NoMessage is the sentinel used when a raw error carries no message. An
// empty string is never propagated as if it were meaningful.
const NoMessage = "no error message provided"

// Error is one normalized error attached to a Result.
// Immutable once constructed; equality is structural.
type Error struct {
	// Fields lists the field names implicated by the error. Never nil;
	// empty when the raw error carried no field-level detail.
	Fields []string

	// Message is the human-readable description. Never empty.
	Message string

	// StatusCode identifies the error class.
	StatusCode StatusCode
}

// Result is the canonical outcome for one record of a bulk write.
//
// Invariant: Success == (len(Errors) == 0). Result carries no reference back
// to the raw outcome or the record it came from beyond the identifier.
type Result struct {
	// ID is the identifier of the affected record. Meaningful only when
	// HasID is true.
	ID string

	// HasID reports whether the operation assigned or knew an identifier.
	// It distinguishes a missing identifier from a valid empty one.
	HasID bool

	// Success is true exactly when the raw outcome reported success and
	// carried zero errors.
	Success bool

	// Errors holds the normalized errors, in raw-outcome order. Never nil;
	// empty exactly when Success is true.
	Errors []Error
}

// RecordID returns the record identifier and whether one is present.
func (r Result) RecordID() (string, bool) {
	return r.ID, r.HasID
}
