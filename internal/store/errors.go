package store

// errors.go translates driver errors into the store's stable symbolic error
// codes. Consumers branch on codes, never on Postgres message text, so the
// mapping here is the only place that knows about SQLSTATEs.
//
// Code reference:
//
//	REQUIRED_FIELD_MISSING - a NOT NULL column was left empty, or an input
//	                         the operation needs (record id, external id)
//	                         was not provided
//	DUPLICATE_VALUE        - a unique constraint rejected the value
//	FOREIGN_KEY_VIOLATION  - a referenced record does not exist
//	FIELD_VALIDATION_ERROR - a value could not be coerced to the column type
//	                         (SQLSTATE class 22, data exceptions)
//	INSUFFICIENT_ACCESS    - the database role lacks the required privilege
//	RECORD_NOT_FOUND       - the targeted record does not exist
//	UNCATEGORIZED_ERROR    - anything the table above does not cover

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Stable error codes carried on WriteError.Code.
const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeDuplicateValue       = "DUPLICATE_VALUE"
	CodeForeignKeyViolation  = "FOREIGN_KEY_VIOLATION"
	CodeFieldValidation      = "FIELD_VALIDATION_ERROR"
	CodeInsufficientAccess   = "INSUFFICIENT_ACCESS"
	CodeRecordNotFound       = "RECORD_NOT_FOUND"
	CodeUncategorized        = "UNCATEGORIZED_ERROR"
)

// translateError converts a statement error into a WriteError.
//
// Postgres errors are classified by SQLSTATE. Everything else (driver
// failures, protocol errors) degrades to UNCATEGORIZED_ERROR so the batch
// can keep going; only the caller decides whether such an error should
// instead abort the batch.
func translateError(err error) WriteError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return WriteError{Message: err.Error(), Code: CodeUncategorized}
	}

	switch {
	case pgErr.Code == "23502": // not_null_violation
		we := WriteError{Message: pgErr.Message, Code: CodeRequiredFieldMissing}
		if pgErr.ColumnName != "" {
			we.Fields = []string{pgErr.ColumnName}
		}
		return we

	case pgErr.Code == "23505": // unique_violation
		return WriteError{
			Fields:  fieldsFromDetail(pgErr.Detail),
			Message: pgErr.Message,
			Code:    CodeDuplicateValue,
		}

	case pgErr.Code == "23503": // foreign_key_violation
		return WriteError{
			Fields:  fieldsFromDetail(pgErr.Detail),
			Message: pgErr.Message,
			Code:    CodeForeignKeyViolation,
		}

	case strings.HasPrefix(pgErr.Code, "22"): // data exceptions
		return WriteError{Message: pgErr.Message, Code: CodeFieldValidation}

	case pgErr.Code == "42501": // insufficient_privilege
		return WriteError{Message: pgErr.Message, Code: CodeInsufficientAccess}

	default:
		return WriteError{Message: pgErr.Message, Code: CodeUncategorized}
	}
}

// fieldsFromDetail extracts column names from a constraint violation detail
// of the form "Key (col_a, col_b)=(1, 2) already exists.". Returns nil when
// the detail does not follow that shape.
func fieldsFromDetail(detail string) []string {
	open := strings.Index(detail, "(")
	if open < 0 {
		return nil
	}
	close := strings.Index(detail[open:], ")")
	if close < 0 {
		return nil
	}

	inner := detail[open+1 : open+close]
	parts := strings.Split(inner, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
