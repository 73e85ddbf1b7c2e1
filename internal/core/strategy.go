package core

import (
	"fmt"

	"github.com/JonMunkholm/bulkbridge/internal/store"
)

// Strategy normalizes one raw outcome shape into the canonical Result.
// Implementations are stateless and safe to share across goroutines.
type Strategy interface {
	Normalize(raw any) Result
}

// Capability interfaces probed by the generic fallback strategy. A raw
// outcome of an unmodeled type that exposes some of these methods still gets
// best-effort normalization instead of the unknown-shape error.
type (
	// Succeeder exposes the raw outcome's success flag.
	Succeeder interface{ Succeeded() bool }

	// Identified exposes the affected record's identifier, with a flag
	// distinguishing absence from a valid empty identifier.
	Identified interface{ RecordID() (string, bool) }

	// ErrorCarrier exposes the raw outcome's structured errors.
	ErrorCarrier interface{ WriteErrors() []store.WriteError }
)

// saveStrategy normalizes store.SaveOutcome values.
type saveStrategy struct{}

func (saveStrategy) Normalize(raw any) Result {
	o, ok := raw.(store.SaveOutcome)
	if !ok {
		p, okPtr := raw.(*store.SaveOutcome)
		if !okPtr || p == nil {
			return genericStrategy{}.Normalize(raw)
		}
		o = *p
	}
	return buildResult(o.ID, o.HasID, o.Success, o.Errors)
}

// upsertStrategy normalizes store.UpsertOutcome values. The outcome's
// Created flag (insert vs update) is intentionally not represented in the
// canonical result.
type upsertStrategy struct{}

func (upsertStrategy) Normalize(raw any) Result {
	o, ok := raw.(store.UpsertOutcome)
	if !ok {
		p, okPtr := raw.(*store.UpsertOutcome)
		if !okPtr || p == nil {
			return genericStrategy{}.Normalize(raw)
		}
		o = *p
	}
	return buildResult(o.ID, o.HasID, o.Success, o.Errors)
}

// deleteStrategy normalizes store.DeleteOutcome values.
type deleteStrategy struct{}

func (deleteStrategy) Normalize(raw any) Result {
	o, ok := raw.(store.DeleteOutcome)
	if !ok {
		p, okPtr := raw.(*store.DeleteOutcome)
		if !okPtr || p == nil {
			return genericStrategy{}.Normalize(raw)
		}
		o = *p
	}
	return buildResult(o.ID, o.HasID, o.Success, o.Errors)
}

// genericStrategy is the catch-all for raw outcome shapes no specific
// strategy recognizes. It probes the capability interfaces above; if none of
// the expected fields can be read at all, it reports the record as failed
// with a single unknown-shape error. It never panics, so resolution stays
// total over any input, nil included.
type genericStrategy struct{}

func (genericStrategy) Normalize(raw any) Result {
	var (
		id       string
		hasID    bool
		success  bool
		rawErrs  []store.WriteError
		readable bool
	)

	if s, ok := raw.(Succeeder); ok {
		success = s.Succeeded()
		readable = true
	}
	if ident, ok := raw.(Identified); ok {
		id, hasID = ident.RecordID()
		readable = true
	}
	if c, ok := raw.(ErrorCarrier); ok {
		rawErrs = c.WriteErrors()
		readable = true
	}

	if !readable {
		return Result{
			Success: false,
			Errors: []Error{{
				Fields:     []string{},
				Message:    fmt.Sprintf("unrecognized outcome shape %T", raw),
				StatusCode: StatusUnknownOutcomeShape,
			}},
		}
	}

	return buildResult(id, hasID, success, rawErrs)
}

// buildResult assembles a Result that upholds the success/errors invariant
// regardless of what the raw outcome reported:
//
//   - errors present win: a raw outcome claiming success while carrying
//     errors normalizes to a failure, protecting the invariant against
//     upstream inconsistency;
//   - a reported failure without any error detail gets a synthesized
//     uncategorized error, so a failed Result always explains itself.
func buildResult(id string, hasID, success bool, rawErrs []store.WriteError) Result {
	errs := make([]Error, 0, len(rawErrs))
	for _, we := range rawErrs {
		errs = append(errs, normalizeWriteError(we))
	}

	if len(errs) > 0 {
		success = false
	} else if !success {
		errs = append(errs, Error{
			Fields:     []string{},
			Message:    "outcome reported failure without error detail",
			StatusCode: StatusUncategorized,
		})
	}

	return Result{ID: id, HasID: hasID, Success: success, Errors: errs}
}

// normalizeWriteError converts one raw error, applying the missing-detail
// defaults: no fields becomes an empty list, no message becomes the
// NoMessage sentinel, no code becomes StatusUncategorized. Fields are copied
// so the Result shares nothing with the raw outcome.
func normalizeWriteError(we store.WriteError) Error {
	fields := make([]string, len(we.Fields))
	copy(fields, we.Fields)

	msg := we.Message
	if msg == "" {
		msg = NoMessage
	}

	code := StatusCode(we.Code)
	if code == "" {
		code = StatusUncategorized
	}

	return Error{Fields: fields, Message: msg, StatusCode: code}
}
