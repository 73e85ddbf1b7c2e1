package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/bulkbridge/internal/core"
	"github.com/JonMunkholm/bulkbridge/internal/logging"
	"github.com/JonMunkholm/bulkbridge/internal/store"
)

// recordPayload is one record in a bulk write request.
type recordPayload struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

// bulkRequest is the body of a bulk write request.
type bulkRequest struct {
	Records []recordPayload `json:"records"`
}

// errorPayload is one normalized error in a response, and also the accepted
// error shape in raw outcomes posted to /api/normalize.
type errorPayload struct {
	Fields     []string `json:"fields"`
	Message    string   `json:"message"`
	StatusCode string   `json:"statusCode"`
}

// resultPayload is one normalized result in a response. ID is null when the
// outcome carried no identifier, which is distinct from an empty string.
type resultPayload struct {
	ID      *string        `json:"id"`
	Success bool           `json:"success"`
	Errors  []errorPayload `json:"errors"`
}

// bulkResponse is the body of a bulk write response, index-aligned with the
// submitted records.
type bulkResponse struct {
	Results []resultPayload `json:"results"`
}

// bulkOp is the shape shared by the three service bulk operations.
type bulkOp func(ctx context.Context, records []store.Record) ([]core.Result, error)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	s.handleBulk(w, r, "update", s.service.BulkUpdate)
}

func (s *Server) handleBulkUpsert(w http.ResponseWriter, r *http.Request) {
	s.handleBulk(w, r, "upsert", s.service.BulkUpsert)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	s.handleBulk(w, r, "delete", s.service.BulkDelete)
}

// handleBulk decodes a bulk request, runs one service operation, and writes
// the normalized results. Per-record failures land in the results under a
// 200; only batch-level refusals produce an error status.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request, name string, op bulkOp) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	records := make([]store.Record, len(req.Records))
	for i, rp := range req.Records {
		records[i] = store.Record{ID: rp.ID, Fields: rp.Fields}
	}

	logger := logging.WithFields(r.Context(), "operation", name, "records", len(records))
	logger.Info("bulk write received")

	results, err := op(r.Context(), records)
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	failed := 0
	for _, res := range results {
		if !res.Success {
			failed++
		}
	}
	logger.Info("bulk write completed", "failed", failed)

	writeJSON(w, http.StatusOK, bulkResponse{Results: toPayloads(results)})
}

// handleNormalize normalizes a JSON array of raw outcomes without touching
// the store. Elements that do not look like any outcome shape still produce
// a result; the endpoint never rejects a well-formed array.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var elems []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&elems); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	raws := make([]any, len(elems))
	for i, e := range elems {
		raws[i] = decodeOutcome(e)
	}

	results := s.service.NormalizeAll(raws)
	writeJSON(w, http.StatusOK, bulkResponse{Results: toPayloads(results)})
}

// outcomeEnvelope adapts a JSON object that carries at least one recognized
// outcome key (success, id, errors) so the normalization fallback can probe
// it field by field.
type outcomeEnvelope struct {
	success bool
	id      string
	hasID   bool
	errs    []store.WriteError
}

func (e outcomeEnvelope) Succeeded() bool { return e.success }

func (e outcomeEnvelope) RecordID() (string, bool) { return e.id, e.hasID }

func (e outcomeEnvelope) WriteErrors() []store.WriteError { return e.errs }

// opaqueOutcome wraps a JSON element with no recognized outcome keys. It
// exposes nothing, so normalization reports it as an unrecognized shape.
type opaqueOutcome struct {
	raw json.RawMessage
}

// decodeOutcome converts one raw JSON element into a value the normalization
// layer can classify.
func decodeOutcome(raw json.RawMessage) any {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return opaqueOutcome{raw: raw}
	}

	_, hasSuccess := obj["success"]
	idRaw, hasIDKey := obj["id"]
	errsRaw, hasErrs := obj["errors"]
	if !hasSuccess && !hasIDKey && !hasErrs {
		return opaqueOutcome{raw: raw}
	}

	var env outcomeEnvelope

	if hasSuccess {
		json.Unmarshal(obj["success"], &env.success)
	}

	// "id": null means the identifier is absent, same as omitting the key
	if hasIDKey && string(idRaw) != "null" {
		if err := json.Unmarshal(idRaw, &env.id); err == nil {
			env.hasID = true
		}
	}

	if hasErrs {
		var eps []errorPayload
		if err := json.Unmarshal(errsRaw, &eps); err == nil {
			for _, ep := range eps {
				env.errs = append(env.errs, store.WriteError{
					Fields:  ep.Fields,
					Message: ep.Message,
					Code:    ep.StatusCode,
				})
			}
		}
	}

	return env
}

// toPayloads converts canonical results into their JSON representation,
// preserving order and mapping absent identifiers to null.
func toPayloads(results []core.Result) []resultPayload {
	payloads := make([]resultPayload, len(results))
	for i, res := range results {
		var id *string
		if v, ok := res.RecordID(); ok {
			idCopy := v
			id = &idCopy
		}

		errs := make([]errorPayload, len(res.Errors))
		for j, e := range res.Errors {
			errs[j] = errorPayload{
				Fields:     e.Fields,
				Message:    e.Message,
				StatusCode: string(e.StatusCode),
			}
		}

		payloads[i] = resultPayload{ID: id, Success: res.Success, Errors: errs}
	}
	return payloads
}
