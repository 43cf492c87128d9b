// Package httpapi implements the HTTP transport for the extraction core.
//
// It owns two behaviors that are contracts of the flow, not polish:
//
//   - the single-flight gate: while an extraction or comparison is in
//     flight, a second trigger is refused (409) until the first settles;
//   - the two-step confirmation on the destructive reset-all operation.
//
// Routes:
//
//	POST   /extract               → run extraction, return record + editable form
//	POST   /records               → persist an edited form
//	GET    /records?search=term   → filter the cached snapshot
//	DELETE /records/{id}          → delete one record
//	GET    /records/{id}/export   → paginated plain-text export
//	DELETE /records?confirm=true  → delete the whole partition
//	POST   /compare               → compare ≥2 persisted records
//	GET    /events                → SSE stream of wholesale snapshots
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/Malek720-420/InternExtract/internal/compare"
	"github.com/Malek720-420/InternExtract/internal/export"
	"github.com/Malek720-420/InternExtract/internal/extract"
	"github.com/Malek720-420/InternExtract/internal/reconcile"
	"github.com/Malek720-420/InternExtract/internal/schema"
	"github.com/Malek720-420/InternExtract/internal/store"
)

// Extractor is the slice of the extraction client the handler needs.
type Extractor interface {
	Extract(ctx context.Context, text string) (schema.JobOfferRecord, error)
}

// Comparer is the slice of the comparison engine the handler needs.
type Comparer interface {
	Compare(ctx context.Context, records []schema.JobOfferRecord) (*compare.Result, error)
}

// RecordStore is the slice of the synced store the handler needs.
type RecordStore interface {
	Create(ctx context.Context, record schema.JobOfferRecord) (string, error)
	Delete(ctx context.Context, documentID string) error
	ResetAll(ctx context.Context) error
}

// Handler holds shared dependencies.
type Handler struct {
	extractor Extractor
	comparer  Comparer
	store     RecordStore
	cache     *SnapshotCache

	// inferenceBusy gates extract and compare together: the session runs at
	// most one inference call at a time, with no mid-flight cancellation.
	inferenceBusy atomic.Bool
}

// NewHandler returns a configured Handler.
func NewHandler(extractor Extractor, comparer Comparer, recordStore RecordStore, cache *SnapshotCache) *Handler {
	return &Handler{
		extractor: extractor,
		comparer:  comparer,
		store:     recordStore,
		cache:     cache,
	}
}

// RegisterRoutes mounts all routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/extract", h.handleExtract)
	mux.HandleFunc("/records", h.handleRecords)
	mux.HandleFunc("/records/", h.handleRecordByID)
	mux.HandleFunc("/compare", h.handleCompare)
	mux.HandleFunc("/events", h.handleEvents)
}

// ─── Extraction ──────────────────────────────────────────────────────────────

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		jsonError(w, "text must not be empty", http.StatusBadRequest)
		return
	}

	release, ok := h.acquireInference(w)
	if !ok {
		return
	}
	defer release()

	record, err := h.extractor.Extract(r.Context(), body.Text)
	if err != nil {
		// The precise reason (exhausted retries, permanent rejection,
		// network) matters for the log, not for the client.
		log.Printf("[api] extraction failed: %v", err)
		if errors.Is(err, extract.ErrEmptyInput) {
			jsonError(w, "text must not be empty", http.StatusBadRequest)
			return
		}
		jsonError(w, "extraction unavailable, try again later", http.StatusBadGateway)
		return
	}

	// The extracted value travels with the response — there is no ambient
	// "last extracted" state to go stale after a reset.
	jsonOK(w, map[string]any{
		"record":  record,
		"form":    reconcile.ToEditable(record),
		"hasData": schema.HasData(record),
	})
}

// ─── Records ─────────────────────────────────────────────────────────────────

// handleRecords handles GET (search), POST (create) and DELETE (reset-all)
// on the collection.
func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRecords(w, r)
	case http.MethodPost:
		h.createRecord(w, r)
	case http.MethodDelete:
		h.resetAll(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	snap := h.cache.Get()
	if snap.OwnerID == "" {
		jsonError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	term := r.URL.Query().Get("search")
	jsonOK(w, map[string]any{
		"ownerId": snap.OwnerID,
		"records": store.Search(snap, term),
	})
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	var form reconcile.EditableForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	record, err := reconcile.FromEditable(form)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	documentID, err := h.store.Create(r.Context(), record)
	if err != nil {
		h.storeError(w, "createRecord", err)
		return
	}

	// Visibility in the snapshot arrives with the next subscription
	// callback, not with this response.
	writeJSON(w, map[string]string{"documentId": documentID}, http.StatusCreated)
}

func (h *Handler) resetAll(w http.ResponseWriter, r *http.Request) {
	// Destructive and irreversible — the two-step confirmation is a required
	// behavior of this flow.
	if r.URL.Query().Get("confirm") != "true" {
		jsonError(w, "reset-all removes every saved record and cannot be undone; repeat the request with confirm=true", http.StatusConflict)
		return
	}

	if err := h.store.ResetAll(r.Context()); err != nil {
		h.storeError(w, "resetAll", err)
		return
	}
	jsonOK(w, map[string]string{"status": "reset"})
}

// handleRecordByID handles DELETE /records/{id} and GET /records/{id}/export.
func (h *Handler) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.Method == http.MethodDelete && len(parts) == 2 && parts[1] != "":
		h.deleteRecord(w, r, parts[1])
	case r.Method == http.MethodGet && len(parts) == 3 && parts[2] == "export":
		h.exportRecord(w, parts[1])
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request, documentID string) {
	if err := h.store.Delete(r.Context(), documentID); err != nil {
		h.storeError(w, "deleteRecord", err)
		return
	}
	jsonOK(w, map[string]string{"status": "deleted"})
}

// exportRecord renders one persisted record as a paginated plain-text
// document, fields in contract order.
func (h *Handler) exportRecord(w http.ResponseWriter, documentID string) {
	snap := h.cache.Get()
	if snap.OwnerID == "" {
		jsonError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	rec, found := findRecord(snap, documentID)
	if !found {
		jsonError(w, fmt.Sprintf("document %s not found", documentID), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, export.Render(rec).Text())
}

// ─── Comparison ──────────────────────────────────────────────────────────────

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		DocumentIDs []string `json:"documentIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(body.DocumentIDs) < 2 {
		jsonError(w, "comparison requires at least two records", http.StatusUnprocessableEntity)
		return
	}

	snap := h.cache.Get()
	records := make([]schema.JobOfferRecord, 0, len(body.DocumentIDs))
	for _, id := range body.DocumentIDs {
		rec, found := findRecord(snap, id)
		if !found {
			jsonError(w, fmt.Sprintf("document %s not found", id), http.StatusNotFound)
			return
		}
		records = append(records, rec)
	}

	release, ok := h.acquireInference(w)
	if !ok {
		return
	}
	defer release()

	result, err := h.comparer.Compare(r.Context(), records)
	if err != nil {
		log.Printf("[api] comparison failed: %v", err)
		if errors.Is(err, compare.ErrInsufficientData) {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "comparison unavailable, try again later", http.StatusBadGateway)
		return
	}

	// Each result replaces the previous one on the client — nothing is
	// accumulated server-side.
	jsonOK(w, result)
}

func findRecord(snap store.Snapshot, documentID string) (schema.JobOfferRecord, bool) {
	for _, rec := range snap.Records {
		if rec.DocumentID == documentID {
			return rec.Record, true
		}
	}
	return schema.JobOfferRecord{}, false
}

// ─── Events (SSE) ────────────────────────────────────────────────────────────

// handleEvents streams every wholesale snapshot to the client as a
// server-sent event, starting with the current one.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := h.cache.Listen(r.Context())
	writeEvent(w, h.cache.Get())
	flusher.Flush()

	for {
		select {
		case snap := <-updates:
			writeEvent(w, snap)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, snap store.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[api] marshal snapshot event: %v", err)
		return
	}
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// acquireInference claims the single inference slot. On contention it writes
// the 409 itself and reports false.
func (h *Handler) acquireInference(w http.ResponseWriter) (release func(), ok bool) {
	if !h.inferenceBusy.CompareAndSwap(false, true) {
		jsonError(w, "an extraction or comparison is already in flight", http.StatusConflict)
		return nil, false
	}
	return func() { h.inferenceBusy.Store(false) }, true
}

// storeError maps store failures to status codes; the generic notice goes to
// the client, the cause to the log.
func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	log.Printf("[api] %s: %v", op, err)
	if errors.Is(err, store.ErrUnauthenticated) {
		jsonError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	jsonError(w, "storage error, try again later", http.StatusInternalServerError)
}

func jsonOK(w http.ResponseWriter, v any) {
	writeJSON(w, v, http.StatusOK)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, map[string]string{"error": msg}, code)
}

func writeJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
