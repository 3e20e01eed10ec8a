package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/library-register/cmd/api/notifications"
	"github.com/library-register/cmd/api/record"
)

type RecordHandler struct {
	recordService ServiceAPI
	board         NoticeBoard
	limiter       *rateLimiter
	sessions      *lru.Cache[string, *record.Debouncer]
	debounce      time.Duration
	clock         func() time.Time
}

func NewRecordHandler(recordService ServiceAPI, board NoticeBoard, config ServerConfig) (*RecordHandler, error) {
	config = config.withDefaults()

	sessions, err := lru.New[string, *record.Debouncer](config.SearchSessions)
	if err != nil {
		return nil, fmt.Errorf("creating search sessions: %w", err)
	}
	limiter, err := newRateLimiter(config.RateLimit, config.RateBurst)
	if err != nil {
		return nil, err
	}

	return &RecordHandler{
		recordService: recordService,
		board:         board,
		limiter:       limiter,
		sessions:      sessions,
		debounce:      config.SearchDebounce,
		clock:         config.Clock,
	}, nil
}

/* Addresses a call to "/records" according to the requested action.  */
func (h *RecordHandler) records(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	switch method {
	case http.MethodGet:
		h.listRecords(w, r)
		return
	case http.MethodPost:
		h.createRecord(w, r)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

/* Addresses a call to "/records/(expected acquisition number here)" according to the requested action.  */
func (h *RecordHandler) recordByKey(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	switch method {
	case http.MethodGet:
		h.getRecord(w, r)
		return
	case http.MethodPut:
		h.updateRecord(w, r)
		return
	case http.MethodDelete:
		h.deleteRecord(w, r)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
}

/* Stores the submitted form as a new record. */
func (h *RecordHandler) createRecord(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	stored, err := h.recordService.Submit(r.Context(), record.Create(), entry)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	h.notify(r.Context(), notifications.NewSuccess(fmt.Sprintf("Record %s saved", stored.AcquisitionNumber)))
	responseJSON(w, http.StatusCreated, stored)
}

/* Overwrites the record opened for editing with the submitted form. */
func (h *RecordHandler) updateRecord(w http.ResponseWriter, r *http.Request) {
	key, err := h.isolateKey(w, r)
	if err != nil {
		return
	}

	entry, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	stored, err := h.recordService.Submit(r.Context(), record.UpdateOf(key), entry)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	h.notify(r.Context(), notifications.NewSuccess(fmt.Sprintf("Record %s updated", stored.AcquisitionNumber)))
	responseJSON(w, http.StatusOK, stored)
}

/* Deletes the record once the user confirmed it. */
func (h *RecordHandler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	key, err := h.isolateKey(w, r)
	if err != nil {
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		h.handleError(record.ErrResponseDeleteNotConfirmed, w, r)
		return
	}

	if err := h.recordService.Delete(r.Context(), key); err != nil {
		h.handleError(err, w, r)
		return
	}

	h.notify(r.Context(), notifications.NewSuccess(fmt.Sprintf("Record %s deleted", key)))
	w.WriteHeader(http.StatusNoContent)
}

/* Returns the record with that acquisition number. */
func (h *RecordHandler) getRecord(w http.ResponseWriter, r *http.Request) {
	key, err := h.isolateKey(w, r)
	if err != nil {
		return
	}

	found, err := h.recordService.Get(r.Context(), key)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	responseJSON(w, http.StatusOK, found)
}

type ListRecordsResponse struct {
	Query   string                     `json:"query"`
	Total   int                        `json:"total"`
	Results []record.AcquisitionRecord `json:"results"`
}

/* Returns the records matching the query, in the asked order. */
func (h *RecordHandler) listRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sortBy, sortDirection, valid := extractOrderParams(query)
	if !valid {
		h.handleError(record.ErrResponseQuerySortByInvalid, w, r)
		return
	}

	q := query.Get("q")
	found, err := h.recordService.Search(r.Context(), q)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	responseJSON(w, http.StatusOK, ListRecordsResponse{
		Query:   q,
		Total:   len(found),
		Results: record.SortRecords(found, sortBy, sortDirection),
	})
}

/* Live search: only the last request of a burst from the same session gets results. */
func (h *RecordHandler) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	sortBy, sortDirection, valid := extractOrderParams(query)
	if !valid {
		h.handleError(record.ErrResponseQuerySortByInvalid, w, r)
		return
	}

	session := query.Get("session")
	if session == "" {
		session = clientOf(r)
	}
	debouncer, ok := h.sessions.Get(session)
	if !ok {
		debouncer = record.NewDebouncer(h.debounce)
		if prev, found, _ := h.sessions.PeekOrAdd(session, debouncer); found {
			debouncer = prev
		}
	}

	q := query.Get("q")
	var found []record.AcquisitionRecord
	err := debouncer.Do(r.Context(), func(ctx context.Context) error {
		var err error
		found, err = h.recordService.Search(ctx, q)
		return err
	})
	if errors.Is(err, record.ErrSuperseded) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	responseJSON(w, http.StatusOK, ListRecordsResponse{
		Query:   q,
		Total:   len(found),
		Results: record.SortRecords(found, sortBy, sortDirection),
	})
}

/* Sends every record as a downloadable backup file. */
func (h *RecordHandler) backup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := h.recordService.Backup(r.Context())
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	filename := record.BackupFilename(h.clock())
	h.notify(r.Context(), notifications.NewSuccess("Backup written to "+filename))

	w.Header().Set("content-type", "application/json")
	w.Header().Set("content-disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(r.Context(), "writing backup", "err", err)
	}
}

type RestoreFailureResponse struct {
	AcquisitionNumber string `json:"acquisition_number"`
	Error             string `json:"error"`
}

type RestoreReportResponse struct {
	Atomic   bool                     `json:"atomic"`
	Total    int                      `json:"total"`
	Restored int                      `json:"restored"`
	Failures []RestoreFailureResponse `json:"failures"`
}

func reportToResponse(report record.RestoreReport, atomic bool) RestoreReportResponse {
	failures := []RestoreFailureResponse{}
	for _, f := range report.Failures {
		failures = append(failures, RestoreFailureResponse{AcquisitionNumber: f.AcquisitionNumber, Error: f.Err.Error()})
	}
	return RestoreReportResponse{
		Atomic:   atomic,
		Total:    report.Total,
		Restored: report.Restored,
		Failures: failures,
	}
}

/* Reads a backup file from the body and writes its records over the stored ones. */
func (h *RecordHandler) restore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRestoreBytes))
	if err != nil {
		h.handleError(record.NewErrMalformedBackup(err), w, r)
		return
	}

	records, err := record.Deserialize(data)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	atomic := r.URL.Query().Get("atomic") == "true"
	report, err := h.recordService.Restore(r.Context(), records, record.RestoreOptions{Atomic: atomic})
	if err != nil && !errors.Is(err, record.ErrResponseRestoreIncomplete) {
		h.handleError(err, w, r)
		return
	}

	if err != nil {
		slog.WarnContext(r.Context(), "restore incomplete", "total", report.Total, "restored", report.Restored, "err", err)
		h.notify(r.Context(), notifications.NewFailure(fmt.Sprintf("Restored %d of %d records", report.Restored, report.Total)))
	} else {
		h.notify(r.Context(), notifications.NewSuccess(fmt.Sprintf("Restored %d records", report.Restored)))
	}
	responseJSON(w, http.StatusOK, reportToResponse(report, atomic))
}

/* Returns the notices currently on display. */
func (h *RecordHandler) notices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	responseJSON(w, http.StatusOK, h.board.Current())
}

func (h *RecordHandler) limit(next http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.allow(clientOf(r)) {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func (h *RecordHandler) notify(ctx context.Context, n notifications.Notice) {
	// The notice outlives a cancelled request.
	if err := h.board.Notify(context.WithoutCancel(ctx), n); err != nil {
		slog.WarnContext(ctx, "forwarding notice", "notice", n.Message, "err", err)
	}
}

/* Maps err into a status code and a JSON error, logs it and shows it as a failure notice. */
func (h *RecordHandler) handleError(err error, w http.ResponseWriter, r *http.Request) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	} else {
		slog.InfoContext(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	h.notify(r.Context(), notifications.NewFailure(body.Message))
	responseJSON(w, status, body)
}

func errorResponse(err error) (int, record.ErrResponse) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, record.ErrResponseRequestTimeout
	}

	kind, ok := record.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, record.ErrResponseStorageFailure
	}

	var status int
	switch kind {
	case record.ErrResponseEntryInvalidFields, record.ErrResponseEntryInvalidJSON, record.ErrResponseKeyInvalidFormat,
		record.ErrResponseQuerySortByInvalid, record.ErrResponseKeyMismatch, record.ErrResponseMalformedBackup:
		// The details help the user fix the request.
		return http.StatusBadRequest, record.ErrResponse{Code: kind.Code, Message: err.Error()}
	case record.ErrResponseRecordNotFound:
		status = http.StatusNotFound
	case record.ErrResponseDuplicateKey, record.ErrResponseDeleteNotConfirmed:
		status = http.StatusConflict
	case record.ErrResponseStorageUnavailable, record.ErrResponseSchemaUpgrade:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	return status, kind
}

func (h *RecordHandler) decodeEntry(w http.ResponseWriter, r *http.Request) (record.AcquisitionRecord, bool) {
	var entry record.AcquisitionRecord
	err := json.NewDecoder(r.Body).Decode(&entry) //Read the Json body and save the entry
	if err != nil {
		h.handleError(record.NewErrWithCause(record.ErrResponseEntryInvalidJSON, err), w, r)
		return record.AcquisitionRecord{}, false
	}
	return entry, true
}

/* Isolates the acquisition number from the URL. */
func (h *RecordHandler) isolateKey(w http.ResponseWriter, r *http.Request) (string, error) {
	escaped, _ := strings.CutPrefix(r.URL.EscapedPath(), "/records/")
	key, err := url.PathUnescape(escaped)
	if err == nil && (key == "" || strings.Contains(escaped, "/")) {
		err = record.ErrResponseKeyInvalidFormat
	}
	if err != nil {
		slog.InfoContext(r.Context(), "isolating acquisition number", "path", r.URL.Path, "err", err)
		h.handleError(record.ErrResponseKeyInvalidFormat, w, r)
		return "", err
	}
	return key, nil
}

/*Writes a JSON response into a http.ResponseWriter. */
func responseJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("encoding json response", "err", err)
		return
	}
}

/*Validates and prepares the ordering parameters of the query.*/
func extractOrderParams(query url.Values) (sortBy string, sortDirection string, valid bool) {
	sortDirection = query.Get("sort_direction")
	switch sortDirection {
	case "":
		sortDirection = record.SortAsc
	case record.SortAsc:
		break
	case record.SortDesc:
		break
	default:
		return sortBy, sortDirection, false
	}

	sortBy = query.Get("sort_by")
	if sortBy != "" && !record.IsField(sortBy) {
		return sortBy, sortDirection, false
	}
	return sortBy, sortDirection, true
}
