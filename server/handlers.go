package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/regwatch/regwatch/pkg/domain"
	"github.com/regwatch/regwatch/pkg/repository"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// listRecordsHandler returns records newest first with optional filters
func (s *Server) listRecordsHandler(w http.ResponseWriter, r *http.Request) {
	req := repository.ListRequest{
		Sector:    r.URL.Query().Get("sector"),
		Agency:    r.URL.Query().Get("agency"),
		Impact:    r.URL.Query().Get("impact"),
		SavedOnly: r.URL.Query().Get("saved") == "true",
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 500 {
			renderError(w, r, fmt.Errorf("invalid limit"), http.StatusBadRequest)
			return
		}
		req.Limit = limit
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			renderError(w, r, fmt.Errorf("invalid offset"), http.StatusBadRequest)
			return
		}
		req.Offset = offset
	}
	if impact := req.Impact; impact != "" && !domain.Impact(impact).Valid() {
		renderError(w, r, fmt.Errorf("invalid impact %q", impact), http.StatusBadRequest)
		return
	}

	records, err := s.db.ListRecords(r.Context(), req)
	if err != nil {
		lgr.Printf("[ERROR] failed to list records: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// addRecordRequest is the payload for manual record creation
type addRecordRequest struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
}

// addRecordHandler creates a manually curated record. Re-adding a known URL
// restores the existing record instead of duplicating it.
func (s *Server) addRecordHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.URL == "" {
		renderError(w, r, fmt.Errorf("title and url are required"), http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "Manual"
	}

	existing, err := s.db.GetByURL(ctx, req.URL)
	if err != nil {
		lgr.Printf("[ERROR] failed to check record url: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	if existing != nil {
		if existing.IsHidden {
			if err := s.db.SetHidden(ctx, existing.ID, false); err != nil {
				lgr.Printf("[ERROR] failed to restore record: %v", err)
				renderError(w, r, err, http.StatusInternalServerError)
				return
			}
			existing.IsHidden = false
		}
		renderJSON(w, r, http.StatusOK, existing)
		return
	}

	item := s.classifier.Classify(domain.Candidate{
		Title:     req.Title,
		Summary:   req.Summary,
		URL:       req.URL,
		Source:    req.Source,
		Published: time.Now(),
	})

	rec := domain.NewRecord(item)
	rec.IsManual = true
	if err := s.db.CreateRecord(ctx, rec); err != nil {
		lgr.Printf("[ERROR] failed to create record: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.captureInterests(r, req.Title, 2.0, domain.InterestFromAdded)

	renderJSON(w, r, http.StatusCreated, rec)
}

// updateRecordHandler applies a manual correction to a record
func (s *Server) updateRecordHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid record ID"), http.StatusBadRequest)
		return
	}

	var upd domain.RecordUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if upd.Empty() {
		renderError(w, r, fmt.Errorf("no fields to update"), http.StatusBadRequest)
		return
	}
	if upd.Impact != nil && !upd.Impact.Valid() {
		renderError(w, r, fmt.Errorf("invalid impact %q", *upd.Impact), http.StatusBadRequest)
		return
	}

	rec, err := s.db.ApplyUpdate(r.Context(), id, upd)
	if err != nil {
		lgr.Printf("[ERROR] failed to update record %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusOK, rec)
}

// hideRecordHandler soft-deletes a record
func (s *Server) hideRecordHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid record ID"), http.StatusBadRequest)
		return
	}

	if err := s.db.SetHidden(r.Context(), id, true); err != nil {
		lgr.Printf("[ERROR] failed to hide record %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusOK, map[string]string{"status": "hidden"})
}

// toggleSaveHandler flips the saved flag; saving feeds the interest profile
func (s *Server) toggleSaveHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid record ID"), http.StatusBadRequest)
		return
	}

	saved, err := s.db.ToggleSaved(ctx, id)
	if err != nil {
		lgr.Printf("[ERROR] failed to toggle save on record %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	if saved {
		if rec, err := s.db.GetRecord(ctx, id); err == nil {
			s.captureInterests(r, rec.Title, 2.0, domain.InterestFromSaved)
		}
	}

	renderJSON(w, r, http.StatusOK, map[string]interface{}{"id": id, "saved": saved})
}

// searchRequest is the payload for on-demand search
type searchRequest struct {
	Query string `json:"query"`
}

// searchHandler runs the search chain and records the query as an interest
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		renderError(w, r, fmt.Errorf("query is required"), http.StatusBadRequest)
		return
	}

	s.captureInterests(r, req.Query, 1.0, domain.InterestFromSearch)

	result := s.searcher.Search(r.Context(), req.Query)
	renderJSON(w, r, http.StatusOK, result)
}

// briefRequest is the payload for brief generation
type briefRequest struct {
	Impact string `json:"impact"`
	Limit  int    `json:"limit"`
}

// briefHandler generates an executive brief over recent records
func (s *Server) briefHandler(w http.ResponseWriter, r *http.Request) {
	var req briefRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
			return
		}
	}
	if req.Impact != "" && !domain.Impact(req.Impact).Valid() {
		renderError(w, r, fmt.Errorf("invalid impact %q", req.Impact), http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}

	records, err := s.db.ListRecords(r.Context(), repository.ListRequest{Impact: req.Impact, Limit: req.Limit})
	if err != nil {
		lgr.Printf("[ERROR] failed to load records for brief: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	brief := s.brief.Generate(r.Context(), records)
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"brief": brief, "records": len(records)})
}

// scanHandler schedules an immediate scan
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	s.scheduler.TriggerScan()
	renderJSON(w, r, http.StatusAccepted, map[string]string{"status": "scan scheduled"})
}

// statsHandler returns aggregate record counts
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.Stats(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to get stats: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, stats)
}

// exportHandler streams visible records as CSV
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.ListRecords(r.Context(), repository.ListRequest{Limit: 500})
	if err != nil {
		lgr.Printf("[ERROR] failed to export records: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="records.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"id", "title", "url", "source", "sector", "agency", "impact", "published", "saved"})
	for _, rec := range records {
		_ = cw.Write([]string{
			strconv.FormatInt(rec.ID, 10),
			rec.Title,
			rec.URL,
			rec.Source,
			rec.Sector,
			rec.Agency,
			string(rec.Impact),
			rec.Published.Format(time.RFC3339),
			strconv.FormatBool(rec.IsSaved),
		})
	}
}

// captureInterests feeds entity tokens from user activity into the interest
// profile; failures are logged and never surfaced
func (s *Server) captureInterests(r *http.Request, text string, weight float64, origin domain.InterestOrigin) {
	tokens := s.expander.Expand(text).EntityTokens
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	for _, token := range tokens {
		if err := s.interests.UpsertInterest(r.Context(), token, weight, origin); err != nil {
			lgr.Printf("[WARN] failed to capture interest %q: %v", token, err)
		}
	}
}
