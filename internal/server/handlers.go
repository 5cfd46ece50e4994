package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mkoval/defectwatch/internal/analytics"
	"github.com/mkoval/defectwatch/internal/enrich"
	"github.com/mkoval/defectwatch/internal/nhtsa"
	"github.com/mkoval/defectwatch/internal/search"
	"github.com/mkoval/defectwatch/internal/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// vehicleFromQuery reads the make/model/year query parameters.
func vehicleFromQuery(r *http.Request) (types.Vehicle, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return types.Vehicle{}, errors.New("year must be an integer")
	}
	v := types.Vehicle{
		Make:  r.URL.Query().Get("make"),
		Model: r.URL.Query().Get("model"),
		Year:  year,
	}
	return v.Normalize(), v.Validate()
}

func (s *Server) handleRecalls(w http.ResponseWriter, r *http.Request) {
	v, err := vehicleFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, source, err := s.client.RecallsByVehicle(r.Context(), v)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicle": v,
		"source":  source,
		"count":   len(records),
		"results": records,
	})
}

// complaintsForRequest fetches (and optionally enriches) the complaint set
// shared by the complaints, stats, trend, and search handlers.
func (s *Server) complaintsForRequest(r *http.Request, enrichRecords bool) ([]types.ComplaintRecord, *enrich.Stats, error) {
	v, err := vehicleFromQuery(r)
	if err != nil {
		return nil, nil, err
	}
	records, _, err := s.client.ComplaintsByVehicle(r.Context(), v)
	if err != nil {
		return nil, nil, err
	}
	if !enrichRecords {
		return records, nil, nil
	}

	opts := enrich.Options{MaxRecords: s.cfg.MaxRecords, Concurrency: s.cfg.Concurrency}
	if n, err := strconv.Atoi(r.URL.Query().Get("max_records")); err == nil && n > 0 {
		opts.MaxRecords = n
	}
	result, err := s.pipeline.Run(r.Context(), records, opts)
	if err != nil {
		return nil, nil, err
	}
	return result.Records, &result.Stats, nil
}

func (s *Server) handleComplaints(w http.ResponseWriter, r *http.Request) {
	enrichRecords := r.URL.Query().Get("enrich") == "true"
	records, stats, err := s.complaintsForRequest(r, enrichRecords)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	resp := map[string]any{
		"count":   len(records),
		"results": records,
	}
	if stats != nil {
		resp["enrichment"] = stats
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplaintStats(w http.ResponseWriter, r *http.Request) {
	records, _, err := s.complaintsForRequest(r, r.URL.Query().Get("enrich") == "true")
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"components": analytics.ComponentFrequency(records),
		"severity":   analytics.Severity(records),
	})
}

func (s *Server) handleComplaintTrend(w http.ResponseWriter, r *http.Request) {
	records, _, err := s.complaintsForRequest(r, false)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	trend := analytics.MonthlyTrend(records, r.URL.Query().Get("component"))
	writeJSON(w, http.StatusOK, map[string]any{"trend": trend})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	topK := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("top_k")); err == nil && n > 0 {
		topK = n
	}
	records, _, err := s.complaintsForRequest(r, r.URL.Query().Get("enrich") == "true")
	if err != nil {
		s.writeFetchError(w, err)
		return
	}

	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].NarrativeText()
	}
	idx := search.Build(texts)
	hits := idx.Query(query, topK)

	type searchResult struct {
		Score     float64               `json:"score"`
		Complaint types.ComplaintRecord `json:"complaint"`
	}
	results := make([]searchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, searchResult{Score: h.Score, Complaint: records[h.DocID]})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index_id": idx.ID(),
		"query":    query,
		"results":  results,
	})
}

func (s *Server) handleVIN(w http.ResponseWriter, r *http.Request) {
	result, source, err := s.client.DecodeVIN(r.Context(), r.PathValue("vin"))
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source": source,
		"result": result,
	})
}

// writeFetchError maps upstream failures to 502 and everything else to 400.
func (s *Server) writeFetchError(w http.ResponseWriter, err error) {
	var fe *nhtsa.FetchError
	if errors.As(err, &fe) {
		s.log.Warn("upstream fetch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeError(w, http.StatusBadRequest, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
