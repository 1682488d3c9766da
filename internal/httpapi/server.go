package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/procurely/sourcing-insights/internal/history"
	"github.com/procurely/sourcing-insights/internal/insight"
	"github.com/procurely/sourcing-insights/internal/render"
)

const Version = "1.2.0"

type Server struct {
	pipeline  *insight.Pipeline
	store     *history.Store
	startedAt time.Time
}

// NewServer wires the analysis pipeline behind the HTTP surface. The
// history store is optional; a nil store disables the /v1/analyses routes.
func NewServer(pipeline *insight.Pipeline, store *history.Store) http.Handler {
	s := &Server{
		pipeline:  pipeline,
		store:     store,
		startedAt: time.Now(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/insights", s.handleInsights)
	mux.HandleFunc("/v1/analyses", s.handleListAnalyses)
	mux.HandleFunc("/v1/analyses/", s.handleAnalysis)
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.HandleFunc("/v1/system/status", s.handleSystemStatus)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	var ie *insight.Error
	if errors.As(err, &ie) {
		errBody := map[string]any{
			"code":    ie.Code,
			"message": ie.Message,
		}
		if len(ie.Fields) > 0 {
			errBody["fields"] = ie.Fields
		}
		writeJSON(w, ie.Status, map[string]any{"ok": false, "error": errBody})
		return
	}
	writeJSON(w, 500, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    insight.CodeInternal,
			"message": err.Error(),
		},
	})
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func parseInt(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req insight.AnalysisRequest
	if r.Body != nil {
		blob, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, insight.NewValidationError("read request body: "+err.Error(), nil))
			return
		}
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &req); err != nil {
				writeError(w, insight.NewValidationError("invalid request JSON: "+err.Error(), nil))
				return
			}
		}
	}

	res, err := s.pipeline.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := map[string]any{
		"ok":              true,
		"report":          res.Report,
		"metrics":         res.Metrics,
		"strategy":        res.Strategy,
		"report_markdown": res.ReportMarkdown,
		"disclaimer":      insight.Disclaimer,
	}
	if s.store != nil {
		// The audit write must not cost the caller a completed report.
		if rec, saveErr := s.store.Save(res); saveErr != nil {
			log.Printf("failed to store analysis: %v", saveErr)
		} else {
			payload["analysis_id"] = rec.ID
		}
	}
	writeJSON(w, 200, payload)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.store == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	records, err := s.store.List(parseInt(r.URL.Query().Get("limit"), 50))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"id":               rec.ID,
			"category":         rec.Category,
			"risk_level":       rec.RiskLevel,
			"strategy":         rec.Strategy,
			"confidence_score": rec.ConfidenceScore,
			"supplier_count":   rec.SupplierCount,
			"created_at":       rec.CreatedAt,
		})
	}
	writeJSON(w, 200, map[string]any{"analyses": out})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.store == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/analyses/")
	wantReport := false
	if strings.HasSuffix(path, "/report") {
		wantReport = true
		path = strings.TrimSuffix(path, "/report")
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(path, "/"), 10, 64)
	if err != nil || id <= 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	rec, ok, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	report, err := rec.Report()
	if err != nil {
		writeError(w, err)
		return
	}

	if wantReport {
		doc, err := render.BuildHTML(insight.Result{
			Report:         report,
			Strategy:       rec.Strategy,
			ReportMarkdown: rec.ReportMarkdown,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, doc)
		return
	}

	writeJSON(w, 200, map[string]any{
		"id":              rec.ID,
		"category":        rec.Category,
		"risk_level":      rec.RiskLevel,
		"strategy":        rec.Strategy,
		"supplier_count":  rec.SupplierCount,
		"created_at":      rec.CreatedAt,
		"report":          report,
		"report_markdown": rec.ReportMarkdown,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{
		"status":         "ok",
		"version":        Version,
		"llm_configured": s.pipeline.LLMConfigured(),
		"history":        s.store != nil,
	})
}

func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	payload := map[string]any{
		"version":        Version,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"llm_configured": s.pipeline.LLMConfigured(),
		"history":        s.store != nil,
	}
	if s.store != nil {
		if n, err := s.store.Count(); err == nil {
			payload["analyses_stored"] = n
		}
	}
	writeJSON(w, 200, payload)
}
