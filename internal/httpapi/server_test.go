package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/procurely/sourcing-insights/internal/history"
	"github.com/procurely/sourcing-insights/internal/insight"
)

type fakeCaller struct {
	response string
	err      error
}

func (f *fakeCaller) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	return f.response, f.err
}

func newServerForTest(t *testing.T, caller insight.LLMCaller) http.Handler {
	t.Helper()
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer(insight.NewPipeline(caller), store)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	blob, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(blob))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func validRequest() map[string]any {
	return map[string]any{
		"category": "IT Hardware",
		"suppliers": []map[string]any{
			{"supplier_name": "TechSource Inc", "annual_spend_usd": 4620000, "on_time_delivery_pct": 92, "contract_expiry_months": 6, "single_source_dependency": true, "region": "NA"},
			{"supplier_name": "GlobalComponents", "annual_spend_usd": 3410000, "on_time_delivery_pct": 85, "contract_expiry_months": 3, "region": "EMEA"},
			{"supplier_name": "NextGen Supply", "annual_spend_usd": 1980000, "on_time_delivery_pct": 97, "contract_expiry_months": 12, "region": "APAC"},
		},
	}
}

func TestInsightsRuleBased(t *testing.T) {
	h := newServerForTest(t, nil)

	rr := postJSON(t, h, "/v1/insights", validRequest())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		OK         bool                  `json:"ok"`
		AnalysisID int64                 `json:"analysis_id"`
		Report     insight.InsightReport `json:"report"`
		Strategy   insight.Strategy      `json:"strategy"`
		Markdown   string                `json:"report_markdown"`
		Disclaimer string                `json:"disclaimer"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.OK || out.Strategy != insight.StrategyRuleBased {
		t.Fatalf("unexpected envelope: %+v", out)
	}
	if out.Report.OverallRiskLevel != insight.RiskHigh {
		t.Fatalf("expected High, got %s", out.Report.OverallRiskLevel)
	}
	if out.Report.ConfidenceScore != insight.FallbackConfidence {
		t.Fatalf("expected confidence %v, got %v", insight.FallbackConfidence, out.Report.ConfidenceScore)
	}
	if out.AnalysisID == 0 {
		t.Fatal("expected a persisted analysis id")
	}
	if out.Markdown == "" || out.Disclaimer == "" {
		t.Fatal("expected markdown report and disclaimer")
	}
}

func TestInsightsGenerativePath(t *testing.T) {
	caller := &fakeCaller{response: `{"overall_risk_level":"High","key_risks":["r"],"negotiation_levers":["l"],"recommended_actions_next_90_days":["a"],"confidence_score":0.7}`}
	h := newServerForTest(t, caller)

	rr := postJSON(t, h, "/v1/insights", validRequest())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Strategy insight.Strategy      `json:"strategy"`
		Report   insight.InsightReport `json:"report"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Strategy != insight.StrategyLLM {
		t.Fatalf("expected generative strategy, got %s", out.Strategy)
	}
	if out.Report.ConfidenceScore != 0.9 {
		t.Fatalf("expected boosted confidence 0.9, got %v", out.Report.ConfidenceScore)
	}
}

func TestInsightsCallerFailureDegrades(t *testing.T) {
	h := newServerForTest(t, &fakeCaller{err: errors.New("unavailable")})

	rr := postJSON(t, h, "/v1/insights", validRequest())
	if rr.Code != http.StatusOK {
		t.Fatalf("collaborator failure must still return 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Strategy insight.Strategy `json:"strategy"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Strategy != insight.StrategyRuleBased {
		t.Fatalf("expected rule-based strategy, got %s", out.Strategy)
	}
}

func TestInsightsValidationError(t *testing.T) {
	h := newServerForTest(t, nil)

	rr := postJSON(t, h, "/v1/insights", map[string]any{
		"category": "IT Hardware",
		"suppliers": []map[string]any{
			{"supplier_name": "", "annual_spend_usd": -5, "on_time_delivery_pct": 120, "contract_expiry_months": -1, "region": "NA"},
		},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		OK    bool `json:"ok"`
		Error struct {
			Code   string               `json:"code"`
			Fields []insight.FieldError `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.OK || out.Error.Code != insight.CodeValidation {
		t.Fatalf("unexpected error envelope: %s", rr.Body.String())
	}
	if len(out.Error.Fields) == 0 {
		t.Fatal("expected per-field constraint details")
	}
	for _, f := range out.Error.Fields {
		if !strings.HasPrefix(f.Field, "suppliers[0].") {
			t.Fatalf("field %q not scoped to the offending record", f.Field)
		}
	}
}

func TestInsightsMalformedJSON(t *testing.T) {
	h := newServerForTest(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/insights", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInsightsMethodNotAllowed(t *testing.T) {
	h := newServerForTest(t, nil)
	rr := get(t, h, "/v1/insights")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestAnalysesListAndGet(t *testing.T) {
	h := newServerForTest(t, nil)

	for i := 0; i < 2; i++ {
		if rr := postJSON(t, h, "/v1/insights", validRequest()); rr.Code != http.StatusOK {
			t.Fatalf("analyze: status=%d body=%s", rr.Code, rr.Body.String())
		}
	}

	rr := get(t, h, "/v1/analyses")
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var listOut struct {
		Analyses []struct {
			ID       int64  `json:"id"`
			Category string `json:"category"`
		} `json:"analyses"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listOut); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listOut.Analyses) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(listOut.Analyses))
	}

	id := listOut.Analyses[0].ID
	rr = get(t, h, "/v1/analyses/"+itoa(id))
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var getOut struct {
		Report insight.InsightReport `json:"report"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &getOut); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if getOut.Report.Category != "IT Hardware" {
		t.Fatalf("unexpected stored report: %+v", getOut.Report)
	}

	rr = get(t, h, "/v1/analyses/"+itoa(id)+"/report")
	if rr.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "Sourcing Insights: IT Hardware") {
		t.Fatal("expected rendered report body")
	}
}

func TestAnalysisNotFound(t *testing.T) {
	h := newServerForTest(t, nil)
	if rr := get(t, h, "/v1/analyses/999"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := get(t, h, "/v1/analyses/abc"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a non-numeric id, got %d", rr.Code)
	}
}

func TestInsightsSurvivesFailingStore(t *testing.T) {
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	store.Close()
	h := NewServer(insight.NewPipeline(nil), store)

	rr := postJSON(t, h, "/v1/insights", validRequest())
	if rr.Code != http.StatusOK {
		t.Fatalf("audit write failure must not cost the report, got %d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		OK         bool                  `json:"ok"`
		AnalysisID *int64                `json:"analysis_id"`
		Report     insight.InsightReport `json:"report"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.OK || out.Report.OverallRiskLevel != insight.RiskHigh {
		t.Fatalf("expected the completed report, got %s", rr.Body.String())
	}
	if out.AnalysisID != nil {
		t.Fatalf("expected no analysis_id when the store fails, got %d", *out.AnalysisID)
	}
}

func TestAnalysesDisabledWithoutStore(t *testing.T) {
	h := NewServer(insight.NewPipeline(nil), nil)
	if rr := get(t, h, "/v1/analyses"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := postJSON(t, h, "/v1/insights", validRequest()); rr.Code != http.StatusOK {
		t.Fatalf("analysis must still work without history, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthAndStatus(t *testing.T) {
	h := newServerForTest(t, nil)

	rr := get(t, h, "/v1/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rr.Code)
	}
	var health struct {
		Status        string `json:"status"`
		LLMConfigured bool   `json:"llm_configured"`
		History       bool   `json:"history"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.LLMConfigured || !health.History {
		t.Fatalf("unexpected health: %+v", health)
	}

	rr = get(t, h, "/v1/system/status")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", rr.Code)
	}
	var status struct {
		AnalysesStored *int64 `json:"analyses_stored"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.AnalysesStored == nil || *status.AnalysesStored != 0 {
		t.Fatalf("expected analyses_stored 0, got %v", status.AnalysesStored)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
