package insight

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultLLMTimeout = 5 * time.Second

var tracer = otel.Tracer("github.com/procurely/sourcing-insights/internal/insight")

// Pipeline runs one analysis per call. Collaborator availability is an
// explicit constructor argument, not ambient state: a nil caller means the
// rule-based strategy is used unconditionally.
type Pipeline struct {
	caller  LLMCaller
	timeout time.Duration
}

func NewPipeline(caller LLMCaller) *Pipeline {
	return &Pipeline{caller: caller, timeout: DefaultLLMTimeout}
}

// WithLLMTimeout overrides the outbound call budget.
func (p *Pipeline) WithLLMTimeout(d time.Duration) *Pipeline {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// LLMConfigured reports whether a collaborator is wired in.
func (p *Pipeline) LLMConfigured() bool { return p.caller != nil }

// Analyze validates the request, derives metrics, classifies risk, and
// synthesizes the report. Only validation and metrics errors are returned;
// any collaborator failure degrades silently to the rule-based strategy,
// so once input passes validation the analysis always succeeds.
func (p *Pipeline) Analyze(ctx context.Context, req AnalysisRequest) (Result, error) {
	ctx, span := tracer.Start(ctx, "insight.Analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("insight.category", req.Category),
		attribute.Int("insight.suppliers", len(req.Suppliers)),
	)

	suppliers, err := ValidateRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return Result{}, err
	}
	metrics, err := ComputeMetrics(suppliers)
	if err != nil {
		span.SetStatus(codes.Error, "metrics failed")
		return Result{}, err
	}
	level, triggered := Classify(suppliers, metrics)
	span.SetAttributes(attribute.String("insight.risk_level", string(level)))

	res := Result{Metrics: metrics, Strategy: StrategyRuleBased}
	if p.caller != nil {
		report, llmErr := p.runLLM(ctx, req.Category, suppliers, metrics)
		if llmErr == nil {
			res.Report = report
			res.Strategy = StrategyLLM
		} else {
			// Never surfaced to the caller; logged for observability only.
			log.Printf("insight collaborator failed, using rule-based strategy: %v", llmErr)
		}
	}
	if res.Strategy == StrategyRuleBased {
		res.Report = RuleBasedReport(req.Category, suppliers, metrics, level, triggered)
	}

	res.ReportMarkdown = BuildMarkdown(suppliers, res, triggered)
	span.SetAttributes(attribute.String("insight.strategy", string(res.Strategy)))
	return res, nil
}

func (p *Pipeline) runLLM(ctx context.Context, category string, suppliers []SupplierRecord, metrics CategoryMetrics) (InsightReport, error) {
	ctx, span := tracer.Start(ctx, "insight.GenerateJSON")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.caller.GenerateJSON(ctx, SystemPrompt(), BuildUserPrompt(category, suppliers, metrics))
	if err != nil {
		span.SetStatus(codes.Error, "collaborator unavailable")
		return InsightReport{}, newCollaboratorError("collaborator call failed", err)
	}
	data, err := ParsePayload(raw)
	if err != nil {
		span.SetStatus(codes.Error, "unparseable response")
		return InsightReport{}, err
	}
	return BoostConfidence(Normalize(data, category)), nil
}
