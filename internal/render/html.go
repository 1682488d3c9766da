// Package render turns a finished analysis into shareable documents:
// standalone HTML for the browser and PDF via headless Chromium.
package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/procurely/sourcing-insights/internal/insight"
)

const styleCSS = `
body{font-family:-apple-system,"Segoe UI",Roboto,"Helvetica Neue",Arial,sans-serif;color:#1c1917;line-height:1.55;margin:0;background:#fff;}
.report-wrap{max-width:880px;margin:0 auto;padding:1.2rem 1.4rem;}
.report-header{display:flex;justify-content:space-between;align-items:flex-start;gap:1rem;border-bottom:2px solid #e7e5e4;padding-bottom:0.8rem;margin-bottom:1rem;}
.report-meta{font-size:0.85rem;color:#44403c;}
.report-meta strong{color:#1c1917;}
.risk-badge{display:inline-block;padding:0.2rem 0.65rem;border-radius:999px;font-size:0.8rem;font-weight:700;white-space:nowrap;}
.risk-low{background:#dcfce7;color:#14532d;border:1px solid #86efac;}
.risk-medium{background:#fef3c7;color:#78350f;border:1px solid #fcd34d;}
.risk-high{background:#fee2e2;color:#7f1d1d;border:1px solid #fca5a5;}
.report-html h1{font-size:1.45rem;margin-top:0;}
.report-html h2{font-size:1.1rem;border-bottom:1px solid #e7e5e4;padding-bottom:0.25rem;margin-top:1.4rem;}
.report-html table{width:100%;border-collapse:collapse;font-size:0.82rem;}
.report-html th,.report-html td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;text-align:left;vertical-align:top;}
.report-html thead th{background:#f1f5f9;font-weight:700;}
.report-html code{background:#f5f5f4;padding:0.08rem 0.3rem;border-radius:4px;font-size:0.85em;}
@media print{@page{size:auto;margin:12mm;}.report-wrap{max-width:none;padding:0;}}
`

// BuildHTML converts the analysis markdown into a standalone HTML
// document with embedded styling.
func BuildHTML(res insight.Result) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(res.ReportMarkdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	return "<!doctype html><html><head><meta charset='utf-8'><title>" +
		html.EscapeString("Sourcing Insights: "+res.Report.Category) + "</title>" +
		"<style>" + styleCSS + "</style></head><body>" +
		"<div class='report-wrap'><div class='report-header'>" +
		"<div class='report-meta'>" + buildMetaHTML(res) + "</div>" +
		riskBadge(res.Report.OverallRiskLevel) +
		"</div><div class='report-html'>" + content.String() + "</div></div>" +
		"</body></html>", nil
}

func buildMetaHTML(res insight.Result) string {
	var out strings.Builder
	out.WriteString("<div><strong>Category:</strong> " + html.EscapeString(res.Report.Category) + "</div>")
	out.WriteString(fmt.Sprintf("<div><strong>Strategy:</strong> %s &middot; <strong>Confidence:</strong> %.2f</div>",
		html.EscapeString(string(res.Strategy)), res.Report.ConfidenceScore))
	out.WriteString("<div><strong>Date:</strong> " + html.EscapeString(time.Now().Format("January 2, 2006")) + "</div>")
	return out.String()
}

func riskBadge(level insight.RiskLevel) string {
	class := "risk-medium"
	switch level {
	case insight.RiskLow:
		class = "risk-low"
	case insight.RiskHigh:
		class = "risk-high"
	}
	return "<span class='risk-badge " + class + "'>" + html.EscapeString(string(level)) + " risk</span>"
}
