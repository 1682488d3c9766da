// Package history persists completed analyses to SQLite so past reports
// can be listed and re-rendered without re-running the pipeline.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/procurely/sourcing-insights/internal/insight"
)

// Record is one persisted analysis. ReportJSON holds the structured
// report; ReportMarkdown the rendered document from the same run.
type Record struct {
	ID              int64
	Category        string
	RiskLevel       insight.RiskLevel
	Strategy        insight.Strategy
	ConfidenceScore float64
	SupplierCount   int
	ReportJSON      string
	ReportMarkdown  string
	CreatedAt       time.Time
}

// Report deserializes the structured report stored with the record.
func (r Record) Report() (insight.InsightReport, error) {
	var rep insight.InsightReport
	if err := json.Unmarshal([]byte(r.ReportJSON), &rep); err != nil {
		return insight.InsightReport{}, fmt.Errorf("decode stored report %d: %w", r.ID, err)
	}
	return rep, nil
}

type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	category        TEXT NOT NULL,
	risk_level      TEXT NOT NULL,
	strategy        TEXT NOT NULL,
	confidence      REAL NOT NULL,
	supplier_count  INTEGER NOT NULL,
	report_json     TEXT NOT NULL,
	report_markdown TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at);
`

// Open creates or opens the analysis database. Pass ":memory:" for an
// ephemeral store.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one completed analysis and returns the stored record.
func (s *Store) Save(res insight.Result) (Record, error) {
	reportJSON, err := json.Marshal(res.Report)
	if err != nil {
		return Record{}, fmt.Errorf("encode report: %w", err)
	}
	now := time.Now().UTC()

	out, err := s.db.Exec(`INSERT INTO analyses (category, risk_level, strategy, confidence, supplier_count, report_json, report_markdown, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Report.Category,
		string(res.Report.OverallRiskLevel),
		string(res.Strategy),
		res.Report.ConfidenceScore,
		res.Metrics.SupplierCount,
		string(reportJSON),
		res.ReportMarkdown,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert analysis: %w", err)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("insert analysis: %w", err)
	}

	return Record{
		ID:              id,
		Category:        res.Report.Category,
		RiskLevel:       res.Report.OverallRiskLevel,
		Strategy:        res.Strategy,
		ConfidenceScore: res.Report.ConfidenceScore,
		SupplierCount:   res.Metrics.SupplierCount,
		ReportJSON:      string(reportJSON),
		ReportMarkdown:  res.ReportMarkdown,
		CreatedAt:       now,
	}, nil
}

// List returns the most recent analyses, newest first, without report
// bodies. Limit <= 0 defaults to 50.
func (s *Store) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id, category, risk_level, strategy, confidence, supplier_count, created_at
		FROM analyses ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var riskLevel, strategy, createdAt string
		if err := rows.Scan(&r.ID, &r.Category, &riskLevel, &strategy, &r.ConfidenceScore, &r.SupplierCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		r.RiskLevel = insight.RiskLevel(riskLevel)
		r.Strategy = insight.Strategy(strategy)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns one analysis with its full report, or (Record{}, false, nil)
// when no row has that id.
func (s *Store) Get(id int64) (Record, bool, error) {
	var r Record
	var riskLevel, strategy, createdAt string
	err := s.db.QueryRow(`SELECT id, category, risk_level, strategy, confidence, supplier_count, report_json, report_markdown, created_at
		FROM analyses WHERE id = ?`, id).
		Scan(&r.ID, &r.Category, &riskLevel, &strategy, &r.ConfidenceScore, &r.SupplierCount, &r.ReportJSON, &r.ReportMarkdown, &createdAt)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get analysis %d: %w", id, err)
	}
	r.RiskLevel = insight.RiskLevel(riskLevel)
	r.Strategy = insight.Strategy(strategy)
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return r, true, nil
}

// Count returns the number of stored analyses.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}
