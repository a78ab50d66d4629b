package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Jingtingtina/pragact-router/internal/record"
	"github.com/Jingtingtina/pragact-router/internal/scorer"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	command       TEXT NOT NULL,
	config_json   TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decision_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	item_id       TEXT NOT NULL,
	text_hash     TEXT,
	lang          TEXT,
	label         TEXT,
	source        TEXT,
	rule          TEXT,
	margin        REAL,
	probs         BLOB,
	actions_json  TEXT,
	gate          TEXT,
	chosen        TEXT,
	p_gain        REAL,
	cost          REAL,
	error         TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_decision_run ON decision_log(run_id);

CREATE TABLE IF NOT EXISTS prior_cache (
	template_hash TEXT PRIMARY KEY,
	prior         BLOB NOT NULL,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store
// Store persists decision provenance and calibration priors in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region runs
// StartRun registers a new run and returns it.
func (s *Store) StartRun(command, configJSON string) (Run, error) {
	run := Run{
		RunID:      uuid.New().String(),
		Command:    command,
		ConfigJSON: configJSON,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, command, config_json, created_at) VALUES (?, ?, ?, ?)`,
		run.RunID, run.Command, nullIfEmpty(run.ConfigJSON), run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("start run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, command, config_json, created_at FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var cfg sql.NullString
		var createdStr string
		if err := rows.Scan(&r.RunID, &r.Command, &cfg, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.ConfigJSON = cfg.String
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// #endregion runs

// #region decisions
// LogDecision writes one decision row.
func (s *Store) LogDecision(e DecisionEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	var actionsJSON string
	if len(e.Actions) > 0 {
		b, err := json.Marshal(e.Actions)
		if err != nil {
			return fmt.Errorf("marshal actions: %w", err)
		}
		actionsJSON = string(b)
	}
	var pGain interface{}
	if e.PGain != nil {
		pGain = *e.PGain
	}
	var probs interface{}
	if len(e.Probs) > 0 {
		probs = encodeFloats(e.Probs)
	}

	_, err := s.db.Exec(
		`INSERT INTO decision_log (run_id, item_id, text_hash, lang, label, source, rule, margin, probs,
		 actions_json, gate, chosen, p_gain, cost, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.ItemID, nullIfEmpty(e.TextHash), nullIfEmpty(e.Lang), nullIfEmpty(e.Label),
		nullIfEmpty(e.Source), nullIfEmpty(e.Rule), e.Margin, probs,
		nullIfEmpty(actionsJSON), nullIfEmpty(e.Gate), nullIfEmpty(e.Chosen), pGain, e.Cost,
		nullIfEmpty(e.Error), e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision %s: %w", e.ItemID, err)
	}
	return nil
}

// ListDecisions returns up to limit decisions, newest first. An empty runID
// lists across runs.
func (s *Store) ListDecisions(runID string, limit int) ([]DecisionEntry, error) {
	const cols = `SELECT id, run_id, item_id, text_hash, lang, label, source, rule, margin, probs,
		 actions_json, gate, chosen, p_gain, cost, error, created_at FROM decision_log`
	var (
		rows *sql.Rows
		err  error
	)
	if runID == "" {
		rows, err = s.db.Query(cols+` ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(cols+` WHERE run_id = ? ORDER BY id DESC LIMIT ?`, runID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var textHash, lang, label, source, rule, actionsJSON, gate, chosen, errStr sql.NullString
		var margin, cost, pGain sql.NullFloat64
		var probs []byte
		var createdStr string
		if err := rows.Scan(&e.ID, &e.RunID, &e.ItemID, &textHash, &lang, &label, &source, &rule,
			&margin, &probs, &actionsJSON, &gate, &chosen, &pGain, &cost, &errStr, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.TextHash, e.Lang, e.Label = textHash.String, lang.String, label.String
		e.Source, e.Rule, e.Gate, e.Chosen, e.Error = source.String, rule.String, gate.String, chosen.String, errStr.String
		e.Margin, e.Cost = margin.Float64, cost.Float64
		if pGain.Valid {
			p := pGain.Float64
			e.PGain = &p
		}
		if len(probs) > 0 {
			e.Probs = decodeFloats(probs)
		}
		if actionsJSON.Valid {
			if err := json.Unmarshal([]byte(actionsJSON.String), &e.Actions); err != nil {
				return nil, fmt.Errorf("unmarshal actions: %w", err)
			}
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// EntryFromRecord builds a decision row from a probed or gated record.
func EntryFromRecord(runID string, rec record.Record, gate string) DecisionEntry {
	e := DecisionEntry{
		RunID:    runID,
		ItemID:   rec.ID,
		TextHash: HashText(rec.Text),
		Lang:     string(rec.Lang),
		Label:    rec.ProbeLabel,
		Source:   rec.ProbeSource,
		Rule:     rec.ProbeRule,
		Actions:  rec.Actions,
		Chosen:   rec.Chosen,
		PGain:    rec.PGain,
		Cost:     rec.Cost,
		Error:    rec.Error,
	}
	if rec.Chosen != "" {
		e.Gate = gate
	}
	if rec.ProbeMargin != nil {
		e.Margin = *rec.ProbeMargin
	}
	if len(rec.ProbeProbs) > 0 {
		d := rec.Probs()
		e.Probs = d[:]
	}
	return e
}

// HashText returns a short content hash so the log never stores raw text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// #endregion decisions

// #region priors
var _ scorer.PriorStore = (*Store)(nil)

// LoadPrior returns the cached calibration prior for a template hash.
func (s *Store) LoadPrior(key string) ([]float64, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT prior FROM prior_cache WHERE template_hash = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load prior %s: %w", key, err)
	}
	return decodeFloats(blob), true, nil
}

// SavePrior stores a prior. An existing prior for the key is kept.
func (s *Store) SavePrior(key string, prior []float64) error {
	_, err := s.db.Exec(
		`INSERT INTO prior_cache (template_hash, prior, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(template_hash) DO NOTHING`,
		key, encodeFloats(prior), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save prior %s: %w", key, err)
	}
	return nil
}

// #endregion priors

// #region encoding
func encodeFloats(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeFloats(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion encoding
