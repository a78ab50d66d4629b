package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/config"
	"github.com/Jingtingtina/pragact-router/internal/probe"
	"github.com/Jingtingtina/pragact-router/internal/record"
	"github.com/Jingtingtina/pragact-router/internal/scorer"
	"github.com/Jingtingtina/pragact-router/internal/store"
)

// #region main

func main() {
	cfgPath := flag.String("config", "", "path to config YAML")
	dbPath := flag.String("db", "", "path to decision log (defaults to store.path)")
	last := flag.Int("last", 20, "show N most recent decisions or runs")
	runID := flag.String("run", "", "limit decisions to one run")
	runs := flag.Bool("runs", false, "list runs instead of decisions")
	evalPath := flag.String("eval", "", "gold JSONL (id, text, gold) to evaluate the probe against")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *last <= 0 {
		fmt.Fprintln(os.Stderr, "usage: inspect [--db pragact.db] [--last N] [--run id] [--runs] [--json]")
		fmt.Fprintln(os.Stderr, "       inspect --eval gold.jsonl [--config c.yaml]")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	if *evalPath != "" {
		if err := runEvalMode(cfg, *evalPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	st, err := store.NewStore(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *runs {
		err = runRunsMode(st, *last, *jsonOut)
	} else {
		err = runListMode(st, *runID, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ItemID  string   `json:"item_id"`
	Label   string   `json:"label,omitempty"`
	Source  string   `json:"source,omitempty"`
	Margin  float64  `json:"margin"`
	Actions []string `json:"actions,omitempty"`
	Gate    string   `json:"gate,omitempty"`
	Chosen  string   `json:"chosen,omitempty"`
	PGain   *float64 `json:"p_gain,omitempty"`
	Cost    float64  `json:"cost"`
	Error   string   `json:"error,omitempty"`
	Time    string   `json:"created_at"`
}

func runListMode(st *store.Store, runID string, last int, jsonOut bool) error {
	entries, err := st.ListDecisions(runID, last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found")
		return nil
	}

	// Store returns newest first; print chronologically.
	rows := make([]listRow, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = listRow{
			ItemID:  e.ItemID,
			Label:   e.Label,
			Source:  e.Source,
			Margin:  e.Margin,
			Actions: e.Actions,
			Gate:    e.Gate,
			Chosen:  e.Chosen,
			PGain:   e.PGain,
			Cost:    e.Cost,
			Error:   e.Error,
			Time:    e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-12s  %-12s  %-8s  %7s  %-7s  %-6s  %6s  %s\n",
		"Item", "Label", "Source", "Margin", "Gate", "Chosen", "P", "Actions")
	fmt.Printf("%-12s+-%-12s+-%-8s+-%7s+-%-7s+-%-6s+-%6s+-%s\n",
		"------------", "------------", "--------", "-------", "-------", "------", "------", "--------------------")
	for _, r := range rows {
		p := "-"
		if r.PGain != nil {
			p = fmt.Sprintf("%.3f", *r.PGain)
		}
		actions := strings.Join(r.Actions, ",")
		if r.Error != "" {
			actions = "error: " + r.Error
		}
		fmt.Printf("%-12s  %-12s  %-8s  %7.3f  %-7s  %-6s  %6s  %s\n",
			shortID(r.ItemID), r.Label, r.Source, r.Margin, dash(r.Gate), dash(r.Chosen), p, actions)
	}
	return nil
}

func runRunsMode(st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(runs)
	}
	for _, r := range runs {
		fmt.Printf("%s  %-12s  %s\n", r.RunID, r.Command, r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion list-mode

// #region eval-mode

func runEvalMode(cfg config.Config, path string) error {
	recs, err := record.ReadFile(path)
	if err != nil {
		return err
	}
	examples := make([]probe.Example, 0, len(recs))
	for _, r := range recs {
		gold, err := act.Parse(r.Gold)
		if err != nil {
			return fmt.Errorf("item %s gold: %w", r.ID, err)
		}
		examples = append(examples, probe.Example{Text: r.Text, Lang: r.Lang, Gold: gold})
	}

	templates, err := cfg.Templates()
	if err != nil {
		return err
	}
	sc, err := scorer.NewScorer(templates, cfg.ScorerConfig(), nil)
	if err != nil {
		return err
	}
	client, closeClient, err := cfg.NewClient()
	if err != nil {
		return err
	}
	defer closeClient()

	rep := probe.NewProbe(sc, cfg.ProbeConfig()).Evaluate(context.Background(), examples, client)
	fmt.Printf("FAST_CUES=%v | data=%s\n\n", cfg.Probe.FastCues, path)
	fmt.Print(rep.Format())
	return nil
}

// #endregion eval-mode

// #region helpers

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion helpers
