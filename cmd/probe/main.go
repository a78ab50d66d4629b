package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/config"
	"github.com/Jingtingtina/pragact-router/internal/llm"
	"github.com/Jingtingtina/pragact-router/internal/probe"
	"github.com/Jingtingtina/pragact-router/internal/record"
	"github.com/Jingtingtina/pragact-router/internal/router"
	"github.com/Jingtingtina/pragact-router/internal/scorer"
	"github.com/Jingtingtina/pragact-router/internal/store"
)

// #region main

func main() {
	cfgPath := flag.String("config", "", "path to config YAML")
	in := flag.String("in", "", "input JSONL with id, text[, lang]")
	out := flag.String("out", "", "output JSONL (default stdout)")
	text := flag.String("text", "", "probe a single utterance instead of a file")
	report := flag.Bool("report", false, "print a router effect report to stderr")
	cueOnly := flag.Bool("cue-only", false, "use the cue tables only; no model calls")
	noLog := flag.Bool("nolog", false, "do not write the decision log")
	flag.Parse()

	if (*in == "") == (*text == "") {
		fmt.Fprintln(os.Stderr, "usage: probe --in items.jsonl [--out scored.jsonl] [--config c.yaml] [--report] [--cue-only] [--nolog]")
		fmt.Fprintln(os.Stderr, "       probe --text \"Could you please explain the experiment?\"")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var recs []record.Record
	if *text != "" {
		recs = []record.Record{{ID: "cli", Text: *text}}
	} else if recs, err = record.ReadFile(*in); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, recs, *out, *report, *cueOnly, *noLog))
}

// #endregion main

// #region run

func run(cfg config.Config, recs []record.Record, outPath string, report, cueOnly, noLog bool) int {
	var st *store.Store
	var priors scorer.PriorStore
	if !noLog {
		s, err := store.NewStore(cfg.Store.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open db: %v\n", err)
			return 1
		}
		defer s.Close()
		st, priors = s, s
	}

	var p *probe.Probe
	var client llm.Client
	if cueOnly {
		pc := cfg.ProbeConfig()
		pc.FastCues = true
		p = probe.NewProbe(nil, pc)
	} else {
		templates, err := cfg.Templates()
		if err != nil {
			fmt.Fprintf(os.Stderr, "templates: %v\n", err)
			return 1
		}
		sc, err := scorer.NewScorer(templates, cfg.ScorerConfig(), priors)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scorer: %v\n", err)
			return 1
		}
		c, closeClient, err := cfg.NewClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "client: %v\n", err)
			return 1
		}
		defer closeClient()
		client = c
		p = probe.NewProbe(sc, cfg.ProbeConfig())
	}
	rt := router.NewRouter(cfg.RouterConfig())

	scoreAll(context.Background(), cfg, p, rt, client, recs)

	if err := writeRecords(outPath, recs); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if st != nil {
		cfgJSON, _ := json.Marshal(cfg.Redacted())
		r, err := st.StartRun("probe", string(cfgJSON))
		if err != nil {
			fmt.Fprintf(os.Stderr, "start run: %v\n", err)
			return 1
		}
		for _, rec := range recs {
			if err := st.LogDecision(store.EntryFromRecord(r.RunID, rec, "")); err != nil {
				log.Printf("[PROBE] %v", err)
			}
		}
		log.Printf("[PROBE] logged %d decisions under run %s", len(recs), r.RunID)
	}

	if report {
		fmt.Fprint(os.Stderr, routerReport(recs, cfg.RouterConfig().Threshold))
	}
	return 0
}

// scoreAll probes every record concurrently. A failed item is marked and
// does not cancel the batch.
func scoreAll(ctx context.Context, cfg config.Config, p *probe.Probe, rt *router.Router, client llm.Client, recs []record.Record) {
	var g errgroup.Group
	if cfg.LLM.Concurrency > 0 {
		g.SetLimit(cfg.LLM.Concurrency)
	}
	for i := range recs {
		g.Go(func() error {
			reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
			defer cancel()
			out, err := p.Score(reqCtx, recs[i].Utterance(), client)
			if err != nil {
				log.Printf("[PROBE] item %s: %v", recs[i].ID, err)
				recs[i].SetError(err)
				return nil
			}
			actions := rt.Plan(router.Context{
				Label:  out.Label.Key(),
				Margin: out.Margin,
				Source: out.Source,
			})
			recs[i].SetOutcome(out, actions)
			return nil
		})
	}
	g.Wait()
}

func writeRecords(path string, recs []record.Record) error {
	if path != "" {
		return record.WriteFile(path, recs)
	}
	bw := bufio.NewWriter(os.Stdout)
	w := record.NewWriter(bw)
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// #endregion run

// #region report

// routerReport counts planned actions and, for question/request items, how
// many cleared the rerank threshold.
func routerReport(recs []record.Record, threshold float64) string {
	actionCounts := map[string]int{}
	sourceCounts := map[string]int{}
	var high, low, failed int
	for _, r := range recs {
		if r.Error != "" {
			failed++
			continue
		}
		sourceCounts[r.ProbeSource]++
		for _, a := range r.Actions {
			actionCounts[a]++
		}
		l, err := act.Parse(r.ProbeLabel)
		if err != nil || !l.IsQuestionOrRequest() {
			continue
		}
		if r.Margin() >= threshold {
			high++
		} else {
			low++
		}
	}

	var b []byte
	b = fmt.Appendf(b, "\n=== Router effect report ===\n")
	b = fmt.Appendf(b, "items=%d failed=%d\n", len(recs), failed)
	b = fmt.Appendf(b, "\n-- Probe sources --\n")
	for _, k := range sortedByCount(sourceCounts) {
		b = fmt.Appendf(b, "%-26s %d\n", k, sourceCounts[k])
	}
	b = fmt.Appendf(b, "\n-- Router actions (counts) --\n")
	for _, k := range sortedByCount(actionCounts) {
		b = fmt.Appendf(b, "%-26s %d\n", k, actionCounts[k])
	}
	if tot := high + low; tot > 0 {
		b = fmt.Appendf(b, "\n-- Gating on Q/Request --\n")
		b = fmt.Appendf(b, "high >= tau: %d  | low < tau: %d  | total Q/Req: %d  | high rate: %.3f\n",
			high, low, tot, float64(high)/float64(tot))
	}
	return string(b)
}

func sortedByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// #endregion report
