package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Jingtingtina/pragact-router/internal/config"
	"github.com/Jingtingtina/pragact-router/internal/frontier"
	"github.com/Jingtingtina/pragact-router/internal/gate"
	"github.com/Jingtingtina/pragact-router/internal/record"
	"github.com/Jingtingtina/pragact-router/internal/store"
)

// #region main

func main() {
	cfgPath := flag.String("config", "", "path to config YAML")
	basePath := flag.String("base", "", "scored base JSONL (probe fields + score_base)")
	heavyPath := flag.String("heavy", "", "scored heavy JSONL (score_heavy + cost_heavy)")
	task := flag.String("task", "qa", "qa (f1) or instr (rougeL)")
	mode := flag.String("mode", "voc", "voc (learned gain model) or margin")
	modelPath := flag.String("model", "", "gain model artifact (YAML/JSON); defaults to gate.model_file")
	lambda := flag.Float64("lambda", -1, "override gate.lambda")
	gainScale := flag.Float64("gain-scale", -1, "override gate.gain_scale")
	tau := flag.Float64("tau", -1, "override gate.tau (margin mode)")
	out := flag.String("out", "", "gated JSONL output")
	emitTrain := flag.String("emit-train", "", "write gain training rows to this path and exit")
	delta := flag.Float64("delta", 0, "gain label threshold on heavy-base score delta")
	noLog := flag.Bool("nolog", false, "do not write the decision log")
	flag.Parse()

	if *basePath == "" || *heavyPath == "" || (*out == "" && *emitTrain == "") {
		fmt.Fprintln(os.Stderr, "usage: gate --base base.jsonl --heavy heavy.jsonl --task qa|instr --out gated.jsonl [--mode voc|margin] [--model gain.yaml] [--lambda L] [--gain-scale S] [--tau T]")
		fmt.Fprintln(os.Stderr, "       gate --base base.jsonl --heavy heavy.jsonl --task qa|instr --emit-train train.jsonl [--delta D]")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *lambda >= 0 {
		cfg.Gate.Lambda = *lambda
	}
	if *gainScale >= 0 {
		cfg.Gate.GainScale = *gainScale
	}
	if *tau >= 0 {
		cfg.Gate.Tau = *tau
	}
	if *modelPath != "" {
		cfg.Gate.ModelFile = *modelPath
	}

	recs, err := loadPaired(*basePath, *heavyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	t := record.Task(*task)
	if *emitTrain != "" {
		if err := writeTrain(*emitTrain, recs, t, *delta); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runGate(cfg, recs, t, *mode, *out, *noLog); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region pipeline

func loadPaired(basePath, heavyPath string) ([]record.Record, error) {
	base, err := record.ReadFile(basePath)
	if err != nil {
		return nil, err
	}
	heavy, err := record.ReadFile(heavyPath)
	if err != nil {
		return nil, err
	}
	return record.Pair(base, heavy)
}

func writeTrain(path string, recs []record.Record, task record.Task, delta float64) error {
	rows := make([]record.Record, 0, len(recs))
	positives := 0
	for _, r := range recs {
		row, err := r.TrainRow(task, delta)
		if err != nil {
			return fmt.Errorf("train row %s: %w", r.ID, err)
		}
		positives += *row.Gain
		rows = append(rows, row)
	}
	if err := record.WriteFile(path, rows); err != nil {
		return err
	}
	log.Printf("[GATE] wrote %d training rows (%d positive) to %s", len(rows), positives, path)
	return nil
}

func runGate(cfg config.Config, recs []record.Record, task record.Task, mode, outPath string, noLog bool) error {
	items, err := record.Items(recs, task)
	if err != nil {
		return err
	}

	var point frontier.Point
	switch mode {
	case "voc":
		if cfg.Gate.ModelFile == "" {
			return errors.New("voc mode needs --model or gate.model_file")
		}
		model, err := gate.LoadModel(cfg.Gate.ModelFile)
		if err != nil {
			return err
		}
		g, err := gate.NewGate(model)
		if err != nil {
			return err
		}
		params := cfg.GateParams()
		for i := range recs {
			if recs[i].Error != "" {
				recs[i].Chosen = string(gate.ChoiceBase)
				continue
			}
			recs[i].SetDecision(g.Decide(items[i].Features, items[i].Cost, params), true)
		}
		points, err := frontier.NewReporter(model, cfg.FrontierConfig()).
			SweepLearned(context.Background(), items, []gate.Params{params})
		if err != nil {
			return err
		}
		point = points[0]
	case "margin":
		mg := gate.NewMarginGate(cfg.Gate.Tau)
		for i := range recs {
			if recs[i].Error != "" {
				recs[i].Chosen = string(gate.ChoiceBase)
				continue
			}
			recs[i].SetDecision(mg.Decide(items[i].Margin), false)
		}
		points, err := frontier.NewReporter(nil, cfg.FrontierConfig()).
			SweepMargin(context.Background(), items, []float64{cfg.Gate.Tau})
		if err != nil {
			return err
		}
		point = points[0]
	default:
		return fmt.Errorf("unknown mode %q (want voc or margin)", mode)
	}

	if err := record.WriteFile(outPath, recs); err != nil {
		return err
	}
	fmt.Println(point)

	if noLog {
		return nil
	}
	st, err := store.NewStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()
	cfgJSON, _ := json.Marshal(cfg.Redacted())
	run, err := st.StartRun("gate:"+mode, string(cfgJSON))
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := st.LogDecision(store.EntryFromRecord(run.RunID, r, mode)); err != nil {
			log.Printf("[GATE] %v", err)
		}
	}
	log.Printf("[GATE] logged %d decisions under run %s", len(recs), run.RunID)
	return nil
}

// #endregion pipeline
