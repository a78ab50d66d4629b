package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Jingtingtina/pragact-router/internal/config"
	"github.com/Jingtingtina/pragact-router/internal/frontier"
	"github.com/Jingtingtina/pragact-router/internal/gate"
	"github.com/Jingtingtina/pragact-router/internal/record"
)

// #region main

func main() {
	cfgPath := flag.String("config", "", "path to config YAML")
	basePath := flag.String("base", "", "scored base JSONL")
	heavyPath := flag.String("heavy", "", "scored heavy JSONL")
	task := flag.String("task", "qa", "qa (f1) or instr (rougeL)")
	modelPath := flag.String("model", "", "gain model artifact; omit to sweep the margin gate only")
	lambdas := flag.String("lambdas", "", "comma-separated lambda values (overrides the grid)")
	lambdaLo := flag.Float64("lambda-lo", 0.0001, "lambda grid lower bound")
	lambdaHi := flag.Float64("lambda-hi", 0.01, "lambda grid upper bound")
	lambdaN := flag.Int("lambda-n", 9, "lambda grid size (log-spaced)")
	gainScales := flag.String("gain-scales", "", "comma-separated gain_scale values (defaults to gate.gain_scale)")
	taus := flag.String("taus", "", "comma-separated tau values (overrides the grid)")
	tauN := flag.Int("tau-n", 11, "tau grid size over [0, 1]")
	jsonOut := flag.Bool("json", false, "output points as JSON instead of a table")
	flag.Parse()

	if *basePath == "" || *heavyPath == "" {
		fmt.Fprintln(os.Stderr, "usage: sweep --base base.jsonl --heavy heavy.jsonl --task qa|instr [--model gain.yaml] [--lambdas 0.001,0.002] [--gain-scales 0.5,1] [--taus 0.1,0.25] [--json]")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.Gate.ModelFile = *modelPath
	}

	lambdaGrid, err := parseList(*lambdas)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lambdas: %v\n", err)
		os.Exit(2)
	}
	if lambdaGrid == nil {
		lambdaGrid = frontier.LambdaGrid(*lambdaLo, *lambdaHi, *lambdaN)
	}
	scaleGrid, err := parseList(*gainScales)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gain-scales: %v\n", err)
		os.Exit(2)
	}
	if scaleGrid == nil {
		scaleGrid = []float64{cfg.Gate.GainScale}
	}
	tauGrid, err := parseList(*taus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taus: %v\n", err)
		os.Exit(2)
	}
	if tauGrid == nil {
		tauGrid = frontier.LinearGrid(0, 1, *tauN)
	}

	if err := run(cfg, *basePath, *heavyPath, record.Task(*task), frontier.ParamGrid(lambdaGrid, scaleGrid), tauGrid, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

type sweepOutput struct {
	Base     frontier.Point   `json:"base"`
	Heavy    frontier.Point   `json:"heavy"`
	Learned  []frontier.Point `json:"learned,omitempty"`
	Margin   []frontier.Point `json:"margin"`
	Frontier []frontier.Point `json:"frontier"`
}

func run(cfg config.Config, basePath, heavyPath string, task record.Task, params []gate.Params, taus []float64, jsonOut bool) error {
	base, err := record.ReadFile(basePath)
	if err != nil {
		return err
	}
	heavy, err := record.ReadFile(heavyPath)
	if err != nil {
		return err
	}
	paired, err := record.Pair(base, heavy)
	if err != nil {
		return err
	}
	items, err := record.Items(paired, task)
	if err != nil {
		return err
	}

	var model gate.GainModel
	if cfg.Gate.ModelFile != "" {
		m, err := gate.LoadModel(cfg.Gate.ModelFile)
		if err != nil {
			return err
		}
		model = m
	}
	rep := frontier.NewReporter(model, cfg.FrontierConfig())
	ctx := context.Background()

	var out sweepOutput
	out.Base, out.Heavy = frontier.Baselines(items)
	if model != nil {
		if out.Learned, err = rep.SweepLearned(ctx, items, params); err != nil {
			return err
		}
	}
	if out.Margin, err = rep.SweepMargin(ctx, items, taus); err != nil {
		return err
	}
	all := append([]frontier.Point{out.Base, out.Heavy}, out.Learned...)
	all = append(all, out.Margin...)
	out.Frontier = frontier.Frontier(all)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Println(frontier.Table(strings.ToUpper(string(task)), out.Base, out.Heavy, out.Learned, out.Margin))
	fmt.Println("-- Frontier --")
	for _, p := range out.Frontier {
		fmt.Println(p)
	}
	return nil
}

func parseList(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// #endregion run
