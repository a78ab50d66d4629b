package main

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Jingtingtina/pragact-router/internal/record"
)

func ptr(f float64) *float64 { return &f }

func TestRouterReport(t *testing.T) {
	recs := []record.Record{
		{ID: "1", ProbeLabel: "question", ProbeMargin: ptr(0.4), ProbeSource: "ensemble",
			Actions: []string{"Prompt_StepByStep", "RAG_rerank"}},
		{ID: "2", ProbeLabel: "request", ProbeMargin: ptr(0.1), ProbeSource: "ensemble",
			Actions: []string{"Prompt_StepByStep"}},
		{ID: "3", ProbeLabel: "statement", ProbeMargin: ptr(1.0), ProbeSource: "fast_cue",
			Actions: []string{"Prompt_Concise", "RAG_definitional_boost"}},
		{ID: "4", Error: "timeout"},
	}
	out := routerReport(recs, 0.25)

	for _, want := range []string{
		"items=4 failed=1",
		"high >= tau: 1  | low < tau: 1  | total Q/Req: 2  | high rate: 0.500",
		"Prompt_StepByStep",
		"fast_cue",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRouterReport_NoQuestionsOmitsGating(t *testing.T) {
	recs := []record.Record{
		{ID: "1", ProbeLabel: "promise", ProbeMargin: ptr(1.0), ProbeSource: "fast_cue",
			Actions: []string{"Prompt_Concise"}},
	}
	if out := routerReport(recs, 0.25); strings.Contains(out, "Gating on Q/Request") {
		t.Errorf("unexpected gating section:\n%s", out)
	}
}

func TestSortedByCount(t *testing.T) {
	got := sortedByCount(map[string]int{"b": 2, "a": 2, "c": 5})
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sortedByCount = %v, want %v", got, want)
	}
}
