package storage

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/experiment"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := sim.DefaultConfig()
	cfg.Steps = 20
	cfg.Angles = true
	rep, err := experiment.New(cfg, experiment.WithLogger(log.New(io.Discard))).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	id, err := store.Save(rep)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := store.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.A != 2 || meta.Reached != 20 || meta.FinalD != rep.FinalText {
		t.Errorf("unexpected metadata %+v", meta)
	}

	samples, err := store.LoadSamples(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 21 {
		t.Fatalf("loaded %d samples, want 21", len(samples))
	}
	if samples[20] != rep.Samples[20] {
		t.Errorf("last sample %+v, want %+v", samples[20], rep.Samples[20])
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("listed %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/missing").List()
	if err != nil || len(runs) != 0 {
		t.Errorf("got %v, %v", runs, err)
	}
}
