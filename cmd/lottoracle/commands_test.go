package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rewired-gh/lottoracle/internal/archive"
	"github.com/rewired-gh/lottoracle/internal/models"
	"github.com/rewired-gh/lottoracle/internal/zhcw"
)

func TestFormatPrediction(t *testing.T) {
	global := models.Prediction{
		Method:   models.MethodGlobalFrequency,
		RedBalls: []int{1, 5, 14, 22, 28, 33},
		BlueBall: 4,
	}
	if got, want := formatPrediction(global), "[global-frequency] reds 01 05 14 22 28 33 blue 04"; got != want {
		t.Errorf("formatPrediction = %q, want %q", got, want)
	}

	recent := models.Prediction{
		Method:       models.MethodRecencyWeighted,
		RedBalls:     []int{2, 8, 13, 21, 27, 32},
		BlueBall:     11,
		RecentWindow: 160,
	}
	if got, want := formatPrediction(recent), "[recency-weighted] reds 02 08 13 21 27 32 blue 11 (window 160)"; got != want {
		t.Errorf("formatPrediction = %q, want %q", got, want)
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	// No configs/config.yaml exists relative to the test binary, so the
	// default path silently falls back to built-in defaults.
	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Game.RedHi != 33 {
		t.Errorf("red_hi = %d, want default 33", cfg.Game.RedHi)
	}
}

func TestIngestLatest(t *testing.T) {
	const payload = `cb({"data":[
{"issue":"2024102","frontWinningNum":"03 07 12 18 25 30","backWinningNum":"09","openTime":"2024-09-03"},
{"issue":"2024101","frontWinningNum":"02 05 11 19 26 33","backWinningNum":"04","openTime":"2024-09-01"}
]});`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := zhcw.NewClient(server.URL, models.DefaultGame(), 5*time.Second, 1, time.Millisecond)
	arc, err := archive.Open(":memory:", models.DefaultGame())
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer arc.Close()

	added, err := ingestLatest(context.Background(), client, arc, 2)
	if err != nil {
		t.Fatalf("ingestLatest failed: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	// A second pass over the same feed adds nothing.
	added, err = ingestLatest(context.Background(), client, arc, 2)
	if err != nil {
		t.Fatalf("ingestLatest failed: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}

	if latest, ok := arc.LatestIssue(); !ok || latest != "2024102" {
		t.Errorf("LatestIssue = %q, %v, want 2024102, true", latest, ok)
	}
}
