package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m00s"},
		{61 * time.Second, "1m01s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
		{1499 * time.Millisecond, "0m01s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestProgressTracksBestAndWritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	pv := NewParamVector()
	p, err := newProgress(path, pv, 3)
	if err != nil {
		t.Fatal(err)
	}

	a := pv.DefaultVector()
	b := pv.Clamp(make([]float64, pv.Dim()))
	p.Record(a, -0.5, 0.1)
	p.Record(b, -0.9, 0.2)
	p.Record(a, -0.7, 0.0)

	best := p.Best()
	for i := range b {
		if best[i] != b[i] {
			t.Fatalf("best[%d] = %f, want %f", i, best[i], b[i])
		}
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header plus 3", len(rows))
	}
	if len(rows[0]) != 3+pv.Dim() {
		t.Errorf("header has %d columns, want %d", len(rows[0]), 3+pv.Dim())
	}
}
