package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"
)

// progress logs every evaluation to CSV and tracks the best parameters.
type progress struct {
	params   *ParamVector
	maxEvals int

	file   *os.File
	writer *csv.Writer

	evals       int
	bestFitness float64
	best        []float64
	start       time.Time
}

func newProgress(path string, params *ParamVector, maxEvals int) (*progress, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	p := &progress{
		params:      params,
		maxEvals:    maxEvals,
		file:        f,
		writer:      csv.NewWriter(f),
		bestFitness: math.Inf(1),
		start:       time.Now(),
	}

	header := []string{"eval", "fitness", "spread"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := p.writer.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

// Record logs one evaluation of the clamped values actually used.
func (p *progress) Record(values []float64, fitness, spread float64) {
	p.evals++
	if fitness < p.bestFitness {
		p.bestFitness = fitness
		p.best = values
	}

	row := []string{strconv.Itoa(p.evals), formatFloat(fitness), formatFloat(spread)}
	for _, v := range values {
		row = append(row, formatFloat(v))
	}
	if err := p.writer.Write(row); err != nil {
		slog.Error("failed to write log row", "error", err)
	}
	p.writer.Flush()

	elapsed := time.Since(p.start)
	remaining := time.Duration(p.maxEvals-p.evals) * (elapsed / time.Duration(p.evals))
	slog.Info("evaluation",
		"eval", p.evals,
		"of", p.maxEvals,
		"best_planet", -fitness,
		"spread", spread,
		"overall_best", -p.bestFitness,
		"elapsed", formatDuration(elapsed),
		"eta", formatDuration(remaining),
	)
}

// Best returns the best parameters recorded so far, or nil.
func (p *progress) Best() []float64 {
	return p.best
}

// Summary logs the final result.
func (p *progress) Summary(best []float64) {
	slog.Info("optimization complete",
		"evals", p.evals,
		"duration", formatDuration(time.Since(p.start)),
		"best_planet", -p.bestFitness,
	)
	for i, spec := range p.params.Specs {
		slog.Info("best parameter", "name", spec.Name, "path", spec.Path, "value", best[i])
	}
}

// Close flushes and closes the log file.
func (p *progress) Close() error {
	p.writer.Flush()
	return p.file.Close()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// formatDuration formats a duration as 1h02m03s, or 2m03s below an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
