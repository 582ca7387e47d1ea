//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline orders the transformation stages and runs them
// against a warehouse. One pipeline run is the only writer for its
// batch; stages read committed snapshots only.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-lakehouse/internal/logging"
	"github.com/pgEdge/pgedge-lakehouse/internal/source"
	"github.com/pgEdge/pgedge-lakehouse/internal/warehouse"
)

// Deps carries everything a stage needs to run.
type Deps struct {
	Source source.Source
	Store  warehouse.Store

	BronzeSchema string
	SilverSchema string
	SourceSystem string
	BatchID      string

	AsOf                  time.Time
	MaxUnresolvedFraction float64
	Retries               int
	Staleness             time.Duration

	// Now stamps ingestion and refinement times. Defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Stage is one step of a pipeline. Critical stages stop the critical
// path on failure; non-critical stages run regardless so the final
// validation is always reported.
type Stage struct {
	Name        string
	Description string
	Critical    bool
	Run         func(ctx context.Context, deps Deps) error
}

// StageStatus is the outcome of one stage in a run.
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// StageResult records one stage's outcome.
type StageResult struct {
	Name     string
	Status   StageStatus
	Duration time.Duration
	Err      error
}

// Summary is the outcome of a whole pipeline run.
type Summary struct {
	Pipeline string
	BatchID  string
	Started  time.Time
	Duration time.Duration
	Stages   []StageResult
}

// Failed returns the names of failed stages.
func (s *Summary) Failed() []string {
	var names []string
	for _, st := range s.Stages {
		if st.Status == StageFailed {
			names = append(names, st.Name)
		}
	}
	return names
}

// Pipeline is an ordered list of stages.
type Pipeline struct {
	Name        string
	Description string
	Stages      []Stage
}

// Execute runs the stages in order. A critical failure skips the
// remaining critical stages; non-critical stages still run. The
// returned error joins the critical failures, if any.
func (p *Pipeline) Execute(ctx context.Context, deps Deps) (*Summary, error) {
	wallStart := time.Now()
	summary := &Summary{
		Pipeline: p.Name,
		BatchID:  deps.BatchID,
		Started:  deps.now().UTC(),
	}

	var firstErr error
	criticalFailed := false

	for _, stage := range p.Stages {
		if criticalFailed && stage.Critical {
			summary.Stages = append(summary.Stages, StageResult{
				Name:   stage.Name,
				Status: StageSkipped,
			})
			logging.Warn().
				Str("pipeline", p.Name).
				Str("stage", stage.Name).
				Msg("Stage skipped after earlier failure")
			continue
		}

		logging.Info().
			Str("pipeline", p.Name).
			Str("stage", stage.Name).
			Str("batch_id", deps.BatchID).
			Msg("Stage starting")

		stageStart := time.Now()
		err := stage.Run(ctx, deps)
		elapsed := time.Since(stageStart)

		result := StageResult{Name: stage.Name, Duration: elapsed}
		if err != nil {
			result.Status = StageFailed
			result.Err = err
			if stage.Critical {
				criticalFailed = true
				if firstErr == nil {
					firstErr = fmt.Errorf("stage %s: %w", stage.Name, err)
				}
			}
			logging.Error().
				Err(err).
				Str("pipeline", p.Name).
				Str("stage", stage.Name).
				Dur("elapsed", elapsed).
				Msg("Stage failed")
		} else {
			result.Status = StageCompleted
			logging.Info().
				Str("pipeline", p.Name).
				Str("stage", stage.Name).
				Dur("elapsed", elapsed).
				Msg("Stage completed")
		}
		summary.Stages = append(summary.Stages, result)
	}

	summary.Duration = time.Since(wallStart)
	return summary, firstErr
}
