// Package pipeline runs one script-to-changelog conversion end to end.
package pipeline

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/changelog"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/ledger"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/output"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/review"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/script"
)

// Request names the inputs of one conversion.
type Request struct {
	ScriptPath string
	Version    string
	Author     string
	OutputDir  string
	Order      script.Order
	// DryRun skips writing and recording.
	DryRun bool
}

// Result describes a finished conversion.
type Result struct {
	Script     *script.Script
	Changelog  *changelog.Changelog
	XML        string
	OutputPath string
	Warnings   []review.Warning
	Written    bool
}

// Runner performs conversions. Ledger may be nil.
type Runner struct {
	Fs     afero.Fs
	Logger *zap.Logger
	Ledger ledger.Store
}

// NewRunner creates a runner on fs.
func NewRunner(fs afero.Fs, logger *zap.Logger, store ledger.Store) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Fs: fs, Logger: logger, Ledger: store}
}

// Build parses the script and synthesizes the changelog without writing it.
func (r *Runner) Build(req Request) (*Result, error) {
	log := r.Logger

	s, err := script.ParseFile(r.Fs, req.ScriptPath, script.ExtractOptions{Order: req.Order})
	if err != nil {
		return nil, err
	}
	log.Debug("Script parsed",
		zap.String("path", req.ScriptPath),
		zap.String("context", s.Context),
		zap.Int("operations", len(s.Operations)))

	gen := changelog.NewGenerator(req.Version, req.Author, s.Context)
	gen.Logger = log
	cl := gen.Generate(s.Operations)

	doc, err := cl.XML()
	if err != nil {
		return nil, err
	}

	return &Result{
		Script:     s,
		Changelog:  cl,
		XML:        doc,
		OutputPath: output.Path(req.ScriptPath, req.OutputDir),
		Warnings:   review.NewReviewer(false).Review(s.Operations),
	}, nil
}

// Run builds the changelog, writes it and records it in the ledger.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	res, err := r.Build(req)
	if err != nil {
		return nil, err
	}
	if req.DryRun {
		return res, nil
	}

	if err := output.NewWriter(r.Fs).Write(res.OutputPath, res.XML); err != nil {
		return nil, err
	}
	res.Written = true
	r.Logger.Debug("Changelog written",
		zap.String("path", res.OutputPath),
		zap.Int("changesets", len(res.Changelog.ChangeSets)),
		zap.Int("failures", res.Changelog.Failures()))

	if r.Ledger != nil {
		rec := &ledger.Record{
			ScriptPath: req.ScriptPath,
			OutputPath: res.OutputPath,
			Version:    req.Version,
			Base:       changelog.DeriveBase(req.Version),
			Author:     req.Author,
			Context:    res.Script.Context,
			ChangeSets: len(res.Changelog.ChangeSets),
			Failures:   res.Changelog.Failures(),
			Checksum:   output.Checksum(res.XML),
		}
		if err := r.Ledger.Record(ctx, rec); err != nil {
			return res, fmt.Errorf("changelog written but not recorded: %w", err)
		}
	}

	return res, nil
}
