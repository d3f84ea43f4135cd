package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type Options struct {
	R1            string
	R2            string
	Barcodes      string
	QualityConfig string

	OutDir     string
	RenameDir  string
	SkipRename bool
	Gzip       bool
	Strict     bool
	MinRecords int

	// Progress receives the matching progress bar when non-nil.
	Progress io.Writer
	// Summary receives the end-of-run report when non-nil.
	Summary io.Writer
}

// Pipeline demultiplexes one pair of FASTQ files for a single sample.
type Pipeline struct {
	opts    Options
	quality QualityConfig
	log     logrus.FieldLogger
}

func NewPipeline(opts Options, quality QualityConfig, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		opts:    opts,
		quality: quality,
		log:     log.WithField("sample", quality.Sample),
	}
}

// OutputPaths returns the forward and reverse trimmed FASTQ paths.
func (p *Pipeline) OutputPaths() (string, string) {
	return outputPaths(p.opts.OutDir, p.quality.Sample, p.opts.Gzip)
}

// Run renames, trims and validates. The summary is returned even when
// validation fails.
func (p *Pipeline) Run() (RunSummary, error) {
	p.log.WithFields(logrus.Fields{
		"r1":        p.opts.R1,
		"r2":        p.opts.R2,
		"barcodes":  p.opts.Barcodes,
		"threshold": p.quality.MaxMismatch,
	}).Info("starting data pre-processing")

	r1, r2 := p.opts.R1, p.opts.R2
	if p.opts.SkipRename {
		p.log.Info(">> [1/4] skipping rename of R1 reads")
		p.log.Info(">> [2/4] skipping rename of R2 reads")
	} else {
		if renamedPath(p.opts.RenameDir, r1) == renamedPath(p.opts.RenameDir, r2) {
			return RunSummary{}, fmt.Errorf("%s and %s: %w", r1, r2, ErrRenameCollision)
		}
		var err error
		p.log.Info(">> [1/4] renaming R1 reads")
		if r1, err = p.rename(p.opts.R1); err != nil {
			return RunSummary{}, err
		}
		p.log.Info(">> [2/4] renaming R2 reads")
		if r2, err = p.rename(p.opts.R2); err != nil {
			return RunSummary{}, err
		}
	}

	p.log.Info(">> [3/4] barcode trimming and demultiplexing")
	summary, err := p.trim(r1, r2)
	if err != nil {
		return summary, fmt.Errorf("trim: %w", err)
	}
	if p.opts.Summary != nil {
		printSummary(p.opts.Summary, summary)
	}

	p.log.Info(">> [4/4] validating output")
	fwd, _ := p.OutputPaths()
	if _, err := validateOutput(fwd, p.quality.Sample, p.opts.MinRecords, p.log); err != nil {
		return summary, fmt.Errorf("validate: %w", err)
	}

	p.log.WithField("outdir", p.opts.OutDir).Info("rename and trim completed")
	return summary, nil
}

func (p *Pipeline) rename(input string) (string, error) {
	output := renamedPath(p.opts.RenameDir, input)
	if _, err := renameFastq(input, output, p.opts.Strict, p.log); err != nil {
		return "", fmt.Errorf("rename %s: %w", input, err)
	}
	return output, nil
}

func (p *Pipeline) trim(r1Path, r2Path string) (RunSummary, error) {
	summary := RunSummary{Sample: p.quality.Sample}

	catalog, _, err := loadCatalog(p.opts.Barcodes, p.quality.Sample, p.log)
	if err != nil {
		return summary, err
	}

	loadOpts := LoadOptions{Strict: p.opts.Strict}
	r1, r1Stats, err := loadFastq(r1Path, loadOpts, p.log)
	if err != nil {
		return summary, err
	}
	r2, r2Stats, err := loadFastq(r2Path, loadOpts, p.log)
	if err != nil {
		return summary, err
	}
	pairs, unpaired := pairReads(r1, r2)
	summary.Paired = len(pairs)
	p.log.WithFields(logrus.Fields{
		"stage":      "load",
		"pairs":      len(pairs),
		"unpaired":   unpaired.Total(),
		"r1_skipped": r1Stats.Skipped.String(),
		"r2_skipped": r2Stats.Skipped.String(),
	}).Info("loaded paired reads")

	table, unassigned := assignAll(catalog, pairs, AssignOptions{Progress: p.opts.Progress}, p.log)
	summary.Assigned = len(table)
	summary.Unassigned = unassigned.Total()

	err = withSampleOutputs(p.opts.OutDir, p.quality.Sample, p.opts.Gzip, func(out *SampleOutputs) error {
		stats, err := writeTrimmed(out, pairs, table, p.quality.MaxMismatch, p.log)
		summary.Written = stats.Written
		summary.Rejected = stats.Skipped[SkipQuality]
		return err
	})
	return summary, err
}

// run checks the inputs, loads the quality config and runs the pipeline.
func run(opts Options, log logrus.FieldLogger) error {
	if err := checkInputs(opts.R1, opts.R2, opts.Barcodes, opts.QualityConfig); err != nil {
		return err
	}
	quality, err := loadQualityConfig(opts.QualityConfig)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"sample":    quality.Sample,
		"threshold": quality.MaxMismatch,
	}).Info("loaded quality configuration")

	_, err = NewPipeline(opts, quality, log).Run()
	return err
}
