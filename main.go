package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand(log *logrus.Logger) *cobra.Command {
	opts := Options{}
	var progress, verbose bool

	cmd := &cobra.Command{
		Use:   "barcodeTrimmer <R1_fastq> <R2_fastq> <barcode_csv> <quality_config>",
		Short: "Demultiplex and trim paired-end amplicon reads for one sample",
		Long: `Match every read pair against the barcode+primer tags of the sample named in the
quality config, trim the tags and write <sample>.f.fq and <sample>.r.fq.

The quality config holds exactly one sample and its maximum allowed mismatch
count per tag, e.g. {"FISH": 2}.`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.R1, opts.R2, opts.Barcodes, opts.QualityConfig = args[0], args[1], args[2], args[3]
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			if progress {
				opts.Progress = cmd.ErrOrStderr()
			}
			opts.Summary = cmd.OutOrStdout()
			return run(opts, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.OutDir, "outdir", "outputs/trim", "directory for trimmed output files")
	flags.StringVar(&opts.RenameDir, "renamedir", "outputs/rename", "directory for renamed intermediate files")
	flags.BoolVar(&opts.SkipRename, "skip-rename", false, "inputs already have <pair>_<n> headers")
	flags.BoolVar(&opts.Gzip, "gzip", false, "gzip the trimmed output files")
	flags.BoolVar(&opts.Strict, "strict", false, "fail on malformed fastq records instead of skipping them")
	flags.IntVar(&opts.MinRecords, "min-records", 2, "minimum number of trimmed records required")
	flags.BoolVar(&progress, "progress", false, "show a progress bar while matching")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := newRootCommand(log).Execute(); err != nil {
		log.WithError(err).Error("pipeline failed")
		os.Exit(1)
	}
	color.HiGreen("\nTrimming completed")
}
