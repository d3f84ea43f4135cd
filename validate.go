package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shenwei356/xopen"
	"github.com/sirupsen/logrus"
)

var (
	ErrOutputMissing = errors.New("output file not found")
	ErrTooFewRecords = errors.New("not enough sequences remained after trimming")
)

// countLines counts lines in a (possibly gzipped) file; a final line without
// a newline still counts.
func countLines(path string) (int, error) {
	r, err := xopen.Ropen(path)
	if err == xopen.ErrNoContent {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer r.Close()

	lines := 0
	for {
		chunk, err := r.ReadString('\n')
		if len(chunk) > 0 {
			lines++
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
	}
}

// validateOutput checks that path exists and holds at least minRecords
// four-line records, returning the record count.
func validateOutput(path, sample string, minRecords int, log logrus.FieldLogger) (int, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrOutputMissing, path)
		}
		return 0, fmt.Errorf("could not read output file: %w", err)
	}

	lines, err := countLines(path)
	if err != nil {
		return 0, fmt.Errorf("could not read output file: %w", err)
	}
	records := lines / 4
	log.WithFields(logrus.Fields{"stage": "validate", "file": path, "records": records}).
		Infof("found %d sequences", records)

	if records < minRecords {
		return records, fmt.Errorf("%w for sample %q (found %d, require at least %d); "+
			"either the barcode matching failed or the quality standard is too strict",
			ErrTooFewRecords, sample, records, minRecords)
	}
	return records, nil
}
