package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shenwei356/xopen"
	"github.com/sirupsen/logrus"
)

var ErrRenameCollision = errors.New("R1 and R2 rename to the same file")

// pairLabel derives "R1" or "R2" from a FASTQ file name, falling back to
// the first two characters of its last underscore-separated token.
func pairLabel(path string) string {
	name := filepath.Base(path)
	switch {
	case strings.Contains(name, "_R1"):
		return "R1"
	case strings.Contains(name, "_R2"):
		return "R2"
	}
	fields := strings.Split(name, "_")
	last := fields[len(fields)-1]
	if len(last) > 2 {
		last = last[:2]
	}
	return last
}

// renamedPath is "<dir>/<stem>.rename.fq", stem being the file name without
// its last extension.
func renamedPath(dir, input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+".rename.fq")
}

// renameFastq copies input line by line, replacing every fourth line (the
// header) with "@<pair>_<n>", n counting records from zero. The other lines
// are copied unchanged, so a truncated trailing record reaches the loader
// as-is. With strict set a truncated trailing record is ErrMalformedRecord.
// It returns the number of headers written.
func renameFastq(input, output string, strict bool, log logrus.FieldLogger) (n int, err error) {
	log = log.WithFields(logrus.Fields{"stage": "rename", "file": input})
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return 0, fmt.Errorf("create rename directory: %w", err)
	}

	infh, err := xopen.Ropen(input)
	if err == xopen.ErrNoContent {
		log.Warn("fastq file is empty")
		return 0, os.WriteFile(output, nil, 0o644)
	}
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", input, err)
	}
	defer infh.Close()

	outfh, err := xopen.Wopen(output)
	if err != nil {
		return 0, fmt.Errorf("error creating output file %s: %v", output, err)
	}
	defer func() {
		if cerr := outfh.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(infh)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	label := pairLabel(input)
	line := 0
	for scanner.Scan() {
		text := scanner.Text()
		if line%4 == 0 {
			text = fmt.Sprintf("@%s_%d", label, n)
			n++
		}
		if _, err := fmt.Fprintln(outfh, text); err != nil {
			return n, fmt.Errorf("error writing %s: %v", output, err)
		}
		line++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("error reading file %s: %v", input, err)
	}

	if rest := line % 4; rest != 0 {
		if strict {
			return n, fmt.Errorf("%s: trailing record has %d of 4 lines: %w", input, rest, ErrMalformedRecord)
		}
		log.WithField("lines", rest).Warn("trailing record is truncated")
	}

	log.WithFields(logrus.Fields{"records": n, "output": output}).Info("renamed reads")
	return n, nil
}
