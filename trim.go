package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/pgzip"
	"github.com/sirupsen/logrus"
)

// passesQualityGate reports whether both tag mismatch counts are within limit.
func passesQualityGate(m MatchResult, limit int) bool {
	return m.MismatchF <= limit && m.MismatchR <= limit
}

// trimPair returns the forward and reverse reads of pair with their tags
// removed, according to the orientation in m.
func trimPair(pair ReadPair, m MatchResult) (fwd, rev *FastqRead) {
	if m.Orientation == ReverseFirst {
		return pair.R2.Trim(m.TrimLengthF), pair.R1.Trim(m.TrimLengthR)
	}
	return pair.R1.Trim(m.TrimLengthF), pair.R2.Trim(m.TrimLengthR)
}

// trimmedHeader is "@<orientation>_<read id>_<location>".
func trimmedHeader(id string, m MatchResult) string {
	return fmt.Sprintf("@%s_%s_%s", m.Orientation, id, m.Location)
}

func writeFastq(w *bufio.Writer, header string, read *FastqRead) error {
	if _, err := w.WriteString(header + "\n"); err != nil {
		return err
	}
	if _, err := w.WriteString(read.Sequence + "\n"); err != nil {
		return err
	}
	if _, err := w.WriteString("+\n"); err != nil {
		return err
	}
	_, err := w.WriteString(read.Quality + "\n")
	return err
}

// outputPaths returns "<dir>/<sample>.f.fq" and "<dir>/<sample>.r.fq", with a
// ".gz" suffix when gzip is set.
func outputPaths(dir, sample string, gzip bool) (string, string) {
	ext := ".fq"
	if gzip {
		ext += ".gz"
	}
	return filepath.Join(dir, sample+".f"+ext), filepath.Join(dir, sample+".r"+ext)
}

type outputStream struct {
	file   *os.File
	gz     *pgzip.Writer
	writer *bufio.Writer
}

func createOutputStream(path string, gzip bool) (*outputStream, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := &outputStream{file: f}
	if gzip {
		s.gz = pgzip.NewWriter(f)
		s.writer = bufio.NewWriter(s.gz)
	} else {
		s.writer = bufio.NewWriter(f)
	}
	return s, nil
}

// Close flushes and closes every layer, returning the first error.
func (s *outputStream) Close() error {
	err := s.writer.Flush()
	if s.gz != nil {
		if cerr := s.gz.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// SampleOutputs is the pair of trimmed FASTQ streams for one sample.
type SampleOutputs struct {
	ForwardPath string
	ReversePath string
	forward     *outputStream
	reverse     *outputStream
}

// withSampleOutputs creates the sample's two output files, runs fn and
// closes both files whatever fn returns.
func withSampleOutputs(dir, sample string, gzip bool, fn func(*SampleOutputs) error) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	out := &SampleOutputs{}
	out.ForwardPath, out.ReversePath = outputPaths(dir, sample, gzip)

	if out.forward, err = createOutputStream(out.ForwardPath, gzip); err != nil {
		return err
	}
	defer func() {
		if cerr := out.forward.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", out.ForwardPath, cerr)
		}
	}()

	if out.reverse, err = createOutputStream(out.ReversePath, gzip); err != nil {
		return err
	}
	defer func() {
		if cerr := out.reverse.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", out.ReversePath, cerr)
		}
	}()

	return fn(out)
}

func (o *SampleOutputs) write(id string, m MatchResult, fwd, rev *FastqRead) error {
	header := trimmedHeader(id, m)
	if err := writeFastq(o.forward.writer, header, fwd); err != nil {
		return fmt.Errorf("write %s: %w", o.ForwardPath, err)
	}
	if err := writeFastq(o.reverse.writer, header, rev); err != nil {
		return fmt.Errorf("write %s: %w", o.ReversePath, err)
	}
	return nil
}

type WriteStats struct {
	Written int
	Skipped SkipCounts
}

// writeTrimmed writes every assigned pair that passes the quality gate.
func writeTrimmed(out *SampleOutputs, pairs []ReadPair, table AssignmentTable, maxMismatch int, log logrus.FieldLogger) (WriteStats, error) {
	stats := WriteStats{Skipped: SkipCounts{}}
	for _, pair := range pairs {
		m, ok := table[pair.ID]
		if !ok {
			continue
		}
		if !passesQualityGate(m, maxMismatch) {
			stats.Skipped.add(SkipQuality)
			continue
		}
		fwd, rev := trimPair(pair, m)
		if err := out.write(pair.ID, m, fwd, rev); err != nil {
			return stats, err
		}
		stats.Written++
	}
	log.WithFields(logrus.Fields{
		"stage":    "write",
		"file":     out.ForwardPath,
		"records":  stats.Written,
		"rejected": stats.Skipped[SkipQuality],
	}).Info("wrote trimmed read pairs")
	return stats, nil
}
