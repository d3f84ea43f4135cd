package main

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassesQualityGate(t *testing.T) {
	tests := []struct {
		name      string
		mismatchF int
		mismatchR int
		limit     int
		want      bool
	}{
		{"Exact", 0, 0, 0, true},
		{"AtLimit", 1, 1, 1, true},
		{"ForwardAbove", 2, 0, 1, false},
		{"ReverseAbove", 0, 2, 1, false},
		{"Unbounded", unbounded, 0, 3, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := MatchResult{MismatchF: tc.mismatchF, MismatchR: tc.mismatchR}
			assert.Equal(t, tc.want, passesQualityGate(m, tc.limit))
		})
	}
}

func TestTrimPair(t *testing.T) {
	pair := ReadPair{
		ID: "7",
		R1: &FastqRead{Header: "@R1_7", Sequence: "AAAACCCCGATTACA", Quality: "ABCDEFGHIJKLMNO"},
		R2: &FastqRead{Header: "@R2_7", Sequence: "GGGGTTGTAACC", Quality: "abcdefghijkl"},
	}

	t.Run("ForwardFirst", func(t *testing.T) {
		fwd, rev := trimPair(pair, MatchResult{Orientation: ForwardFirst, TrimLengthF: 8, TrimLengthR: 6})
		assert.Equal(t, "GATTACA", fwd.Sequence)
		assert.Equal(t, "IJKLMNO", fwd.Quality)
		assert.Equal(t, "GTAACC", rev.Sequence)
		assert.Equal(t, "ghijkl", rev.Quality)
	})

	t.Run("ReverseFirst", func(t *testing.T) {
		fwd, rev := trimPair(pair, MatchResult{Orientation: ReverseFirst, TrimLengthF: 4, TrimLengthR: 8})
		assert.Equal(t, "TTGTAACC", fwd.Sequence)
		assert.Equal(t, "efghijkl", fwd.Quality)
		assert.Equal(t, "GATTACA", rev.Sequence)
		assert.Equal(t, "IJKLMNO", rev.Quality)
	})

	assert.Equal(t, "AAAACCCCGATTACA", pair.R1.Sequence)
	assert.Equal(t, "GGGGTTGTAACC", pair.R2.Sequence)
}

func TestTrimmedHeader(t *testing.T) {
	m := MatchResult{Location: "FISH_L1", Orientation: ReverseFirst}
	assert.Equal(t, "@R2f_42_FISH_L1", trimmedHeader("42", m))
}

func TestWriteFastq(t *testing.T) {
	buf := &bytes.Buffer{}
	writer := bufio.NewWriter(buf)

	require.NoError(t, writeFastq(writer, "@R1f_0_FISH_L1", &FastqRead{Sequence: "ACTG", Quality: "!!!!"}))
	require.NoError(t, writeFastq(writer, "@R1f_1_FISH_L1", &FastqRead{Sequence: "TGCA", Quality: "****"}))
	require.NoError(t, writer.Flush())

	expected := "@R1f_0_FISH_L1\nACTG\n+\n!!!!\n@R1f_1_FISH_L1\nTGCA\n+\n****\n"
	assert.Equal(t, expected, buf.String())
}

func TestOutputPaths(t *testing.T) {
	f, r := outputPaths("out", "FISH", false)
	assert.Equal(t, filepath.Join("out", "FISH.f.fq"), f)
	assert.Equal(t, filepath.Join("out", "FISH.r.fq"), r)

	f, r = outputPaths("out", "FISH", true)
	assert.Equal(t, filepath.Join("out", "FISH.f.fq.gz"), f)
	assert.Equal(t, filepath.Join("out", "FISH.r.fq.gz"), r)
}

func TestWriteTrimmed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trim")
	pairs := []ReadPair{
		testPair("0", "AAAACCCCGATTACA", "GGGGTTTTCATCAT"),
		testPair("1", "TTTACCCCGATTACA", "GGGGTTTTCATCAT"),
		testPair("2", "NNNN", "NNNN"),
	}
	table := AssignmentTable{
		"0": {Location: "FISH_L1", Orientation: ForwardFirst, TrimLengthF: 8, TrimLengthR: 8},
		"1": {Location: "FISH_L1", Orientation: ForwardFirst, MismatchF: 3, TrimLengthF: 8, TrimLengthR: 8},
	}

	var stats WriteStats
	err := withSampleOutputs(dir, "FISH", false, func(out *SampleOutputs) error {
		var err error
		stats, err = writeTrimmed(out, pairs, table, 1, quietLogger())
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Skipped[SkipQuality])

	fwd, err := os.ReadFile(filepath.Join(dir, "FISH.f.fq"))
	require.NoError(t, err)
	assert.Equal(t, "@R1f_0_FISH_L1\nGATTACA\n+\nIIIIIII\n", string(fwd))

	rev, err := os.ReadFile(filepath.Join(dir, "FISH.r.fq"))
	require.NoError(t, err)
	assert.Equal(t, "@R1f_0_FISH_L1\nCATCAT\n+\nIIIIII\n", string(rev))
}

func TestWithSampleOutputsGzip(t *testing.T) {
	dir := t.TempDir()
	err := withSampleOutputs(dir, "FISH", true, func(out *SampleOutputs) error {
		return out.write("0", MatchResult{Location: "FISH_L1"}, &FastqRead{Sequence: "ACGT", Quality: "IIII"}, &FastqRead{Sequence: "TTTT", Quality: "JJJJ"})
	})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "FISH.f.fq.gz"))
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, "@R1f_0_FISH_L1\nACGT\n+\nIIII\n", string(data))
}

func TestWithSampleOutputsClosesOnError(t *testing.T) {
	dir := t.TempDir()
	boom := assert.AnError
	err := withSampleOutputs(dir, "FISH", false, func(out *SampleOutputs) error {
		if err := out.write("0", MatchResult{Location: "FISH_L1"}, &FastqRead{Sequence: "A", Quality: "I"}, &FastqRead{Sequence: "C", Quality: "I"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(filepath.Join(dir, "FISH.r.fq"))
	require.NoError(t, err)
	assert.Equal(t, "@R1f_0_FISH_L1\nC\n+\nI\n", string(data), "buffered records are flushed on failure")
}
