package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/run1_S1_L001_R1_001.fastq", "R1"},
		{"run1_R2.fq.gz", "R2"},
		{"sample_2.fq", "2."},
		{"sample_fw.fastq", "fw"},
		{"reads", "re"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, pairLabel(tc.path))
		})
	}
}

func TestRenamedPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "run1_R1.rename.fq"), renamedPath("out", "/data/run1_R1.fastq"))
	assert.Equal(t, filepath.Join("out", "run1_R2.fq.rename.fq"), renamedPath("out", "run1_R2.fq.gz"))
}

func TestRenameFastq(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "run_R2.fastq", fastqText(
		[3]string{"@M00123:1:000:1:1101:15589:1331 1:N:0:1", "ACGTACGT", "IIIIIIII"},
		[3]string{"@M00123:1:000:1:1101:15590:1332 1:N:0:1", "TTGGCCAA", "JJJJJJJJ"},
	))
	output := filepath.Join(dir, "rename", "run_R2.rename.fq")

	n, err := renameFastq(input, output, false, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "@R2_0\nACGTACGT\n+\nIIIIIIII\n@R2_1\nTTGGCCAA\n+\nJJJJJJJJ\n", string(data))
}

func TestRenameFastqEmpty(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "run_R1.fastq", "")
	output := filepath.Join(dir, "out", "run_R1.rename.fq")

	n, err := renameFastq(input, output, false, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.FileExists(t, output)
}

func TestRenameFastqKeepsMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "run_R1.fq", fastqText(
		[3]string{"@a", "ACGT", "IIII"},
		[3]string{"@b", "AAAACCCCGATTACA", "III"},
	)+"@c\nAAAACCCC\n")
	output := filepath.Join(dir, "rename", "run_R1.rename.fq")

	n, err := renameFastq(input, output, false, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "@R1_0\nACGT\n+\nIIII\n@R1_1\nAAAACCCCGATTACA\n+\nIII\n@R1_2\nAAAACCCC\n", string(data))

	index, stats, err := loadFastq(output, LoadOptions{}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len())
	assert.Equal(t, 1, stats.Skipped[SkipTruncated])
}

func TestRenameFastqStrictTruncated(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "run_R1.fq", fastqText([3]string{"@a", "ACGT", "IIII"})+"@b\nACGT\n")

	_, err := renameFastq(input, filepath.Join(dir, "run_R1.rename.fq"), true, quietLogger())
	assert.ErrorIs(t, err, ErrMalformedRecord)
}
