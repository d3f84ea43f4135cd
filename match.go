package main

import (
	"io"
	"math"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/sirupsen/logrus"
)

// unbounded is the distance between sequences of different length.
const unbounded = math.MaxInt32

// hammingDistance counts case-insensitive mismatches between two sequences of
// equal length. Sequences of different length are unbounded apart.
func hammingDistance(a, b string) int {
	if len(a) != len(b) {
		return unbounded
	}
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	d := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

func addDistance(a, b int) int {
	if a == unbounded || b == unbounded {
		return unbounded
	}
	return a + b
}

func prefix(s string, n int) string {
	if n > len(s) {
		return s
	}
	return s[:n]
}

// Orientation tells which read of a pair carries the forward tag.
type Orientation int

const (
	// ForwardFirst: R1 carries the forward tag, R2 the reverse tag.
	ForwardFirst Orientation = iota
	// ReverseFirst: R2 carries the forward tag, R1 the reverse tag.
	ReverseFirst
)

func (o Orientation) String() string {
	if o == ReverseFirst {
		return "R2f"
	}
	return "R1f"
}

type MatchResult struct {
	Location    string
	Orientation Orientation
	MismatchF   int
	MismatchR   int
	TrimLengthF int
	TrimLengthR int
}

func (m MatchResult) Mismatches() int {
	return addDistance(m.MismatchF, m.MismatchR)
}

// bestOrientation scores tagF/tagR against the read prefixes in both
// orientations. Equal sums resolve to ForwardFirst.
func bestOrientation(tagF, tagR, seq1, seq2 string) MatchResult {
	a := MatchResult{
		Orientation: ForwardFirst,
		MismatchF:   hammingDistance(tagF, prefix(seq1, len(tagF))),
		MismatchR:   hammingDistance(tagR, prefix(seq2, len(tagR))),
		TrimLengthF: len(tagF),
		TrimLengthR: len(tagR),
	}
	b := MatchResult{
		Orientation: ReverseFirst,
		MismatchF:   hammingDistance(tagF, prefix(seq2, len(tagF))),
		MismatchR:   hammingDistance(tagR, prefix(seq1, len(tagR))),
		TrimLengthF: len(tagF),
		TrimLengthR: len(tagR),
	}
	if a.Mismatches() <= b.Mismatches() {
		return a
	}
	return b
}

// selectBest scans entries in order and keeps the first entry with the
// smallest mismatch sum. It reports false when entries is empty or no entry
// fits inside the reads.
func selectBest(entries []BarcodeEntry, pair ReadPair) (MatchResult, bool) {
	best := MatchResult{}
	bestSum := unbounded
	found := false
	for _, e := range entries {
		m := bestOrientation(e.ForwardTag, e.ReverseTag, pair.R1.Sequence, pair.R2.Sequence)
		if sum := m.Mismatches(); sum < bestSum {
			m.Location = e.Location
			best, bestSum, found = m, sum, true
		}
	}
	return best, found
}

// AssignmentTable maps read identifiers to their best catalog match.
type AssignmentTable map[string]MatchResult

type AssignOptions struct {
	// Progress, when set, receives a progress bar for the matching loop.
	Progress io.Writer
}

// assignAll matches every pair against the catalog. Pairs without a match
// are absent from the table and counted as unassigned.
func assignAll(catalog *Catalog, pairs []ReadPair, opts AssignOptions, log logrus.FieldLogger) (AssignmentTable, SkipCounts) {
	entries := catalog.Entries()
	table := make(AssignmentTable, len(pairs))
	skipped := SkipCounts{}

	var bar *pb.ProgressBar
	if opts.Progress != nil {
		bar = pb.New(len(pairs)).SetWriter(opts.Progress).Start()
		defer bar.Finish()
	}

	for _, pair := range pairs {
		if m, ok := selectBest(entries, pair); ok {
			table[pair.ID] = m
		} else {
			skipped.add(SkipUnassigned)
		}
		if bar != nil {
			bar.Increment()
		}
	}

	log.WithFields(logrus.Fields{
		"stage":    "assign",
		"pairs":    len(pairs),
		"assigned": len(table),
	}).Info("matched reads against barcode catalog")
	return table, skipped
}
