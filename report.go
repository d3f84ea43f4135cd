package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// SkipReason names why a record or row was left out of a stage's output.
type SkipReason string

const (
	SkipTruncated    SkipReason = "truncated record"
	SkipNoIdentifier SkipReason = "no read identifier"
	SkipShortRow     SkipReason = "fewer than 6 fields"
	SkipOtherSample  SkipReason = "other sample"
	SkipUnpaired     SkipReason = "no mate in other file"
	SkipUnassigned   SkipReason = "no catalog match"
	SkipQuality      SkipReason = "mismatches above threshold"
)

// SkipCounts tallies skipped items per reason.
type SkipCounts map[SkipReason]int

func (s SkipCounts) add(reason SkipReason) {
	s[reason]++
}

func (s SkipCounts) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// String renders the counts in a stable order, e.g. "no read identifier=2, truncated record=1".
func (s SkipCounts) String() string {
	reasons := make([]string, 0, len(s))
	for r := range s {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", r, s[SkipReason(r)]))
	}
	return strings.Join(parts, ", ")
}

// Comma formats value with thousands separators, e.g. 1234567 as "1,234,567".
func Comma(value int64) string {
	digits := strconv.FormatInt(value, 10)
	var b strings.Builder
	if value < 0 {
		b.WriteByte('-')
		digits = digits[1:]
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// RunSummary collects the counters printed at the end of the trimming stage.
type RunSummary struct {
	Sample     string
	Paired     int
	Assigned   int
	Written    int
	Rejected   int
	Unassigned int
}

func (s RunSummary) writtenPercentage() float64 {
	if s.Paired == 0 {
		return 0
	}
	return float64(s.Written) / float64(s.Paired) * 100
}

func printSummary(w io.Writer, s RunSummary) {
	fmt.Fprintf(w, "\nPaired reads: %s\n", Comma(int64(s.Paired)))
	fmt.Fprintf(w, "Assigned pairs: %s\n", Comma(int64(s.Assigned)))
	fmt.Fprintf(w, "Written pairs for %s: %s\n", s.Sample, Comma(int64(s.Written)))
	color.New(color.FgHiGreen).Fprintf(w, "Percentage of written pairs: %.2f%%\n", s.writtenPercentage())
	color.New(color.FgHiMagenta).Fprintf(w, "\nQuality rejected count: %s\n", Comma(int64(s.Rejected)))
	color.New(color.FgHiMagenta).Fprintf(w, "Unassigned count: %s\n", Comma(int64(s.Unassigned)))
}
