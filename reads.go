package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/shenwei356/xopen"
	"github.com/sirupsen/logrus"
)

var ErrMalformedRecord = errors.New("malformed fastq record")

type FastqRead struct {
	Header   string
	Sequence string
	Quality  string
}

// ID returns the second underscore-separated token of the header, or "" when
// the header has no underscore.
func (r *FastqRead) ID() string {
	return readIdentifier(r.Header)
}

func readIdentifier(header string) string {
	fields := strings.Split(header, "_")
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// Trim returns a new read without the first n bases and quality values.
func (r *FastqRead) Trim(n int) *FastqRead {
	if n < 0 {
		n = 0
	}
	if n > len(r.Sequence) {
		n = len(r.Sequence)
	}
	q := n
	if q > len(r.Quality) {
		q = len(r.Quality)
	}
	return &FastqRead{
		Header:   r.Header,
		Sequence: r.Sequence[n:],
		Quality:  r.Quality[q:],
	}
}

// ReadIndex maps read identifiers to records. Iteration follows the order in
// which identifiers first appeared in the file; a repeated identifier keeps
// its position but takes the later record.
type ReadIndex struct {
	order []string
	reads map[string]*FastqRead
}

func newReadIndex() *ReadIndex {
	return &ReadIndex{reads: make(map[string]*FastqRead)}
}

func (ix *ReadIndex) put(id string, read *FastqRead) {
	if _, ok := ix.reads[id]; !ok {
		ix.order = append(ix.order, id)
	}
	ix.reads[id] = read
}

func (ix *ReadIndex) Get(id string) (*FastqRead, bool) {
	read, ok := ix.reads[id]
	return read, ok
}

func (ix *ReadIndex) Len() int { return len(ix.order) }

func (ix *ReadIndex) IDs() []string { return ix.order }

type LoadStats struct {
	Records int
	Skipped SkipCounts
}

type LoadOptions struct {
	// Strict turns truncated groups and headers without an identifier into
	// ErrMalformedRecord instead of skipping them.
	Strict bool
}

// loadFastq parses path in 4-line groups (header, sequence, separator,
// quality) into a ReadIndex. Lines are whitespace-trimmed.
func loadFastq(path string, opts LoadOptions, log logrus.FieldLogger) (*ReadIndex, LoadStats, error) {
	index := newReadIndex()
	stats := LoadStats{Skipped: SkipCounts{}}

	r, err := xopen.Ropen(path)
	if err == xopen.ErrNoContent {
		log.WithField("file", path).Warn("fastq file is empty")
		return index, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var group [4]string
	n := 0
	line := 0
	for scanner.Scan() {
		line++
		group[n] = strings.TrimSpace(scanner.Text())
		n++
		if n < 4 {
			continue
		}
		n = 0

		read := &FastqRead{Header: group[0], Sequence: group[1], Quality: group[3]}
		id := read.ID()
		if id == "" {
			if opts.Strict {
				return nil, stats, fmt.Errorf("%s line %d: header %q has no identifier: %w", path, line-3, read.Header, ErrMalformedRecord)
			}
			stats.Skipped.add(SkipNoIdentifier)
			continue
		}
		index.put(id, read)
		stats.Records++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("error reading file %s: %v", path, err)
	}

	if n > 0 {
		if opts.Strict {
			return nil, stats, fmt.Errorf("%s: trailing record has %d of 4 lines: %w", path, n, ErrMalformedRecord)
		}
		stats.Skipped.add(SkipTruncated)
	}

	log.WithFields(logrus.Fields{
		"file":    path,
		"records": stats.Records,
		"skipped": stats.Skipped.Total(),
	}).Debug("loaded fastq")
	return index, stats, nil
}

type ReadPair struct {
	ID string
	R1 *FastqRead
	R2 *FastqRead
}

// pairReads joins the two indexes on identifier, in r1 order. Identifiers
// present in only one file are counted as unpaired.
func pairReads(r1, r2 *ReadIndex) ([]ReadPair, SkipCounts) {
	skipped := SkipCounts{}
	pairs := make([]ReadPair, 0, r1.Len())
	for _, id := range r1.IDs() {
		mate, ok := r2.Get(id)
		if !ok {
			skipped.add(SkipUnpaired)
			continue
		}
		read, _ := r1.Get(id)
		pairs = append(pairs, ReadPair{ID: id, R1: read, R2: mate})
	}
	for _, id := range r2.IDs() {
		if _, ok := r1.Get(id); !ok {
			skipped.add(SkipUnpaired)
		}
	}
	return pairs, skipped
}
