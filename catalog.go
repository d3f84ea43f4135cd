package main

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/shenwei356/xopen"
	"github.com/sirupsen/logrus"
)

// minCatalogFields is sample, location, barcode_f, primer_f, barcode_r, primer_r.
const minCatalogFields = 6

// BarcodeEntry holds the combined barcode+primer tags for one location.
type BarcodeEntry struct {
	Location   string
	ForwardTag string
	ReverseTag string
}

// Catalog maps location-ids of a single sample to their tags.
type Catalog struct {
	Sample  string
	entries map[string]BarcodeEntry
}

func newCatalog(sample string) *Catalog {
	return &Catalog{Sample: sample, entries: make(map[string]BarcodeEntry)}
}

func (c *Catalog) put(e BarcodeEntry) {
	c.entries[e.Location] = e
}

func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) Get(location string) (BarcodeEntry, bool) {
	e, ok := c.entries[location]
	return e, ok
}

// Entries returns the catalog sorted by location-id.
func (c *Catalog) Entries() []BarcodeEntry {
	locations := make([]string, 0, len(c.entries))
	for loc := range c.entries {
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	out := make([]BarcodeEntry, 0, len(locations))
	for _, loc := range locations {
		out = append(out, c.entries[loc])
	}
	return out
}

type CatalogStats struct {
	// Rows counts rows with at least six fields, whatever their sample.
	Rows    int
	Kept    int
	Skipped SkipCounts
}

// loadCatalog reads comma-separated tag rows and keeps those whose first
// field equals sample. Location-ids are "<sample>_<location>"; a later row
// for the same location replaces the earlier one.
func loadCatalog(path, sample string, log logrus.FieldLogger) (*Catalog, CatalogStats, error) {
	log = log.WithFields(logrus.Fields{"stage": "catalog", "file": path, "sample": sample})
	catalog := newCatalog(sample)
	stats := CatalogStats{Skipped: SkipCounts{}}

	r, err := xopen.Ropen(path)
	if err != nil && err != xopen.ErrNoContent {
		return nil, stats, fmt.Errorf("open barcode file %s: %w", path, err)
	}
	if err == nil {
		defer r.Close()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			fields := strings.Split(line, ",")
			if len(fields) < minCatalogFields {
				stats.Skipped.add(SkipShortRow)
				continue
			}
			stats.Rows++
			if fields[0] != sample {
				stats.Skipped.add(SkipOtherSample)
				continue
			}
			catalog.put(BarcodeEntry{
				Location:   fields[0] + "_" + fields[1],
				ForwardTag: fields[2] + fields[3],
				ReverseTag: fields[4] + fields[5],
			})
			stats.Kept++
		}
		if err := scanner.Err(); err != nil {
			return nil, stats, fmt.Errorf("error reading barcode file %s: %v", path, err)
		}
	}

	log.WithFields(logrus.Fields{
		"rows":      stats.Rows,
		"kept":      stats.Kept,
		"locations": catalog.Len(),
	}).Info("loaded barcode catalog")
	if stats.Kept == 0 {
		log.Warnf("no barcode entries found for sample %q", sample)
	}
	return catalog, stats, nil
}
