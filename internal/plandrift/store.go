// Package plandrift maintains a JSON-file-backed ledger of query plan
// digests keyed by canonical AST hash and software version, and compares
// two versions to flag plan drift.
package plandrift

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Record is one observed (query, version) plan digest.
type Record struct {
	QueryHash  string    `json:"query_hash"`
	Text       string    `json:"text"`
	PlanDigest string    `json:"plan_digest"`
	Version    string    `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

// Ledger is a JSON-file-backed record store. The file holds a flat record
// array; the newest record wins per (query_hash, version) pair.
type Ledger struct {
	path string
	now  func() time.Time
}

// NewLedger creates a ledger over the given file path. The file is created
// on first Record call.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path, now: time.Now}
}

// NewLedgerAt is like NewLedger but with an injected clock, for tests.
func NewLedgerAt(path string, now func() time.Time) *Ledger {
	return &Ledger{path: path, now: now}
}

// Record appends one plan digest observation.
func (l *Ledger) Record(queryHash, text, planDigest, version string) error {
	records, err := l.load()
	if err != nil {
		return err
	}
	records = append(records, Record{
		QueryHash:  queryHash,
		Text:       text,
		PlanDigest: planDigest,
		Version:    version,
		Timestamp:  l.now().UTC(),
	})
	return l.save(records)
}

// Records returns all stored records in file order.
func (l *Ledger) Records() ([]Record, error) {
	return l.load()
}

// Drift is one query whose plan digest changed between two versions.
type Drift struct {
	QueryHash string
	Text      string
	OldDigest string
	NewDigest string
}

// Report summarizes a version comparison.
type Report struct {
	VersionA string
	VersionB string
	// Compared counts the query hashes present in both versions.
	Compared int
	Drifted  []Drift
}

// ChangedFraction is the share of compared queries whose digest changed.
func (r *Report) ChangedFraction() float64 {
	if r.Compared == 0 {
		return 0
	}
	return float64(len(r.Drifted)) / float64(r.Compared)
}

// Exceeds reports whether the changed fraction is above a percentage
// threshold (0-100).
func (r *Report) Exceeds(thresholdPercent float64) bool {
	return r.ChangedFraction()*100 > thresholdPercent
}

// Compare diffs plan digests between two named versions. Only query hashes
// recorded under both versions are compared; per pair the latest record
// wins. Drifted entries come back sorted by query hash.
func (l *Ledger) Compare(versionA, versionB string) (*Report, error) {
	records, err := l.load()
	if err != nil {
		return nil, err
	}

	latestA := latestByHash(records, versionA)
	latestB := latestByHash(records, versionB)

	report := &Report{VersionA: versionA, VersionB: versionB}
	for hash, recA := range latestA {
		recB, ok := latestB[hash]
		if !ok {
			continue
		}
		report.Compared++
		if recA.PlanDigest != recB.PlanDigest {
			report.Drifted = append(report.Drifted, Drift{
				QueryHash: hash,
				Text:      recB.Text,
				OldDigest: recA.PlanDigest,
				NewDigest: recB.PlanDigest,
			})
		}
	}

	sort.Slice(report.Drifted, func(i, j int) bool {
		return report.Drifted[i].QueryHash < report.Drifted[j].QueryHash
	})
	return report, nil
}

func latestByHash(records []Record, version string) map[string]Record {
	out := make(map[string]Record)
	for _, rec := range records {
		if rec.Version != version {
			continue
		}
		prev, ok := out[rec.QueryHash]
		if !ok || !rec.Timestamp.Before(prev.Timestamp) {
			out[rec.QueryHash] = rec
		}
	}
	return out
}

func (l *Ledger) load() ([]Record, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	return records, nil
}

func (l *Ledger) save(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
