package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

// UsageRecord is one endpoint's call counters for one day
type UsageRecord struct {
	Date           string           `json:"date"` // YYYY-MM-DD
	Endpoint       string           `json:"endpoint"`
	RequestCount   int64            `json:"request_count"`
	FailureCount   int64            `json:"failure_count"`
	Failures       map[string]int64 `json:"failures,omitempty"` // by error kind
	TotalLatencyMs int64            `json:"total_latency_ms"`
}

// UsageStore persists per-day endpoint usage as one JSON file per endpoint and day
type UsageStore struct {
	mu       sync.Mutex
	usageDir string
	now      func() time.Time
}

// NewUsageStore creates a new usage store rooted at usageDir
func NewUsageStore(usageDir string) *UsageStore {
	return &UsageStore{
		usageDir: usageDir,
		now:      time.Now,
	}
}

// RecordCall adds one call to today's record for endpoint. failureKind is empty
// for a successful call.
func (s *UsageStore) RecordCall(endpoint, failureKind string, latency time.Duration) error {
	if !validEndpoint(endpoint) {
		return fmt.Errorf("invalid endpoint name: %q", endpoint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.usageDir, 0755); err != nil {
		return fmt.Errorf("failed to create usage directory: %w", err)
	}

	today := s.now().Format(dateLayout)
	filePath := filepath.Join(s.usageDir, today+"__"+endpoint+".json")

	record := UsageRecord{Date: today, Endpoint: endpoint}
	data, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to parse usage file %s: %w", filePath, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to read usage file: %w", err)
	}

	record.RequestCount++
	record.TotalLatencyMs += latency.Milliseconds()
	if failureKind != "" {
		record.FailureCount++
		if record.Failures == nil {
			record.Failures = make(map[string]int64)
		}
		record.Failures[failureKind]++
	}

	data, err = json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage record: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}

	return nil
}

// History returns the records of the last days days (today included), oldest first
func (s *UsageStore) History(days int) ([]UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.usageDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []UsageRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read usage directory: %w", err)
	}

	now := s.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	records := []UsageRecord{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		// YYYY-MM-DD__endpoint.json
		dateStr, _, ok := strings.Cut(entry.Name(), "__")
		if !ok {
			continue
		}
		recordDate, err := time.Parse(dateLayout, dateStr)
		if err != nil || recordDate.Before(cutoff) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.usageDir, entry.Name()))
		if err != nil {
			continue
		}

		var record UsageRecord
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].Endpoint < records[j].Endpoint
	})
	return records, nil
}

func validEndpoint(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
