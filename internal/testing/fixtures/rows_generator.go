// Package fixtures writes deterministic row files for tests.
package fixtures

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// JSONLEntry is one line of a JSONL row file. Time is epoch seconds or an
// RFC3339 string; nil values are written as null.
type JSONLEntry map[string]any

// TestDataGenerator generates row files under a base directory
type TestDataGenerator struct {
	baseDir string
}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{
		baseDir: baseDir,
	}
}

// GenerateWeather writes n rows of Temp and Humidity, one every step, to
// name as CSV. Every seventh Humidity cell is empty.
func (g *TestDataGenerator) GenerateWeather(name string, start time.Time, step time.Duration, n int) (string, error) {
	header := []string{"Time", "Temp", "Humidity"}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * step).Unix()
		temp := 15 + 5*math.Sin(float64(i)/12)
		humidity := ""
		if i%7 != 0 {
			humidity = strconv.Itoa(40 + i%30)
		}
		rows = append(rows, []string{
			strconv.FormatInt(ts, 10),
			strconv.FormatFloat(math.Round(temp*10)/10, 'f', -1, 64),
			humidity,
		})
	}
	path := filepath.Join(g.baseDir, name)
	return path, g.WriteCSV(path, header, rows)
}

// GenerateLoad writes n Load samples, one every step, to name as JSONL with
// RFC3339 timestamps.
func (g *TestDataGenerator) GenerateLoad(name string, start time.Time, step time.Duration, n int) (string, error) {
	entries := make([]JSONLEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, JSONLEntry{
			"Time": start.Add(time.Duration(i) * step).UTC().Format(time.RFC3339),
			"Load": float64(i%10) / 10,
		})
	}
	path := filepath.Join(g.baseDir, name)
	return path, g.WriteJSONL(path, entries)
}

// GenerateCorrupted writes a JSONL file whose every other line is broken.
// It returns the number of good lines.
func (g *TestDataGenerator) GenerateCorrupted(name string, start time.Time, n int) (string, int, error) {
	path := filepath.Join(g.baseDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	good := 0
	for i := 0; i < n; i++ {
		line := fmt.Sprintf(`{"Time":%d,"Value":%d}`, start.Unix()+int64(i*60), i)
		if i%2 == 1 {
			line = `{"Time":` // truncated write
		} else {
			good++
		}
		if _, err := fmt.Fprintln(file, line); err != nil {
			return "", 0, err
		}
	}
	return path, good, nil
}

// WriteCSV writes header and rows to path
func (g *TestDataGenerator) WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// WriteJSONL writes entries to path, one object per line
func (g *TestDataGenerator) WriteJSONL(path string, entries []JSONLEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := sonic.ConfigDefault.NewEncoder(file)
	for _, entry := range entries {
		if err := encoder.Encode(entry); err != nil {
			return err
		}
	}

	return nil
}

// CreateEmptyFile creates an empty row file
func (g *TestDataGenerator) CreateEmptyFile(name string) (string, error) {
	path := filepath.Join(g.baseDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	return path, file.Close()
}

// CleanupTestData removes all generated test data
func (g *TestDataGenerator) CleanupTestData() error {
	return os.RemoveAll(g.baseDir)
}

// GetBaseDir returns the base directory for test data
func (g *TestDataGenerator) GetBaseDir() string {
	return g.baseDir
}
