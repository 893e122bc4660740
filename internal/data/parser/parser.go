// Package parser reads row files (CSV with a header line, or JSON Lines with
// one object per line) into tables.
package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/penwyp/go-timeplot/internal/util"
)

// Supported file extensions
const (
	ExtCSV   = ".csv"
	ExtJSONL = ".jsonl"
)

// ErrUnsupportedFormat reports a file with an extension the parser does not read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser parses row files. Parsed tables are cached per path and reused while
// the file's size, modification time and inode stay the same.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string]cachedFile
}

type cachedFile struct {
	info   util.FileInfo
	result ParseResult
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File    string
	Table   *table.Table
	Rows    int // accepted lines
	Skipped int // lines that could not be read as a row
	Error   error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string]cachedFile),
	}
}

// Supported reports whether path has an extension the parser reads.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV, ExtJSONL:
		return true
	}
	return false
}

// ParseFile parses the file at path.
func (p *Parser) ParseFile(path string) ParseResult {
	info, infoErr := util.GetFileInfo(path)
	if infoErr == nil {
		p.mu.Lock()
		cached, ok := p.cache[path]
		p.mu.Unlock()
		if ok && cached.info == *info {
			return cached.result
		}
	}

	util.LogDebug(fmt.Sprintf("Start parsing file: %s", path))
	res := p.parse(path)
	if res.Error != nil {
		util.LogDebug(fmt.Sprintf("Failed to parse file: %s - %v", path, res.Error))
		return res
	}

	if infoErr == nil {
		p.mu.Lock()
		p.cache[path] = cachedFile{info: *info, result: res}
		p.mu.Unlock()
	}
	return res
}

// Changed reports whether path differs from the version last parsed.
func (p *Parser) Changed(path string) bool {
	info, err := util.GetFileInfo(path)
	if err != nil {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cached, ok := p.cache[path]
	return !ok || cached.info != *info
}

// Forget drops the cached result for path.
func (p *Parser) Forget(path string) {
	p.mu.Lock()
	delete(p.cache, path)
	p.mu.Unlock()
}

func (p *Parser) parse(path string) ParseResult {
	res := ParseResult{File: path}

	file, err := os.Open(path)
	if err != nil {
		res.Error = err
		return res
	}
	defer file.Close()

	var (
		header  []string
		records []table.Record
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV:
		header, records, res.Skipped, err = ReadCSV(file)
	case ExtJSONL:
		records, res.Skipped, err = ReadJSONL(file)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		res.Error = fmt.Errorf("%s: %w", path, err)
		return res
	}

	t, err := buildTable(header, records)
	if err != nil {
		res.Error = fmt.Errorf("%s: %w", path, err)
		return res
	}
	res.Table = t
	res.Rows = len(records)
	if res.Skipped > 0 {
		util.LogDebug(fmt.Sprintf("Parsed %s: %d rows, skipped %d invalid lines", path, res.Rows, res.Skipped))
	}
	return res
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebug(fmt.Sprintf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency))

	semaphore := make(chan struct{}, p.concurrency)
	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results <- p.ParseFile(f)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug(fmt.Sprintf("Concurrent parsing finished, total duration: %v", time.Since(start)))
	}()

	return results
}

// buildTable keeps the header's column order when there is one.
func buildTable(header []string, records []table.Record) (*table.Table, error) {
	if len(header) == 0 {
		return table.FromRecords(records)
	}
	rows := make([][]model.Value, len(records))
	for i, rec := range records {
		row := make([]model.Value, len(header))
		for j, name := range header {
			row[j] = rec[name]
		}
		rows[i] = row
	}
	return table.New(header, rows)
}

// ReadJSONL reads one JSON object per line. Time may be epoch seconds or an
// RFC3339 string; other fields must be numbers, numeric strings or null.
// Lines that do not decode are skipped and counted.
func ReadJSONL(r io.Reader) (records []table.Record, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw map[string]any
		if err := sonic.UnmarshalString(line, &raw); err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %d - %v", lineNo, err))
			skipped++
			continue
		}
		rec, err := recordFromJSON(raw)
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip line %d - %v", lineNo, err))
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}
	return records, skipped, nil
}

func recordFromJSON(raw map[string]any) (table.Record, error) {
	rec := make(table.Record, len(raw))
	for k, v := range raw {
		if k == table.TimeColumn {
			ts, err := timeValue(v)
			if err != nil {
				return nil, err
			}
			rec[k] = model.Num(float64(ts))
			continue
		}
		val, err := sampleValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		rec[k] = val
	}
	if _, ok := rec[table.TimeColumn]; !ok {
		return nil, fmt.Errorf("missing %s", table.TimeColumn)
	}
	return rec, nil
}

func timeValue(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%s %v is not whole seconds", table.TimeColumn, x)
		}
		return int64(x), nil
	case string:
		return util.ParseTimestamp(x)
	}
	return 0, fmt.Errorf("%s has unsupported type %T", table.TimeColumn, v)
}

func sampleValue(v any) (model.Value, error) {
	switch x := v.(type) {
	case nil:
		return model.Null, nil
	case float64:
		return finiteSample(x)
	case string:
		return parseCell(x)
	}
	return model.Null, fmt.Errorf("unsupported type %T", v)
}

func parseCell(s string) (model.Value, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return model.Null, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Null, fmt.Errorf("%q is not a number", s)
	}
	return finiteSample(f)
}

func finiteSample(f float64) (model.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return model.Null, fmt.Errorf("%v is not a sample", f)
	}
	return model.Num(f), nil
}

// ReadCSV reads a header line naming the columns, one of which must be Time,
// followed by one row per line. Empty cells are null. Rows that do not parse
// are skipped and counted.
func ReadCSV(r io.Reader) (header []string, records []table.Record, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err = reader.Read()
	if err == io.EOF {
		return nil, nil, 0, nil
	}
	if err != nil {
		return nil, nil, 0, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	timeIdx := -1
	for i, name := range header {
		if name == table.TimeColumn {
			timeIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, nil, 0, fmt.Errorf("%w: header has no %s column", model.ErrInvalidTable, table.TimeColumn)
	}

	lineNo := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip CSV line %d - %v", lineNo, err))
			skipped++
			continue
		}
		if len(row) != len(header) {
			util.LogDebug(fmt.Sprintf("Skip CSV line %d - %d fields, want %d", lineNo, len(row), len(header)))
			skipped++
			continue
		}
		rec, err := recordFromCSV(header, row, timeIdx)
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip CSV line %d - %v", lineNo, err))
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return header, records, skipped, nil
}

func recordFromCSV(header, row []string, timeIdx int) (table.Record, error) {
	ts, err := util.ParseTimestamp(row[timeIdx])
	if err != nil {
		return nil, err
	}
	rec := make(table.Record, len(header))
	for i, name := range header {
		if i == timeIdx {
			rec[name] = model.Num(float64(ts))
			continue
		}
		val, err := parseCell(row[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		rec[name] = val
	}
	return rec, nil
}
