package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/wnli/internal/model"
)

// RecordFunc processes a single dataset record
type RecordFunc[T any] func(ctx context.Context, record model.Record) (T, error)

// RecordJob runs a RecordFunc for one record
type RecordJob[T any] struct {
	Position int // Position of the record in the batch
	Record   model.Record
	Fn       RecordFunc[T]
}

// Execute executes the job
func (j *RecordJob[T]) Execute(ctx context.Context) Result {
	value, err := j.Fn(ctx, j.Record)
	return &RecordResult[T]{
		Position: j.Position,
		Record:   j.Record,
		Value:    value,
		Error:    err,
	}
}

// RecordResult is the outcome of one record
type RecordResult[T any] struct {
	Position int
	Record   model.Record
	Value    T
	Error    error
}

// GetError returns the error from the record result
func (r *RecordResult[T]) GetError() error {
	return r.Error
}

// BatchProcessor runs a RecordFunc over many records concurrently
type BatchProcessor[T any] struct {
	fn          RecordFunc[T]
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor[T any](fn RecordFunc[T], concurrency int) *BatchProcessor[T] {
	return &BatchProcessor[T]{
		fn:          fn,
		concurrency: concurrency,
	}
}

// ProcessRecords processes records concurrently and returns one result per
// record, in input order. Records never started because ctx was cancelled
// carry ctx's error.
func (b *BatchProcessor[T]) ProcessRecords(ctx context.Context, records []model.Record) []*RecordResult[T] {
	if len(records) == 0 {
		return []*RecordResult[T]{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, record := range records {
		if !pool.Submit(&RecordJob[T]{Position: i, Record: record, Fn: b.fn}) {
			break
		}
	}

	results := pool.Wait()

	ordered := make([]*RecordResult[T], len(records))
	for _, result := range results {
		r := result.(*RecordResult[T])
		ordered[r.Position] = r
	}
	for i := range ordered {
		if ordered[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &RecordResult[T]{Position: i, Record: records[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads records from a TSV file and processes them concurrently
func (b *BatchProcessor[T]) ProcessFile(ctx context.Context, filePath string) ([]*RecordResult[T], error) {
	records, err := ReadRecordsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	return b.ProcessRecords(ctx, records), nil
}

// ReadRecordsFromFile reads a GLUE-style TSV file. The header row names the
// columns; sentence1 and sentence2 are required, index and label optional.
// Fields are split on tabs only, quotes are literal text.
func ReadRecordsFromFile(filePath string) ([]model.Record, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	columns := map[string]int{}
	var records []model.Record
	lineNo := 0

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNo++

		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")

		if len(columns) == 0 {
			for i, name := range fields {
				columns[strings.ToLower(strings.TrimSpace(name))] = i
			}
			if _, ok := columns["sentence1"]; !ok {
				return nil, fmt.Errorf("header is missing sentence1 column")
			}
			if _, ok := columns["sentence2"]; !ok {
				return nil, fmt.Errorf("header is missing sentence2 column")
			}
			continue
		}

		record, err := parseRecord(fields, columns, len(records))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return records, nil
}

func parseRecord(fields []string, columns map[string]int, position int) (model.Record, error) {
	get := func(name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(fields) {
			return "", false
		}
		return fields[i], true
	}

	record := model.Record{Index: position}

	s1, ok := get("sentence1")
	if !ok {
		return record, fmt.Errorf("missing sentence1")
	}
	s2, ok := get("sentence2")
	if !ok {
		return record, fmt.Errorf("missing sentence2")
	}
	record.Premise = s1
	record.Hypothesis = s2

	if idx, ok := get("index"); ok && strings.TrimSpace(idx) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return record, fmt.Errorf("invalid index %q", idx)
		}
		record.Index = n
	}

	if raw, ok := get("label"); ok && strings.TrimSpace(raw) != "" {
		label, err := model.ParseLabel(strings.TrimSpace(raw))
		if err != nil {
			return record, err
		}
		record.Label = &label
	}

	return record, nil
}
