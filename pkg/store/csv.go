// pkg/store/csv.go
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// CSVStore reads survey exports from one directory and writes the
// corrected files and pass logs to another. Input files are found by
// their kind keyword: any CSV whose name contains "trees" is the trees
// dataset.
type CSVStore struct {
	inputDir  string
	outputDir string
	logger    *zap.Logger
}

// NewCSVStore creates a CSV store and ensures the output directory
// exists.
func NewCSVStore(inputDir, outputDir string, logger *zap.Logger) (*CSVStore, error) {
	if inputDir == "" {
		return nil, errors.New("input directory cannot be empty")
	}
	if outputDir == "" {
		return nil, errors.New("output directory cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &CSVStore{inputDir: inputDir, outputDir: outputDir, logger: logger}, nil
}

// Kinds reports which dataset kinds have a file in the input
// directory. An ambiguous kind (two files matching the same keyword)
// is an error rather than a skip: the operator must resolve it.
func (s *CSVStore) Kinds(ctx context.Context) ([]dataset.DatasetKind, error) {
	var out []dataset.DatasetKind
	for _, k := range dataset.Kinds() {
		_, err := s.findFile(k)
		switch {
		case err == nil:
			out = append(out, k)
		case errors.Is(err, ErrNoDataset):
			continue
		default:
			return nil, err
		}
	}
	return out, nil
}

// findFile resolves a kind to its file by keyword match.
func (s *CSVStore) findFile(kind dataset.DatasetKind) (string, error) {
	entries, err := os.ReadDir(s.inputDir)
	if err != nil {
		return "", fmt.Errorf("failed to read input directory: %w", err)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.HasSuffix(name, ".csv") || strings.Contains(name, "_log_") {
			continue
		}
		if strings.Contains(name, string(kind)) {
			matches = append(matches, e.Name())
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no csv matching %q under %s", ErrNoDataset, kind, s.inputDir)
	case 1:
		return matches[0], nil
	}
	sort.Strings(matches)
	return "", fmt.Errorf("dataset %q is ambiguous under %s: %s",
		kind, s.inputDir, strings.Join(matches, ", "))
}

// Load reads and parses the dataset, typing each cell by the schema.
// Columns the schema does not know are kept as text so nothing is
// dropped on the round trip.
func (s *CSVStore) Load(ctx context.Context, kind dataset.DatasetKind) (*dataset.RecordSet, error) {
	name, err := s.findFile(kind)
	if err != nil {
		return nil, err
	}
	schema, err := dataset.SchemaFor(kind)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.inputDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	// spreadsheet exports often lead with a byte order mark
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	var rows []dataset.Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		row := make(dataset.Record, len(header))
		for i, col := range header {
			ft := dataset.FieldText
			if spec, ok := schema.Field(col); ok {
				ft = spec.Type
			}
			row[col] = dataset.ParseValue(rec[i], ft)
		}
		rows = append(rows, row)
	}

	rs := &dataset.RecordSet{Kind: kind, Name: name, Columns: header, Rows: rows}
	if err := schema.Validate(rs); err != nil {
		return nil, err
	}

	s.logger.Info("Loaded dataset",
		zap.String("file", name),
		zap.String("kind", string(kind)),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(header)))
	return rs, nil
}

// SaveRecords writes the record set to the output directory under its
// original file name, preserving column order. Missing cells render
// as NA.
func (s *CSVStore) SaveRecords(ctx context.Context, rs *dataset.RecordSet) error {
	records := make([][]string, 0, rs.Len()+1)
	records = append(records, rs.Columns)
	for _, row := range rs.Rows {
		rec := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			rec[i] = row.Get(col).String()
		}
		records = append(records, rec)
	}

	path := filepath.Join(s.outputDir, rs.Name)
	if err := writeCSV(path, records); err != nil {
		return fmt.Errorf("failed to write records for %s: %w", rs.Name, err)
	}

	s.logger.Info("Wrote corrected records",
		zap.String("file", path),
		zap.Int("rows", rs.Len()))
	return nil
}

// SaveLog writes one pass log. A pass that logged nothing writes
// nothing.
func (s *CSVStore) SaveLog(ctx context.Context, datasetName string, pass dataset.PassName, log *audit.Log) error {
	if log.Empty() {
		s.logger.Info("Pass produced no log entries",
			zap.String("dataset", datasetName),
			zap.String("pass", string(pass)))
		return nil
	}

	path := filepath.Join(s.outputDir, LogFileName(pass, datasetName))
	if err := writeCSV(path, log.Records()); err != nil {
		return fmt.Errorf("failed to write %s log for %s: %w", pass, datasetName, err)
	}

	s.logger.Info("Wrote pass log",
		zap.String("file", path),
		zap.Int("entries", log.Len()))
	return nil
}

func (s *CSVStore) Close() error { return nil }

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
