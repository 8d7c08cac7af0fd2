// pkg/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// Store moves record sets and pass logs between the pipeline and
// whatever holds them. The shipped implementation is CSV files in a
// directory; tests use the in-memory store.
type Store interface {
	// Kinds lists the dataset kinds available to load, in processing
	// order.
	Kinds(ctx context.Context) ([]dataset.DatasetKind, error)

	// Load reads the dataset of the given kind.
	Load(ctx context.Context, kind dataset.DatasetKind) (*dataset.RecordSet, error)

	// SaveRecords writes a record set, including any corrections made
	// since it was loaded.
	SaveRecords(ctx context.Context, rs *dataset.RecordSet) error

	// SaveLog writes one pass's log table next to the records.
	SaveLog(ctx context.Context, datasetName string, pass dataset.PassName, log *audit.Log) error

	// Close releases resources
	Close() error
}

// ErrNoDataset marks a kind with no matching file in the input
// location. Runs over "all discovered" kinds skip these; runs that
// name a kind explicitly fail on it.
var ErrNoDataset = errors.New("dataset not found")

// LogFileName names a pass log after the dataset file it was produced
// from: the geo pass over sites_2024.csv writes geo_log_sites_2024.csv.
func LogFileName(pass dataset.PassName, datasetFile string) string {
	return string(pass) + "_log_" + datasetFile
}
