// pkg/store/memory.go
package store

import (
	"context"
	"fmt"

	"github.com/borealfield/surveyqc/pkg/audit"
	"github.com/borealfield/surveyqc/pkg/dataset"
)

// Memory is an in-memory Store used in tests and dry runs. Seed Sets
// before calling Load; saved output accumulates in SavedRecords and
// SavedLogs keyed by file name.
type Memory struct {
	Sets         map[dataset.DatasetKind]*dataset.RecordSet
	SavedRecords map[string]*dataset.RecordSet
	SavedLogs    map[string]*audit.Log
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		Sets:         make(map[dataset.DatasetKind]*dataset.RecordSet),
		SavedRecords: make(map[string]*dataset.RecordSet),
		SavedLogs:    make(map[string]*audit.Log),
	}
}

// Seed registers a record set for Load.
func (m *Memory) Seed(rs *dataset.RecordSet) {
	m.Sets[rs.Kind] = rs
}

func (m *Memory) Kinds(ctx context.Context) ([]dataset.DatasetKind, error) {
	var kinds []dataset.DatasetKind
	for _, k := range dataset.Kinds() {
		if _, ok := m.Sets[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

func (m *Memory) Load(ctx context.Context, kind dataset.DatasetKind) (*dataset.RecordSet, error) {
	rs, ok := m.Sets[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no seeded records for %q", ErrNoDataset, kind)
	}
	return rs, nil
}

func (m *Memory) SaveRecords(ctx context.Context, rs *dataset.RecordSet) error {
	m.SavedRecords[rs.Name] = rs.Clone()
	return nil
}

func (m *Memory) SaveLog(ctx context.Context, datasetName string, pass dataset.PassName, log *audit.Log) error {
	m.SavedLogs[LogFileName(pass, datasetName)] = log
	return nil
}

func (m *Memory) Close() error {
	return nil
}
