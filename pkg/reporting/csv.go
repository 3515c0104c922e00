package reporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/darwinml/darwin-go/pkg/errors"
)

// CSV persists generation records as long-format rows:
//
//	generation,individual_index,name,value
//
// with one fenotype/depth/nodes/evaluation row per individual. The whole file
// is rewritten on every checkpoint so a crashed run still leaves a complete,
// parseable log of everything reported so far.
type CSV struct {
	mu   sync.Mutex
	path string
	rows [][]string
}

// NewCSV creates a CSV reporter writing logs.csv inside dir. The directory is
// created when missing.
func NewCSV(dir string) (*CSV, error) {
	if _, err := EnsureDir(dir); err != nil {
		return nil, errors.Wrap(err, errors.ReportingFailed, "creating output directory")
	}
	return &CSV{path: filepath.Join(dir, "logs.csv")}, nil
}

// Path returns the location of the log file.
func (c *CSV) Path() string {
	return c.path
}

func (c *CSV) ReportGeneration(ctx context.Context, records []Record) error {
	if err := errors.CheckContext(ctx, "csv report"); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		generation := strconv.Itoa(r.Generation)
		index := strconv.Itoa(r.Index)
		c.rows = append(c.rows,
			[]string{generation, index, "fenotype", r.Fenotype},
			[]string{generation, index, "depth", strconv.Itoa(r.Depth)},
			[]string{generation, index, "nodes", strconv.Itoa(r.Size)},
			[]string{generation, index, "evaluation", fmt.Sprintf("%v", r.Evaluation)},
		)
	}

	return c.flush()
}

func (c *CSV) flush() error {
	f, err := os.Create(c.path)
	if err != nil {
		return errors.Wrap(err, errors.ReportingFailed, "opening csv log")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"generation", "individual_index", "name", "value"}); err != nil {
		return errors.Wrap(err, errors.ReportingFailed, "writing csv header")
	}
	if err := w.WriteAll(c.rows); err != nil {
		return errors.Wrap(err, errors.ReportingFailed, "writing csv rows")
	}
	w.Flush()
	return errors.Wrap(w.Error(), errors.ReportingFailed, "flushing csv log")
}

func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flush()
}
