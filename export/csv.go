package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/remiges-tech/amlsynth/synth"
	"github.com/remiges-tech/logharbour/logharbour"
)

// Exporter writes datasets as CSV tables and reads them back.
type Exporter struct {
	logger *logharbour.Logger
}

// NewExporter returns an Exporter logging under the export module.
func NewExporter(logger *logharbour.Logger) *Exporter {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Exporter{logger: logger.WithModule("export")}
}

// Write stores the four tables of ds under dir. The tables are written into
// a temporary sibling directory which then replaces dir, so dir holds either
// the previous export or the complete new one, never a partial one.
func (e *Exporter) Write(dir string, ds *synth.Dataset) error {
	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", dir, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return fmt.Errorf("export target %s exists and is not a directory", dir)
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temporary export directory: %w", err)
	}
	if err := writeTables(tmp, ds); err != nil {
		os.RemoveAll(tmp)
		e.logger.Error(err).LogActivity("CSV export failed", map[string]any{"dir": dir})
		return err
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		os.RemoveAll(tmp)
		e.logger.Error(err).LogActivity("CSV export failed", map[string]any{"dir": dir})
		return err
	}
	if err := replaceDir(tmp, dir); err != nil {
		os.RemoveAll(tmp)
		e.logger.Error(err).LogActivity("CSV export failed", map[string]any{"dir": dir})
		return err
	}

	e.logger.Info().LogActivity("CSV export written", map[string]any{
		"dir":          dir,
		"customers":    len(ds.Customers),
		"accounts":     len(ds.Accounts),
		"merchants":    len(ds.Merchants),
		"transactions": len(ds.Transactions),
	})
	return nil
}

func writeTables(dir string, ds *synth.Dataset) error {
	if err := writeTable(dir, CustomersFile, customerHeader, ds.Customers, infallible(customerRecord)); err != nil {
		return err
	}
	if err := writeTable(dir, AccountsFile, accountHeader, ds.Accounts, infallible(accountRecord)); err != nil {
		return err
	}
	if err := writeTable(dir, MerchantsFile, merchantHeader, ds.Merchants, infallible(merchantRecord)); err != nil {
		return err
	}
	return writeTable(dir, TransactionsFile, transactionHeader, ds.Transactions, transactionRecord)
}

func infallible[T any](f func(T) []string) func(T) ([]string, error) {
	return func(v T) ([]string, error) { return f(v), nil }
}

func writeTable[T any](dir, name string, header []string, rows []T, record func(T) ([]string, error)) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range rows {
		rec, err := record(row)
		if err != nil {
			return &RecordError{File: name, Row: i + 1, Err: err}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// rename is os.Rename; tests replace it to fail individual moves.
var rename = os.Rename

// replaceDir moves src to dst. An existing dst is moved aside first and
// removed only once src is in place. If src cannot be moved in, the
// previous dst is moved back; failing that, the error names where it was left.
func replaceDir(src, dst string) error {
	old := ""
	if _, err := os.Stat(dst); err == nil {
		old = src + ".old"
		if err := rename(dst, old); err != nil {
			return fmt.Errorf("move previous export aside: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := rename(src, dst); err != nil {
		err = fmt.Errorf("move export into place: %w", err)
		if old != "" {
			if rerr := rename(old, dst); rerr != nil {
				return errors.Join(err, fmt.Errorf("restore previous export from %s: %w", old, rerr))
			}
		}
		return err
	}
	if old != "" {
		return os.RemoveAll(old)
	}
	return nil
}

// Read parses an export directory back into a dataset.
func (e *Exporter) Read(dir string) (*synth.Dataset, error) {
	var ds synth.Dataset
	var err error
	if ds.Customers, err = readTable(dir, CustomersFile, customerHeader, parseCustomer); err != nil {
		return nil, err
	}
	if ds.Accounts, err = readTable(dir, AccountsFile, accountHeader, parseAccount); err != nil {
		return nil, err
	}
	if ds.Merchants, err = readTable(dir, MerchantsFile, merchantHeader, parseMerchant); err != nil {
		return nil, err
	}
	if ds.Transactions, err = readTable(dir, TransactionsFile, transactionHeader, parseTransaction); err != nil {
		return nil, err
	}
	e.logger.Debug0().LogActivity("CSV export read", map[string]any{
		"dir":          dir,
		"transactions": len(ds.Transactions),
	})
	return &ds, nil
}

func readTable[T any](dir, name string, header []string, parse func([]string) (T, error)) ([]T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(recs) == 0 || !slices.Equal(recs[0], header) {
		return nil, fmt.Errorf("%s: unexpected header", name)
	}

	rows := make([]T, 0, len(recs)-1)
	for i, rec := range recs[1:] {
		row, err := parse(rec)
		if err != nil {
			return nil, &RecordError{File: name, Row: i + 1, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
