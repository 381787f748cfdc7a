// Package csvsink writes a workbook as a directory of CSV files, one per
// sheet, plus a workbook.json manifest carrying the tab colors, block
// positions and chart hints a spreadsheet writer needs.
//
// Layout for run id R under Dir:
//
//	Dir/R/Events.csv
//	Dir/R/Summary.csv      blocks at their StartRow, empty lines between
//	Dir/R/workbook.json
package csvsink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"maude/internal/logger"
	"maude/internal/report"
	"maude/internal/sink"
)

// ManifestName is the manifest file written next to the sheets.
const ManifestName = "workbook.json"

// Sink writes sheets concurrently, at most Workers at a time.
type Sink struct {
	Dir     string
	Workers int
	Log     *logger.Logger
}

var _ sink.Sink = (*Sink)(nil)

func New(dir string, log *logger.Logger) *Sink {
	if log == nil {
		log = logger.Nop()
	}
	return &Sink{Dir: dir, Workers: runtime.GOMAXPROCS(0), Log: log}
}

// Path is the directory a workbook with runID is written to.
func (s *Sink) Path(runID string) string {
	if runID == "" {
		return s.Dir
	}
	return filepath.Join(s.Dir, runID)
}

// Manifest describes the written files.
type Manifest struct {
	RunID  string             `json:"run_id"`
	Sheets []ManifestSheet    `json:"sheets"`
	Charts []report.ChartHint `json:"charts,omitempty"`
}

type ManifestSheet struct {
	Name     string          `json:"name"`
	File     string          `json:"file"`
	TabColor string          `json:"tab_color,omitempty"`
	Blocks   []ManifestBlock `json:"blocks"`
}

type ManifestBlock struct {
	Table       string `json:"table"`
	StartRow    int    `json:"start_row"`
	EndRow      int    `json:"end_row"`
	Columns     int    `json:"columns"`
	HeaderColor string `json:"header_color,omitempty"`
}

// FileName maps a sheet name to its CSV file name.
func FileName(sheet string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
	return r.Replace(sheet) + ".csv"
}

// Write renders every sheet and then the manifest. A failed sheet cancels
// the others; files already written are left in place.
func (s *Sink) Write(ctx context.Context, wb *report.Workbook) error {
	dir := s.Path(wb.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("csvsink: mkdir %s: %w", dir, err)
	}
	log := s.Log
	if log == nil {
		log = logger.Nop()
	}

	g, ctx := errgroup.WithContext(ctx)
	if s.Workers > 0 {
		g.SetLimit(s.Workers)
	}
	for _, sh := range wb.Sheets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, FileName(sh.Name))
			if err := writeSheet(path, sh); err != nil {
				return fmt.Errorf("csvsink: sheet %s: %w", sh.Name, err)
			}
			log.Debug("csvsink: sheet written", "sheet", sh.Name, "path", path, "blocks", len(sh.Blocks))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writeManifest(filepath.Join(dir, ManifestName), manifest(wb)); err != nil {
		return err
	}
	log.Info("csvsink: workbook written", "dir", dir, "sheets", len(wb.Sheets), "charts", len(wb.Charts))
	return nil
}

func writeSheet(path string, sh *report.Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	row := 0
	for _, b := range sh.Blocks {
		for ; row < b.StartRow; row++ {
			if err := w.Write(nil); err != nil {
				f.Close()
				return err
			}
		}
		if err := w.Write(b.Table.Headers()); err != nil {
			f.Close()
			return err
		}
		row++
		cells := make([]string, len(b.Table.Columns))
		for _, r := range b.Table.Rows {
			for i := range cells {
				cells[i] = ""
				if i < len(r) {
					cells[i] = r[i].Text()
				}
			}
			if err := w.Write(cells); err != nil {
				f.Close()
				return err
			}
			row++
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func manifest(wb *report.Workbook) Manifest {
	m := Manifest{RunID: wb.RunID, Charts: wb.Charts}
	for _, sh := range wb.Sheets {
		ms := ManifestSheet{Name: sh.Name, File: FileName(sh.Name), TabColor: sh.TabColor}
		for _, b := range sh.Blocks {
			ms.Blocks = append(ms.Blocks, ManifestBlock{
				Table:       b.Table.Name,
				StartRow:    b.StartRow,
				EndRow:      b.EndRow(),
				Columns:     len(b.Table.Columns),
				HeaderColor: b.HeaderColor,
			})
		}
		m.Sheets = append(m.Sheets, ms)
	}
	return m
}

func writeManifest(path string, m Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("csvsink: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("csvsink: write manifest: %w", err)
	}
	return nil
}
