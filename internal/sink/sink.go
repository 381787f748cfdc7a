// Package sink defines where assembled workbooks go. The physical xlsx
// writer lives outside this module; csvsink renders a workbook as plain files
// any spreadsheet tool can import.
package sink

import (
	"context"

	"maude/internal/report"
)

// Sink persists a workbook.
type Sink interface {
	Write(ctx context.Context, wb *report.Workbook) error
}
