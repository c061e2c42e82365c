package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"moneymate/internal/log"
)

// Format identifies an export rendering.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a request parameter to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatText, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType returns the MIME type served for downloads.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatText:
		return "text/plain"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Filename builds the timestamped download name for a month's export,
// e.g. MoneyMate_Report_2025-03_2025-03-31T10-15-00.csv.
func Filename(month string, f Format, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15-04-05")
	return fmt.Sprintf("MoneyMate_Report_%s_%s.%s", month, stamp, f)
}

// Exporter renders reports and keeps a copy of each export on disk.
type Exporter struct {
	dir    string
	logger *log.Logger
}

func NewExporter(dir string, logger *log.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger.WithComponent(log.ComponentExport)}
}

// Export renders v in the given format and writes it under the export
// directory. It returns the file name and the rendered bytes so the
// caller can also stream them as a download.
func (e *Exporter) Export(v View, format Format, now time.Time) (string, []byte, error) {
	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data = RenderCSV(v)
	case FormatText:
		data = RenderText(v, now)
	case FormatXLSX:
		data, err = RenderXLSX(v)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", nil, fmt.Errorf("rendering %s export: %w", format, err)
	}

	name := Filename(v.Month, format, now)
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", nil, fmt.Errorf("writing export: %w", err)
	}

	e.logger.Info("report exported",
		log.FieldMonth, v.Month,
		log.FieldExportFormat, string(format),
		log.FieldExportFile, path,
	)
	return name, data, nil
}
