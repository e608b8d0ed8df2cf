// Package export renders tabular data as CSV, PDF or XLSX documents.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/climavet/climavet/internal/platform/apperr"
)

// Format is a supported document format.
type Format string

const (
	CSV  Format = "csv"
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
)

// ParseFormat accepts csv, pdf or xlsx in any case. An empty string is CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "pdf":
		return PDF, nil
	case "xlsx":
		return XLSX, nil
	default:
		return "", apperr.Validation("unsupported export format %q (want csv, pdf or xlsx)", s)
	}
}

// ContentType is the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension is the file extension without the dot.
func (f Format) Extension() string { return string(f) }

// Table is a titled grid of string cells. Every row should have one cell per
// header.
type Table struct {
	Title   string
	Meta    []string
	Headers []string
	Rows    [][]string
}

// Render writes t to w in format f.
func Render(w io.Writer, f Format, t Table) error {
	switch f {
	case CSV:
		return writeCSV(w, t)
	case PDF:
		return writePDF(w, t)
	case XLSX:
		return writeXLSX(w, t)
	default:
		return fmt.Errorf("export: unknown format %q", f)
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename builds an attachment name like "flood_preparedness_plan_items.csv".
func Filename(base, suffix string, f Format) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(base), "_"), "_")
	if slug == "" {
		slug = "export"
	}
	if suffix != "" {
		slug += "_" + suffix
	}
	return slug + "." + f.Extension()
}
