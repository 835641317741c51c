package catalog

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-locator/internal/fetcher"
)

// Source supplies raw directory records.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Record, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context) ([]Record, error) { return f(ctx) }

// JSONSource reads a JSON array of records from a URL or a local path.
type JSONSource struct {
	Location string
	Fetcher  fetcher.Fetcher
}

// Fetch implements Source.
func (s *JSONSource) Fetch(ctx context.Context) ([]Record, error) {
	rc, err := fetcher.Open(ctx, s.Fetcher, s.Location)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open json source")
	}
	defer rc.Close() //nolint:errcheck

	records, err := fetcher.DecodeJSONArray[Record](ctx, rc)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: decode json source")
	}
	return records, nil
}

// CSVSource reads a header-keyed CSV file from a URL or a local path.
type CSVSource struct {
	Location string
	Fetcher  fetcher.Fetcher
	Options  fetcher.CSVOptions
}

// Fetch implements Source.
func (s *CSVSource) Fetch(ctx context.Context) ([]Record, error) {
	rc, err := fetcher.Open(ctx, s.Fetcher, s.Location)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open csv source")
	}
	defer rc.Close() //nolint:errcheck

	rows, err := fetcher.ReadCSVRecords(ctx, rc, s.Options)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read csv source")
	}
	return fromStringRows(rows), nil
}

// XLSXSource reads a header-keyed worksheet from a local workbook.
type XLSXSource struct {
	Path    string
	Options fetcher.XLSXOptions
}

// Fetch implements Source.
func (s *XLSXSource) Fetch(_ context.Context) ([]Record, error) {
	rows, err := fetcher.ReadXLSXRecords(s.Path, s.Options)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read xlsx source")
	}
	return fromStringRows(rows), nil
}

func fromStringRows(rows []map[string]string) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, RecordFromStrings(row))
	}
	return out
}
