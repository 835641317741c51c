package catalog

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ShapefileSource reads point features and their DBF attributes from a local
// .shp file. Point geometry supplies the coordinate; attribute columns supply
// the remaining fields and act as a fallback when a feature has no point.
type ShapefileSource struct {
	Path string
}

// Fetch implements Source.
func (s *ShapefileSource) Fetch(ctx context.Context) ([]Record, error) {
	reader, err := shp.Open(s.Path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var records []Record
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "catalog: read shapefile")
		}

		_, shape := reader.Shape()
		r := make(Record, len(names)+2)
		for i, name := range names {
			r[name] = strings.TrimSpace(reader.Attribute(i))
		}

		switch p := shape.(type) {
		case *shp.Point:
			r["latitude"] = p.Y
			r["longitude"] = p.X
		case nil:
		default:
			zap.L().Debug("catalog: non-point shape, using attribute coordinates",
				zap.String("path", s.Path), zap.Int("row", len(records)))
		}
		records = append(records, r)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: read shapefile")
	}
	return records, nil
}
