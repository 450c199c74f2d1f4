package hexbin

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrMissingColumn is returned when a CSV header lacks a requested column.
var ErrMissingColumn = errors.New("missing CSV column")

// Point is one CSV sample.
type Point struct {
	Lon, Lat, Value float64
}

// ReadCSV parses points from a CSV file with a header row. Rows whose
// coordinates or value do not parse are logged and skipped.
func ReadCSV(r io.Reader, lonCol, latCol, valueCol string, logger logrus.FieldLogger) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	cols := [3]int{}
	for i, name := range []string{lonCol, latCol, valueCol} {
		c, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrMissingColumn)
		}
		cols[i] = c
	}

	var points []Point
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		var vals [3]float64
		ok := true
		for i, c := range cols {
			if c >= len(rec) {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			logger.WithField("line", line).Warn("Skipping row with unparsable values")
			continue
		}
		points = append(points, Point{Lon: vals[0], Lat: vals[1], Value: vals[2]})
	}
	return points, nil
}
