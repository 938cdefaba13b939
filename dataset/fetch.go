package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/cardiogo/cardiogo/pkg/errors"
)

// Fetch retrieves the dataset body from url with a single GET. There is no
// retry: an unreachable source aborts the whole run. The caller must close
// the returned reader.
func Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dataset.Fetch: build request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Fetch: GET %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Newf("dataset.Fetch: GET %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}

// ReadTable parses headerless CSV from r into a table with the given column
// names. Every record must have exactly len(names) fields; a mismatch is a
// SchemaError and aborts the read. The "?" sentinel becomes NaN, and a
// DataConversionWarning per affected column reports how many were
// converted. No row is ever silently dropped.
func ReadTable(r io.Reader, names []string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(names)
	cr.TrimLeadingSpace = true

	values := make([][]float64, len(names))
	missing := make([]int, len(names))
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if pe, ok := err.(*csv.ParseError); ok && errors.Is(pe.Err, csv.ErrFieldCount) {
				return nil, errors.NewSchemaError(line, len(names), len(rec))
			}
			return nil, errors.Wrapf(err, "dataset.ReadTable: line %d", line)
		}
		for j, field := range rec {
			field = strings.TrimSpace(field)
			if field == MissingSentinel {
				values[j] = append(values[j], math.NaN())
				missing[j]++
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.NewValueError("dataset.ReadTable",
					errors.Newf("line %d, column %q: cannot parse %q", line, names[j], field).Error())
			}
			values[j] = append(values[j], v)
		}
	}
	if line == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.ReadTable")
	}

	for j, m := range missing {
		if m > 0 {
			errors.Warn(errors.NewDataConversionWarning(
				names[j], "string", "NaN", m, "missing-value sentinel"))
		}
	}

	cols := make([]Column, len(names))
	for j, name := range names {
		cols[j] = Column{Name: name, Kind: Numeric, Values: values[j]}
	}
	return New(cols)
}
