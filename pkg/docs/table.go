package docs

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"path"

	"github.com/mphost/mph/pkg/render"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseTable reads CSV data: the first record is the header row. Ragged rows
// are kept as-is. A malformed record stops parsing; the rows read so far are
// returned together with the error.
func ParseTable(name string, data []byte) (*render.Table, error) {
	t := &render.Table{Filename: path.Base(name), Headers: []string{}, Rows: [][]string{}}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1

	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return t, err
		}
		if first {
			t.Headers = record
			first = false
			continue
		}
		t.Rows = append(t.Rows, record)
	}
}

func parseTableLogged(name string, data []byte, log *slog.Logger) *render.Table {
	t, err := ParseTable(name, data)
	if err != nil {
		log.Warn("malformed csv, showing rows read so far", "file", name, "rows", len(t.Rows), "error", err)
	}
	return t
}
