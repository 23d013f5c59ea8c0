package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/trialsift/internal/filelock"
	"github.com/harrison/trialsift/internal/logger"
)

// rowEncoder renders a table header and its rows for one text format.
type rowEncoder interface {
	header(columns []string) ([]byte, error)
	row(cells []string) ([]byte, error)
}

// delimited writes tab or comma separated values with RFC 4180 quoting.
type delimited struct {
	comma rune
}

func (d delimited) header(columns []string) ([]byte, error) { return d.row(columns) }

func (d delimited) row(cells []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = d.comma
	if err := w.Write(cells); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// markdown writes GFM pipe tables.
type markdown struct{}

var markdownCell = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>", "\r", "")

func (markdown) header(columns []string) ([]byte, error) {
	head, _ := markdown{}.row(columns)
	var buf bytes.Buffer
	buf.Write(head)
	buf.WriteByte('|')
	for range columns {
		buf.WriteString(" --- |")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (markdown) row(cells []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('|')
	for _, c := range cells {
		buf.WriteByte(' ')
		buf.WriteString(markdownCell.Replace(c))
		buf.WriteString(" |")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// writeChunks writes t as <category>_part_<n><ext> files in dir. Every chunk
// repeats the header and stays within maxBytes unless a single row is larger on
// its own, in which case that row gets a chunk to itself. Rows are never split.
func writeChunks(dir, category, ext string, enc rowEncoder, t *table, maxBytes int64, log logger.Logger) ([]Artifact, int, error) {
	head, err := enc.header(t.columns)
	if err != nil {
		return nil, 0, fmt.Errorf("encode header: %w", err)
	}

	var (
		artifacts []Artifact
		oversized int
		buf       bytes.Buffer
		rows      int
	)
	flush := func() error {
		if rows == 0 {
			return nil
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_part_%d%s", category, len(artifacts)+1, ext))
		if err := filelock.AtomicWrite(path, buf.Bytes()); err != nil {
			return err
		}
		artifacts = append(artifacts, Artifact{Path: path, Rows: rows, Bytes: int64(buf.Len())})
		logger.Infof(log, "Converted %d rows to %s", rows, path)
		buf.Reset()
		rows = 0
		return nil
	}

	for i, cells := range t.rows {
		line, err := enc.row(cells)
		if err != nil {
			return nil, 0, fmt.Errorf("encode row %d: %w", i+1, err)
		}
		if rows > 0 && int64(buf.Len()+len(line)) > maxBytes {
			if err := flush(); err != nil {
				return nil, 0, err
			}
		}
		if rows == 0 {
			buf.Write(head)
			if int64(len(head)+len(line)) > maxBytes {
				oversized++
				logger.Warnf(log, "Row %d from %s needs %d bytes, above the %d byte chunk limit; writing it alone",
					i+1, cells[0], len(head)+len(line), maxBytes)
			}
		}
		buf.Write(line)
		rows++
	}
	if err := flush(); err != nil {
		return nil, 0, err
	}
	return artifacts, oversized, nil
}
