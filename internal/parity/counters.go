package parity

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ArtifactExtensions lists the artifact types the checker can count.
var ArtifactExtensions = []string{".txt", ".tsv", ".csv", ".md", ".parquet"}

var errUnknownArtifact = errors.New("unsupported artifact type")

var tableMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// CountRows returns the number of data rows in the artifact at path: records
// after the header for delimited text, table body rows for Markdown, and the
// footer row count for parquet.
func CountRows(path string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".tsv":
		return countDelimited(path, '\t')
	case ".csv":
		return countDelimited(path, ',')
	case ".md":
		return countMarkdownRows(path)
	case ".parquet":
		return countParquetRows(path)
	}
	return 0, fmt.Errorf("%s: %w", path, errUnknownArtifact)
}

// countDelimited counts records after the header. Quoted fields spanning
// several lines count once.
func countDelimited(path string, comma rune) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return n - 1, nil
}

// countMarkdownRows counts GFM table body rows across every table in the file.
func countMarkdownRows(path string) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	doc := tableMarkdown.Parser().Parse(text.NewReader(src))

	n := 0
	err = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && node.Kind() == east.KindTableRow {
			n++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// countParquetRows reads the row count from the parquet footer.
func countParquetRows(path string) (int, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return 0, err
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 1)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	defer pr.ReadStop()
	return int(pr.GetNumRows()), nil
}
