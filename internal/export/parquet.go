package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/trialsift/internal/logger"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetWriters is the number of goroutines encoding each row group.
const parquetWriters = 4

// ParquetRecord is the schema of a trialsift parquet artifact.
type ParquetRecord struct {
	SourceFile string `parquet:"name=source_file, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	RecordJSON string `parquet:"name=record_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// writeParquet writes rows to dir/<category>.parquet, one parquet row per record.
// The file is staged under a temporary name and renamed into place.
func writeParquet(dir, category string, rows []Row, log logger.Logger) (Artifact, error) {
	path := filepath.Join(dir, category+".parquet")
	tmp := filepath.Join(dir, ".tmp-"+category+".parquet")

	if err := writeParquetFile(tmp, rows); err != nil {
		os.Remove(tmp)
		return Artifact{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Artifact{}, fmt.Errorf("failed to rename %s to %s: %w", tmp, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}
	logger.Infof(log, "Converted %d rows to %s", len(rows), path)
	return Artifact{Path: path, Rows: len(rows), Bytes: info.Size()}, nil
}

// createParquetFile opens the staging file of a parquet artifact.
var createParquetFile = local.NewLocalFileWriter

func writeParquetFile(path string, rows []Row) error {
	fw, err := createParquetFile(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file %s: %w", path, err)
	}
	if err := writeParquetRows(fw, rows); err != nil {
		fw.Close()
		return err
	}
	// a failed close can leave the footer unwritten
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file %s: %w", path, err)
	}
	return nil
}

func writeParquetRows(fw source.ParquetFile, rows []Row) error {
	pw, err := writer.NewParquetWriter(fw, new(ParquetRecord), parquetWriters)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range rows {
		rec := ParquetRecord{SourceFile: r.Source, RecordJSON: r.Value.Compact()}
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("failed to write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalise parquet file: %w", err)
	}
	return nil
}
