package partition

import "github.com/harrison/trialsift/internal/models"

// Regroup groups records by the file they were read from. Groups follow the
// order in which their file first appears in records; records keep their order
// within a group. Files without records get no group.
func Regroup(c *models.Corpus, records []models.Record) []models.FileChunk {
	index := make(map[int]int)
	var chunks []models.FileChunk
	for _, rec := range records {
		fi := rec.Origin.FileIndex
		pos, ok := index[fi]
		if !ok {
			pos = len(chunks)
			index[fi] = pos
			chunks = append(chunks, models.FileChunk{Source: c.Files[fi]})
		}
		chunks[pos].Records = append(chunks[pos].Records, rec)
	}
	return chunks
}

// RegroupPositional slices records by the original per-file counts: file i gets
// the next Files[i].Count records regardless of where they came from. It agrees
// with Regroup only when every file's matches form a prefix of its records.
func RegroupPositional(c *models.Corpus, records []models.Record) []models.FileChunk {
	var chunks []models.FileChunk
	rest := records
	for _, f := range c.Files {
		if len(rest) == 0 {
			break
		}
		n := min(f.Count, len(rest))
		if n == 0 {
			continue
		}
		chunks = append(chunks, models.FileChunk{Source: f, Records: rest[:n]})
		rest = rest[n:]
	}
	return chunks
}

// Misattributed counts records placed in a chunk for a file they were not read from.
func Misattributed(c *models.Corpus, chunks []models.FileChunk) int {
	n := 0
	for _, chunk := range chunks {
		for _, rec := range chunk.Records {
			if c.Files[rec.Origin.FileIndex].Path != chunk.Source.Path {
				n++
			}
		}
	}
	return n
}
