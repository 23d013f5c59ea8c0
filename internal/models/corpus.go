package models

import "fmt"

// Provenance ties a record to the file it was read from.
// It is assigned once by the corpus reader and never persisted.
type Provenance struct {
	FileIndex int // Index into Corpus.Files
	Offset    int // Position of the record inside its file
}

// Record is one logical trial document.
type Record struct {
	Value  Value
	Origin Provenance
}

// SourceFile describes one discovered JSON file and how many records it held.
// Files that failed to load stay in the list with Count 0 and Err set.
type SourceFile struct {
	Path    string // Absolute path
	RelPath string // Path relative to the corpus root
	Count   int    // Records contributed to the corpus
	Err     error  // Recovered load error, if any
}

// Corpus is the in-memory record set of a single run.
type Corpus struct {
	Root    string
	Records []Record
	Files   []SourceFile
}

// Total returns the number of records in the corpus.
func (c *Corpus) Total() int { return len(c.Records) }

// Skipped returns the descriptors of files that contributed no records because of an error.
func (c *Corpus) Skipped() []SourceFile {
	var out []SourceFile
	for _, f := range c.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks the record conservation invariant: descriptor counts sum to the
// number of records, and the i-th block of Files[i].Count records came from file i.
func (c *Corpus) Validate() error {
	sum := 0
	for _, f := range c.Files {
		if f.Count < 0 {
			return fmt.Errorf("negative record count %d for %s", f.Count, f.RelPath)
		}
		sum += f.Count
	}
	if sum != len(c.Records) {
		return fmt.Errorf("descriptor counts sum to %d but corpus holds %d records", sum, len(c.Records))
	}

	pos := 0
	for i, f := range c.Files {
		for off := 0; off < f.Count; off++ {
			got := c.Records[pos].Origin
			if got.FileIndex != i || got.Offset != off {
				return fmt.Errorf("record %d has provenance (%d,%d), want (%d,%d)",
					pos, got.FileIndex, got.Offset, i, off)
			}
			pos++
		}
	}
	return nil
}

// FileChunk is the slice of an output group destined for one file.
type FileChunk struct {
	Source  SourceFile
	Records []Record
}

// Values returns the record values of the chunk.
func (fc FileChunk) Values() []Value {
	out := make([]Value, len(fc.Records))
	for i, r := range fc.Records {
		out[i] = r.Value
	}
	return out
}

// CountRecords sums the records across chunks.
func CountRecords(chunks []FileChunk) int {
	n := 0
	for _, c := range chunks {
		n += len(c.Records)
	}
	return n
}
