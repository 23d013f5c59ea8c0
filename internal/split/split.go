// Package split divides a corpus into shuffled train and test groups.
//
// The split is position based: after a global shuffle each group is cut back into
// files using the original per-file record counts, so file i of a group receives
// the next Files[i].Count shuffled records whatever their origin.
package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"

	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/models"
	"github.com/harrison/trialsift/internal/partition"
)

// ErrInvalidFraction is returned for a test fraction outside (0,1).
var ErrInvalidFraction = errors.New("test fraction must be between 0 and 1 (exclusive)")

// Group suffixes appended to output file stems.
const (
	TrainSuffix = "train"
	TestSuffix  = "test"
)

// Result holds both groups, flat and rechunked.
type Result struct {
	Fraction    float64
	Train       []models.Record
	Test        []models.Record
	TrainChunks []models.FileChunk
	TestChunks  []models.FileChunk
}

// NewRand returns a PCG source seeded with seed, or with a random seed when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SplitPoint returns floor(n*(1-fraction)), the number of train records.
// The epsilon keeps products like 10*0.7 from flooring to 6.
func SplitPoint(n int, fraction float64) int {
	return int(math.Floor(float64(n)*(1-fraction) + 1e-9))
}

// Split shuffles every record of c with rng and cuts the sequence at SplitPoint.
// A nil rng uses a randomly seeded one. The corpus is not modified.
func Split(c *models.Corpus, fraction float64, rng *rand.Rand) (*Result, error) {
	if !(fraction > 0 && fraction < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFraction, fraction)
	}
	if rng == nil {
		rng = NewRand(0)
	}

	shuffled := slices.Clone(c.Records)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	at := SplitPoint(len(shuffled), fraction)
	res := &Result{
		Fraction: fraction,
		Train:    shuffled[:at],
		Test:     shuffled[at:],
	}
	res.TrainChunks = Rechunk(res.Train, c.Files)
	res.TestChunks = Rechunk(res.Test, c.Files)
	return res, nil
}

// Rechunk hands file i the next files[i].Count records. Files left with nothing
// get no chunk.
func Rechunk(records []models.Record, files []models.SourceFile) []models.FileChunk {
	var chunks []models.FileChunk
	rest := records
	for _, f := range files {
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

// SuffixName names a chunk <reldir>/<stem>_<suffix>.json.
func SuffixName(suffix string) partition.Namer {
	return func(sf models.SourceFile) string {
		base := filepath.Base(sf.RelPath)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		return filepath.Join(filepath.Dir(sf.RelPath), stem+"_"+suffix+".json")
	}
}

// WriteReport holds one summary per group.
type WriteReport struct {
	Train *partition.WriteSummary
	Test  *partition.WriteSummary
}

// Write stores both groups under outDir. Empty chunks produce no file.
func Write(outDir string, res *Result, log logger.Logger) (*WriteReport, error) {
	train, err := partition.WriteChunks(outDir, res.TrainChunks, SuffixName(TrainSuffix), log)
	if err != nil {
		return nil, fmt.Errorf("write train group: %w", err)
	}
	test, err := partition.WriteChunks(outDir, res.TestChunks, SuffixName(TestSuffix), log)
	if err != nil {
		return nil, fmt.Errorf("write test group: %w", err)
	}
	return &WriteReport{Train: train, Test: test}, nil
}
