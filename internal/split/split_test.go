package split

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harrison/trialsift/internal/corpus"
	"github.com/harrison/trialsift/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCorpus creates one file per count, each record {"id": "<file>-<n>"}.
func buildCorpus(t *testing.T, counts ...int) *models.Corpus {
	t.Helper()
	root := t.TempDir()
	for i, n := range counts {
		doc := "["
		for j := 0; j < n; j++ {
			if j > 0 {
				doc += ","
			}
			doc += fmt.Sprintf(`{"id": "f%d-%d"}`, i, j)
		}
		doc += "]"
		path := filepath.Join(root, fmt.Sprintf("part%d.json", i))
		require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	}
	c, err := corpus.Read(root, corpus.ReadOptions{}, nil)
	require.NoError(t, err)
	return c
}

func ids(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		v, _ := r.Value.Get("id")
		out[i], _ = v.Str()
	}
	return out
}

func TestSplit_TenRecordsThreeFiles(t *testing.T) {
	c := buildCorpus(t, 4, 3, 3)

	res, err := Split(c, 0.2, NewRand(1))
	require.NoError(t, err)
	assert.Len(t, res.Train, 8)
	assert.Len(t, res.Test, 2)

	assert.Equal(t, 8, models.CountRecords(res.TrainChunks))
	assert.Equal(t, 2, models.CountRecords(res.TestChunks))

	// train: 4 + 3 + 1; test: the first file takes both
	trainSizes := []int{}
	for _, ch := range res.TrainChunks {
		trainSizes = append(trainSizes, len(ch.Records))
	}
	assert.Equal(t, []int{4, 3, 1}, trainSizes)
	require.Len(t, res.TestChunks, 1)
	assert.Equal(t, "part0.json", res.TestChunks[0].Source.RelPath)

	// every record lands in exactly one group
	all := append(ids(res.Train), ids(res.Test)...)
	sort.Strings(all)
	want := ids(c.Records)
	sort.Strings(want)
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("split lost or duplicated records (-want +got):\n%s", diff)
	}
}

func TestSplit_Sizes(t *testing.T) {
	tests := []struct {
		counts    []int
		fraction  float64
		wantTrain int
		wantTest  int
	}{
		{[]int{1}, 0.2, 1, 0},
		{[]int{0}, 0.2, 0, 0},
		{[]int{5, 5}, 0.3, 7, 3},
		{[]int{3}, 0.5, 1, 2},
		{[]int{7, 0, 2}, 0.1, 8, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v@%v", tt.counts, tt.fraction), func(t *testing.T) {
			c := buildCorpus(t, tt.counts...)
			res, err := Split(c, tt.fraction, NewRand(42))
			require.NoError(t, err)
			assert.Len(t, res.Train, tt.wantTrain)
			assert.Len(t, res.Test, tt.wantTest)
			assert.Equal(t, c.Total(), len(res.Train)+len(res.Test))
		})
	}
}

func TestSplit_InvalidFraction(t *testing.T) {
	c := buildCorpus(t, 2)
	for _, f := range []float64{0, 1, -0.5, 1.5} {
		_, err := Split(c, f, nil)
		assert.True(t, errors.Is(err, ErrInvalidFraction), "fraction %v", f)
	}
}

func TestSplit_SeedIsDeterministic(t *testing.T) {
	c := buildCorpus(t, 6, 4)

	a, err := Split(c, 0.25, NewRand(99))
	require.NoError(t, err)
	b, err := Split(c, 0.25, NewRand(99))
	require.NoError(t, err)
	assert.Equal(t, ids(a.Test), ids(b.Test))

	// the corpus itself keeps its read order
	assert.Equal(t, "f0-0", ids(c.Records)[0])
}

func TestRechunk(t *testing.T) {
	c := buildCorpus(t, 2, 0, 3)

	chunks := Rechunk(c.Records[:4], c.Files)
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"f0-0", "f0-1"}, ids(chunks[0].Records))
	assert.Equal(t, "part2.json", chunks[1].Source.RelPath)
	assert.Equal(t, []string{"f2-0", "f2-1"}, ids(chunks[1].Records))

	assert.Empty(t, Rechunk(nil, c.Files))
}

func TestSuffixName(t *testing.T) {
	name := SuffixName(TrainSuffix)
	assert.Equal(t, "NCT001_train.json", name(models.SourceFile{RelPath: "NCT001.json"}))
	assert.Equal(t, filepath.Join("2020", "a.b_test.json"),
		SuffixName(TestSuffix)(models.SourceFile{RelPath: filepath.Join("2020", "a.b.JSON")}))
}

func TestWrite(t *testing.T) {
	c := buildCorpus(t, 4, 3, 3)
	res, err := Split(c, 0.2, NewRand(7))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "random_split")
	report, err := Write(out, res, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, report.Train.Total)
	assert.Equal(t, 2, report.Test.Total)

	for _, name := range []string{"part0_train.json", "part1_train.json", "part2_train.json", "part0_test.json"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	// empty test chunks are skipped
	assert.NoFileExists(t, filepath.Join(out, "part1_test.json"))
	assert.NoFileExists(t, filepath.Join(out, "part2_test.json"))

	n, err := corpus.CountRecords(filepath.Join(out, "part2_train.json"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
