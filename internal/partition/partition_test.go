package partition

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/trialsift/internal/corpus"
	"github.com/harrison/trialsift/internal/filelock"
	"github.com/harrison/trialsift/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readCorpus(t *testing.T, root string) *models.Corpus {
	t.Helper()
	c, err := corpus.Read(root, corpus.ReadOptions{}, nil)
	require.NoError(t, err)
	return c
}

func readArray(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

const fileA = `[
  {"id": "A1", "Protocol": {"Conditions": {"List": ["Asthma"]}}},
  {"id": "A2", "Protocol": {"Conditions": {"List": ["Obesity", "Type 2 Diabetes"]}}},
  {"id": "A3", "Protocol": {"Title": "Healthy volunteers"}}
]`

const fileB = `[
  {"id": "B1", "Protocol": {"Title": "Hypertension"}},
  {"id": "B2", "Protocol": {"Title": "Migraine"}}
]`

func TestPartition_SingleMatchScenario(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "A.json", fileA)
	writeFile(t, src, "B.json", fileB)
	c := readCorpus(t, src)

	res := Partition(c, "Diabetes", nil)
	assert.Equal(t, 5, res.Scanned)
	require.Len(t, res.Matched, 1)
	assert.Len(t, res.Unmatched, 4)
	assert.Equal(t, []string{"Protocol.Conditions.List[1]"}, res.Paths)

	out := filepath.Join(t.TempDir(), "subset_diabetes")
	summary, err := WriteGroup(out, res.Groups, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A.json", entries[0].Name())

	records := readArray(t, filepath.Join(out, "A.json"))
	require.Len(t, records, 1)
	assert.Equal(t, "A2", records[0]["id"])
}

func TestPartition_Completeness(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "A.json", fileA)
	writeFile(t, src, "B.json", fileB)
	writeFile(t, src, "C.json", `{"id": "C1", "Title": "Asthma in adults"}`)
	writeFile(t, src, "broken.json", `[{"id": `)
	c := readCorpus(t, src)

	for _, condition := range []string{"asthma", "protocol", "", "nothing-like-this", "A"} {
		res := Partition(c, condition, nil)
		assert.Equal(t, res.Scanned, len(res.Matched)+len(res.Unmatched), condition)
		assert.Equal(t, len(res.Matched), models.CountRecords(res.Groups), condition)
	}
}

func TestPartition_EmptyConditionAndNoMatch(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "A.json", fileA)
	c := readCorpus(t, src)

	res := Partition(c, "", nil)
	assert.True(t, res.Empty())
	assert.Len(t, res.Unmatched, 3)

	res = Partition(c, "Melanoma", nil)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Groups)

	out := filepath.Join(t.TempDir(), "subset_melanoma")
	summary, err := WriteGroup(out, res.Groups, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no output directory on zero matches")
}

func TestRegroup_PositionalMisattributesPartialMatches(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "1.json", `[{"t": "cancer"}, {"t": "cancer"}, {"t": "flu"}]`)
	writeFile(t, src, "2.json", `[{"t": "cancer"}, {"t": "flu"}]`)
	c := readCorpus(t, src)
	res := Partition(c, "cancer", nil)

	byProvenance := Regroup(c, res.Matched)
	positional := RegroupPositional(c, res.Matched)

	// 1.json takes its first 3 slots from [1a 1b 2a]; the provenance grouping
	// gives 2a back to 2.json
	assert.Equal(t, 1, Misattributed(c, positional))
	assert.Equal(t, 0, Misattributed(c, byProvenance))
	require.Len(t, byProvenance, 2)
	assert.Len(t, byProvenance[0].Records, 2)
	assert.Len(t, byProvenance[1].Records, 1)
}

func TestRegroup_PositionalAgreesOnlyOnWholeFiles(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "1.json", `[{"t": "cancer"}, {"t": "cancer"}]`)
	writeFile(t, src, "2.json", `[{"t": "flu"}]`)
	writeFile(t, src, "3.json", `{"t": "cancer"}`)
	c := readCorpus(t, src)
	res := Partition(c, "cancer", nil)

	// 2.json holds nothing, so the positional walk hands 3's record to 2
	positional := RegroupPositional(c, res.Matched)
	assert.Equal(t, 1, Misattributed(c, positional))

	// every file either fully matches or is the last one: both strategies agree
	src2 := t.TempDir()
	writeFile(t, src2, "1.json", `[{"t": "cancer"}, {"t": "cancer"}]`)
	writeFile(t, src2, "2.json", `[{"t": "cancer"}, {"t": "flu"}]`)
	c2 := readCorpus(t, src2)
	res2 := Partition(c2, "cancer", nil)
	assert.Equal(t, Regroup(c2, res2.Matched), RegroupPositional(c2, res2.Matched))
}

func TestWriteGroup_PreservesRelativePathsAndFormat(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "2019/NCT01.json", `[{"a": "Diabetes", "n": 1.50}, {"a": "none"}]`)
	writeFile(t, src, "2020/NCT01.json", `{"z": 1, "a": "diabetes"}`)
	c := readCorpus(t, src)
	res := Partition(c, "diabetes", nil)

	out := filepath.Join(t.TempDir(), "subset")
	summary, err := WriteGroup(out, res.Groups, nil)
	require.NoError(t, err)
	require.Len(t, summary.Files, 2)
	assert.Equal(t, 2, summary.Total)

	data, err := os.ReadFile(filepath.Join(out, "2019", "NCT01.json"))
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"a\": \"Diabetes\",\n    \"n\": 1.50\n  }\n]\n", string(data))

	data, err = os.ReadFile(filepath.Join(out, "2020", "NCT01.json"))
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"z\": 1,\n    \"a\": \"diabetes\"\n  }\n]\n", string(data))

	_, err = os.Stat(filepath.Join(out, filelock.LockFileName))
	assert.True(t, os.IsNotExist(err), "lock file removed after write")
}

func TestWriteGroup_Errors(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "A.json", fileA)
	c := readCorpus(t, src)
	res := Partition(c, "asthma", nil)

	blocker := writeFile(t, t.TempDir(), "file", "x")
	_, err := WriteGroup(filepath.Join(blocker, "out"), res.Groups, nil)
	require.Error(t, err)

	out := t.TempDir()
	held, err := filelock.LockDir(out)
	require.NoError(t, err)
	defer held.Release()
	_, err = WriteGroup(out, res.Groups, nil)
	assert.True(t, errors.Is(err, filelock.ErrLocked))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		condition string
		want      string
	}{
		{"Breast Cancer", "breast_cancer"},
		{"  Diabetes ", "diabetes"},
		{"Type 2 Diabetes", "type_2_diabetes"},
		{"HIV/AIDS", "hiv_aids"},
		{`HIV\AIDS`, "hiv_aids"},
		{"a..b", "a..b"},
	}
	for _, tt := range tests {
		got, err := Slug(tt.condition)
		require.NoError(t, err, tt.condition)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "   ", ".", "..", "../etc", ".hidden", "./x"} {
		_, err := Slug(bad)
		assert.True(t, errors.Is(err, ErrInvalidCondition), "Slug(%q) error = %v", bad, err)
	}
}
