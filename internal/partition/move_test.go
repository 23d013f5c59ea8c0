package partition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveFiles(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "NCT01.json", `{"BriefTitle": "Breast Cancer Screening", "Phase": "2"}`)
	writeFile(t, src, "2021/NCT02.json", `[{"BriefTitle": "Asthma"}, {"Conditions": ["breast cancer"]}]`)
	writeFile(t, src, "NCT03.json", `{"BriefTitle": "Asthma"}`)
	writeFile(t, src, "broken.json", `{"BriefTitle": "Breast Cancer"`)
	dest := filepath.Join(t.TempDir(), "breast_cancer")

	report, err := MoveFiles(src, dest, "Breast Cancer", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Before)
	assert.Equal(t, 2, report.After)
	require.Len(t, report.Moved, 2)
	assert.Equal(t, report.Before, report.After+len(report.Moved))
	assert.Equal(t, 3, report.MovedRecords)
	assert.Len(t, report.Errors, 1)

	assert.FileExists(t, filepath.Join(dest, "NCT01.json"))
	assert.FileExists(t, filepath.Join(dest, "2021", "NCT02.json"))
	assert.FileExists(t, filepath.Join(src, "NCT03.json"))
	assert.FileExists(t, filepath.Join(src, "broken.json"), "malformed files stay in place")
	assert.NoFileExists(t, filepath.Join(src, "NCT01.json"))
	assert.Equal(t, "record 1: Conditions[0]", report.Moved[0].Match)
}

func TestMoveFiles_FieldRestricted(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "title.json", `{"BriefTitle": "Breast Cancer Screening"}`)
	writeFile(t, src, "other.json", `{"Keywords": ["breast cancer"], "BriefTitle": "Imaging"}`)
	dest := filepath.Join(t.TempDir(), "breast_cancer")

	report, err := MoveFiles(src, dest, "breast cancer", []string{"BriefTitle"}, nil)
	require.NoError(t, err)
	require.Len(t, report.Moved, 1)
	assert.Equal(t, "record 0: BriefTitle", report.Moved[0].Match)
	assert.FileExists(t, filepath.Join(src, "other.json"))
}

func TestMoveFiles_NoMatchCreatesNothing(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.json", `{"BriefTitle": "Asthma"}`)
	dest := filepath.Join(t.TempDir(), "melanoma")

	report, err := MoveFiles(src, dest, "melanoma", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Moved)
	assert.Equal(t, 1, report.After)

	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestMoveFiles_MissingSource(t *testing.T) {
	_, err := MoveFiles(filepath.Join(t.TempDir(), "missing"), t.TempDir(), "x", nil, nil)
	assert.Error(t, err)
}

func TestMoveFiles_FieldSet(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "title.json", `{"BriefTitle": "Breast Cancer Screening"}`)
	writeFile(t, src, "keywords.json", `{"Keywords": ["breast cancer"], "BriefTitle": "Imaging"}`)
	writeFile(t, src, "summary.json", `{"BriefSummary": "breast cancer survivors"}`)
	dest := filepath.Join(t.TempDir(), "breast_cancer")

	report, err := MoveFiles(src, dest, "breast cancer", []string{"BriefTitle", "Keywords"}, nil)
	require.NoError(t, err)
	assert.Len(t, report.Moved, 2)
	assert.FileExists(t, filepath.Join(src, "summary.json"))
}

func TestMoveFiles_FailureKeepsPartialReport(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.json", `{"BriefTitle": "Asthma"}`)
	writeFile(t, src, "b.json", `{"BriefTitle": "Asthma"}`)
	dest := filepath.Join(t.TempDir(), "asthma")
	// a non-empty directory where b.json should land makes that rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "b.json", "child"), 0755))

	report, err := MoveFiles(src, dest, "asthma", nil, nil)
	require.Error(t, err)
	require.NotNil(t, report)
	require.Len(t, report.Moved, 1)
	assert.Equal(t, filepath.Join(dest, "a.json"), report.Moved[0].To)
	assert.Equal(t, 2, report.Before)
	assert.Equal(t, 1, report.After)
	assert.FileExists(t, filepath.Join(src, "b.json"))
}
