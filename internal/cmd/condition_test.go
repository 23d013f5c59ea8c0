package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedExtracted(t *testing.T, w workspace) {
	t.Helper()
	w.write(t, "extracted/a.json", `[
  {"NCTId": "NCT01", "BriefTitle": "Diabetes Type 2 in adults"},
  {"NCTId": "NCT02", "BriefTitle": "Asthma"},
  {"NCTId": "NCT03", "Conditions": ["Obesity", "diabetes"]}
]`)
	w.write(t, "extracted/b.json", `[{"NCTId": "NCT04", "BriefTitle": "Melanoma"}]`)
	w.write(t, "extracted/2024/c.json", `{"NCTId": "NCT05", "BriefTitle": "Gestational Diabetes"}`)
}

func TestConditionCommand(t *testing.T) {
	w := newWorkspace(t)
	seedExtracted(t, w)

	output, err := w.run("condition", "Diabetes")
	require.NoError(t, err, output)

	assert.Contains(t, output, "Filtered 3 trials out of 5 total trials for condition 'Diabetes'")
	assert.Equal(t, 3, records(t, w.path("processed", "subset_diabetes")))
	assert.FileExists(t, w.path("processed", "subset_diabetes", "a.json"))
	assert.FileExists(t, w.path("processed", "subset_diabetes", "2024", "c.json"))
	assert.NoFileExists(t, w.path("processed", "subset_diabetes", "b.json"))
}

func TestConditionCommand_ExplicitOutput(t *testing.T) {
	w := newWorkspace(t)
	seedExtracted(t, w)

	_, err := w.run("condition", "asthma", "--output", w.path("custom"))
	require.NoError(t, err)
	assert.Equal(t, 1, records(t, w.path("custom")))
}

func TestConditionCommand_NotFound(t *testing.T) {
	w := newWorkspace(t)
	seedExtracted(t, w)

	output, err := w.run("condition", "Leukemia")
	require.NoError(t, err)
	assert.Contains(t, output, "Searched 5 trials; Leukemia not found")

	_, statErr := os.Stat(w.path("processed", "subset_leukemia"))
	assert.True(t, os.IsNotExist(statErr), "no output directory expected")
}

func TestConditionCommand_MissingSource(t *testing.T) {
	w := newWorkspace(t)

	output, err := w.run("condition", "Diabetes")
	require.Error(t, err)
	assert.Contains(t, output, "No JSON files found")
	assert.Contains(t, err.Error(), "run the extraction step first")
}

func TestConditionCommand_SkipsMalformedFiles(t *testing.T) {
	w := newWorkspace(t)
	seedExtracted(t, w)
	w.write(t, "extracted/broken.json", `[{"NCTId": "NCT09", `)

	output, err := w.run("condition", "Diabetes")
	require.NoError(t, err)
	assert.Contains(t, output, "could not be read and were skipped")
	assert.Contains(t, output, "broken.json")
	assert.Equal(t, 3, records(t, w.path("processed", "subset_diabetes")))
}

func TestRandomCommand(t *testing.T) {
	w := newWorkspace(t)
	seedExtracted(t, w)

	output, err := w.run("random", "--test-fraction", "0.4", "--seed", "7")
	require.NoError(t, err, output)

	// floor(5 * 0.6) trials go to train
	assert.Contains(t, output, "Split 5 trials into 3 train and 2 test")
	assert.Equal(t, 5, records(t, w.path("processed", "random_split")))
}

func TestRandomCommand_SeedIsReproducible(t *testing.T) {
	w := newWorkspace(t)
	seedExtracted(t, w)

	read := func(out string) map[string]string {
		_, err := w.run("random", "--seed", "42", "--output", w.path(out))
		require.NoError(t, err)
		files := map[string]string{}
		for _, name := range []string{"a_train.json", "a_test.json", "b_train.json", "b_test.json"} {
			if data, err := os.ReadFile(w.path(out, name)); err == nil {
				files[name] = string(data)
			}
		}
		return files
	}

	assert.Equal(t, read("first"), read("second"))
}

func TestConditionCommand_ConditionThatCannotNameADirectory(t *testing.T) {
	w := newWorkspace(t)
	seedExtracted(t, w)

	_, err := w.run("condition", "..")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be used as a directory name")

	// an explicit output directory needs no slug
	_, err = w.run("condition", "..", "--output", w.path("dots"))
	require.NoError(t, err)
}
