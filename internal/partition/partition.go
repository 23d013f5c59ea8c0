// Package partition selects the records of a corpus that mention a condition and
// writes them back out grouped by the file they came from.
package partition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/trialsift/internal/locator"
	"github.com/harrison/trialsift/internal/logger"
	"github.com/harrison/trialsift/internal/models"
)

// Result is the outcome of partitioning a corpus on one condition.
// len(Matched)+len(Unmatched) == Scanned always holds.
type Result struct {
	Condition string
	Scanned   int
	Matched   []models.Record
	Unmatched []models.Record
	// Paths[i] is where the condition was found in Matched[i]
	Paths []string
	// Groups holds Matched regrouped by source file
	Groups []models.FileChunk
}

// Empty reports whether nothing matched.
func (r *Result) Empty() bool { return len(r.Matched) == 0 }

// Partition runs the locator on every record of c. An empty condition matches
// nothing and is reported as a warning.
func Partition(c *models.Corpus, condition string, log logger.Logger) *Result {
	log = logger.OrNoOp(log)
	res := &Result{Condition: condition, Scanned: len(c.Records)}

	if strings.TrimSpace(condition) == "" {
		log.LogWarn("Empty condition matches no records")
		res.Unmatched = append(res.Unmatched, c.Records...)
		return res
	}

	for _, rec := range c.Records {
		path, ok := locator.Find(rec.Value, condition)
		if !ok {
			res.Unmatched = append(res.Unmatched, rec)
			continue
		}
		res.Matched = append(res.Matched, rec)
		res.Paths = append(res.Paths, path)
		logger.Debugf(log, "Condition '%s' found at %s in %s",
			condition, path, c.Files[rec.Origin.FileIndex].RelPath)
	}

	if res.Empty() {
		logger.Warnf(log, "Searched %d trials; %s not found", res.Scanned, condition)
		return res
	}
	logger.Infof(log, "Filtered %d trials out of %d total trials for condition '%s'",
		len(res.Matched), res.Scanned, condition)

	res.Groups = Regroup(c, res.Matched)
	if n := Misattributed(c, RegroupPositional(c, res.Matched)); n > 0 {
		logger.Warnf(log, "Positional regrouping would attribute %d of %d matched trials to the wrong file",
			n, len(res.Matched))
	}
	return res
}

// ErrInvalidCondition is returned by Slug for conditions that cannot name a directory.
var ErrInvalidCondition = errors.New("condition cannot be used as a directory name")

var slugReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// Slug turns a condition into a single directory name: lower case, spaces and
// path separators to underscores. Empty results and names starting with a dot
// are rejected; the scanner skips hidden directories.
func Slug(condition string) (string, error) {
	slug := slugReplacer.Replace(strings.ToLower(strings.TrimSpace(condition)))
	if slug == "" || strings.HasPrefix(slug, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidCondition, condition)
	}
	return slug, nil
}
