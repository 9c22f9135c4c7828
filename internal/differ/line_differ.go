package differ

import (
	"strings"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineDiffer computes line-level change sets between two snapshots
type LineDiffer struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewLineDiffer creates a new line differ
func NewLineDiffer() *LineDiffer {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // always compute the minimal script
	return &LineDiffer{dmp: dmp}
}

// Diff returns the lines removed from previous and added in current.
// Unchanged lines are omitted and removals precede additions within each hunk.
// DetectedAt is left for the caller to stamp.
func (ld *LineDiffer) Diff(previous, current string) models.ChangeSet {
	if previous == current {
		return models.ChangeSet{}
	}

	prevText, curText := lineText(previous), lineText(current)
	a, b, lineArray := ld.dmp.DiffLinesToChars(prevText, curText)
	diffs := ld.dmp.DiffMain(a, b, false)
	diffs = ld.dmp.DiffCharsToLines(diffs, lineArray)

	var (
		changes []models.LineChange
		removed []models.LineChange
		added   []models.LineChange
	)
	flush := func() {
		changes = append(changes, removed...)
		changes = append(changes, added...)
		removed, added = removed[:0], added[:0]
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
		case diffmatchpatch.DiffDelete:
			for _, line := range splitDiffText(d.Text) {
				removed = append(removed, models.LineChange{Op: models.ChangeRemoved, Line: line})
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range splitDiffText(d.Text) {
				added = append(added, models.LineChange{Op: models.ChangeAdded, Line: line})
			}
		}
	}
	flush()

	return models.ChangeSet{Changes: changes}
}

// SplitLines splits text on "\n". Empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// lineText terminates every line with "\n" so the last line compares like the others.
func lineText(text string) string {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// splitDiffText undoes lineText for one diff chunk: every line in text ends with "\n".
func splitDiffText(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
