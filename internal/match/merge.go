package match

import (
	"sort"

	"cdsmatch/internal/model"
)

// Merge combines the custom-matched rows with the batch results and restores
// the original sheet order. Row positions are unique per file, so the stable
// sort never has real ties to break.
func Merge(matched, batchResults []model.MatchedRow) []model.MatchedRow {
	out := make([]model.MatchedRow, 0, len(matched)+len(batchResults))
	out = append(out, matched...)
	out = append(out, batchResults...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Field.RowIndex < out[j].Field.RowIndex
	})
	return out
}
