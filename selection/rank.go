package selection

import (
	"sort"

	"github.com/warmstorage/client-backend/interfaces"
)

// FindMatchingDataSets filters dataSets to those eligible for new writes with
// metadata exactly matching the request, ordered by reuse preference:
// data sets that already hold pieces sort before empty ones, and within each
// group the lower (older) id sorts first.
//
// Reusing non-empty sets amortizes creation and indexing overhead; preferring
// the oldest keeps traffic pinned to one set, which helps cache locality at
// the provider.
func FindMatchingDataSets(dataSets []interfaces.SelectionDataSet, metadata interfaces.Metadata) []interfaces.SelectionDataSet {
	var matched []interfaces.SelectionDataSet
	for _, ds := range dataSets {
		if !ds.EligibleForSelection() {
			continue
		}
		if !MetadataMatches(ds.Metadata, metadata) {
			continue
		}
		matched = append(matched, ds)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		aHasPieces := a.ActivePieceCount > 0
		bHasPieces := b.ActivePieceCount > 0
		if aHasPieces != bHasPieces {
			return aHasPieces
		}
		return a.ID < b.ID
	})

	return matched
}
