package selection

import "github.com/warmstorage/client-backend/interfaces"

// MetadataMatches reports whether a data set's metadata exactly satisfies the
// requested metadata: identical key sets with identical values. An empty
// request matches only a data set with no metadata at all.
func MetadataMatches(have, want interfaces.Metadata) bool {
	if len(have) != len(want) {
		return false
	}
	for key, wanted := range want {
		got, ok := have[key]
		if !ok || got != wanted {
			return false
		}
	}
	return true
}
