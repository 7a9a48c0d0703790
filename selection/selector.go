package selection

import (
	"log/slog"

	"github.com/warmstorage/client-backend/interfaces"
)

// Selector turns a state snapshot into a ranked placement plan for writes.
// It is deterministic and performs no I/O: given the same input it always
// produces the same placements in the same order.
type Selector struct {
	log *slog.Logger
}

// NewSelector creates a provider selector. A nil logger defaults to
// slog.Default.
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{log: logger}
}

// SelectProviders produces up to opts.Count placements, one per distinct
// provider, in pool order. For each provider it reuses the best matching data
// set if one exists, otherwise marks the placement with NewDataSetSentinel.
//
// A non-empty EndorsedIDs list restricts the pool to endorsed providers; if
// the restriction (or the exclusion list) empties the pool the result is an
// empty slice, never an error - falling back to an unrestricted pool is the
// caller's policy, not this component's.
func (s *Selector) SelectProviders(input interfaces.ProviderSelectionInput, opts *interfaces.ProviderSelectionOptions) []interfaces.ResolvedLocation {
	if opts == nil {
		opts = &interfaces.ProviderSelectionOptions{}
	}
	count := opts.Count
	if count <= 0 {
		count = 1
	}

	endorsed := make(map[interfaces.ProviderID]struct{}, len(input.EndorsedIDs))
	for _, id := range input.EndorsedIDs {
		endorsed[id] = struct{}{}
	}
	excluded := make(map[interfaces.ProviderID]struct{}, len(opts.ExcludeProviderIDs))
	for _, id := range opts.ExcludeProviderIDs {
		excluded[id] = struct{}{}
	}

	pool := make([]interfaces.ProviderInfo, 0, len(input.Providers))
	for _, provider := range input.Providers {
		if len(endorsed) > 0 {
			if _, ok := endorsed[provider.ID]; !ok {
				continue
			}
		}
		if _, ok := excluded[provider.ID]; ok {
			continue
		}
		pool = append(pool, provider)
	}

	if len(pool) == 0 {
		s.log.Debug("No eligible providers after filtering",
			slog.Int("candidates", len(input.Providers)),
			slog.Int("endorsed", len(endorsed)),
			slog.Int("excluded", len(excluded)))
		return nil
	}

	// One pass over the client's data sets groups them by provider so each
	// placement only ranks its own provider's sets.
	byProvider := make(map[interfaces.ProviderID][]interfaces.SelectionDataSet)
	for _, ds := range input.ClientDataSets {
		byProvider[ds.ProviderID] = append(byProvider[ds.ProviderID], ds)
	}

	placements := make([]interfaces.ResolvedLocation, 0, count)
	for _, provider := range pool {
		if len(placements) == count {
			break
		}

		dataSetID := interfaces.NewDataSetSentinel
		if matches := FindMatchingDataSets(byProvider[provider.ID], input.Metadata); len(matches) > 0 {
			dataSetID = matches[0].ID
		}

		_, isEndorsed := endorsed[provider.ID]
		placements = append(placements, interfaces.ResolvedLocation{
			Provider:  provider,
			DataSetID: dataSetID,
			Endorsed:  isEndorsed,
		})

		s.log.Debug("Resolved placement",
			slog.Uint64("provider_id", uint64(provider.ID)),
			slog.Uint64("data_set_id", uint64(dataSetID)),
			slog.Bool("endorsed", isEndorsed))
	}

	return placements
}
