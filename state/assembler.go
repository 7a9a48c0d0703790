// Package state assembles on-chain snapshots into selection inputs and applies
// the caller-side pool policy on top of the pure selector.
package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/warmstorage/client-backend/interfaces"
	"github.com/warmstorage/client-backend/selection"
)

// Assembler gathers provider and data-set state from the registry and drives
// the selector with it. It owns the endorsed-then-unrestricted fallback
// policy the selector deliberately does not implement.
type Assembler struct {
	registry interfaces.ProviderRegistry
	selector *selection.Selector
	log      *slog.Logger
}

// NewAssembler creates an assembler around the given registry. A nil logger
// defaults to slog.Default.
func NewAssembler(registry interfaces.ProviderRegistry, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		registry: registry,
		selector: selection.NewSelector(logger),
		log:      logger,
	}
}

// BuildSelectionInput fetches a fresh snapshot of the provider pool, the
// endorsed list, and the client's data sets. The snapshot is rebuilt on every
// call; nothing is cached between selections.
func (a *Assembler) BuildSelectionInput(ctx context.Context, client common.Address, metadata interfaces.Metadata) (interfaces.ProviderSelectionInput, error) {
	providers, err := a.registry.AllProviders(ctx)
	if err != nil {
		return interfaces.ProviderSelectionInput{}, fmt.Errorf("listing providers: %w", err)
	}

	endorsed, err := a.registry.EndorsedProviders(ctx)
	if err != nil {
		return interfaces.ProviderSelectionInput{}, fmt.Errorf("listing endorsed providers: %w", err)
	}

	dataSets, err := a.registry.ClientDataSets(ctx, client)
	if err != nil {
		return interfaces.ProviderSelectionInput{}, fmt.Errorf("listing data sets for %s: %w", client, err)
	}

	return interfaces.ProviderSelectionInput{
		Providers:      providers,
		EndorsedIDs:    endorsed,
		ClientDataSets: dataSets,
		Metadata:       metadata,
	}, nil
}

// SelectWithFallback assembles a snapshot and runs selection in two phases:
// first restricted to the endorsed pool, then - if that yields nothing -
// unrestricted over all registered providers. The Endorsed flag on each
// placement still reflects actual pool membership, so callers can tell which
// phase produced a result.
func (a *Assembler) SelectWithFallback(ctx context.Context, client common.Address, metadata interfaces.Metadata, opts *interfaces.ProviderSelectionOptions) ([]interfaces.ResolvedLocation, error) {
	input, err := a.BuildSelectionInput(ctx, client, metadata)
	if err != nil {
		return nil, err
	}

	placements := a.selector.SelectProviders(input, opts)
	if len(placements) > 0 || len(input.EndorsedIDs) == 0 {
		return placements, nil
	}

	a.log.Info("Endorsed pool yielded no placements, retrying unrestricted",
		slog.String("client", client.Hex()),
		slog.Int("endorsed", len(input.EndorsedIDs)))

	input.EndorsedIDs = nil
	return a.selector.SelectProviders(input, opts), nil
}
