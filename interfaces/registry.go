package interfaces

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrProviderNotFound is returned by registry lookups when no provider is
// registered under the given id or address, including providers that have
// been deregistered since a data set referenced them. Callers are expected
// to recover from it by skipping the candidate, not to abort.
var ErrProviderNotFound = errors.New("provider not found in registry")

// ProviderRegistry resolves providers and client state from the service
// contract. All methods are read-only views of on-chain state.
type ProviderRegistry interface {
	// ProviderByID resolves a provider's registration by numeric id.
	// Returns ErrProviderNotFound for unknown or removed providers.
	ProviderByID(ctx context.Context, id ProviderID) (ProviderInfo, error)

	// ProviderByAddress resolves a provider's registration by payee address.
	// Returns ErrProviderNotFound for unknown or removed providers.
	ProviderByAddress(ctx context.Context, addr common.Address) (ProviderInfo, error)

	// AllProviders lists every currently registered provider.
	AllProviders(ctx context.Context) ([]ProviderInfo, error)

	// EndorsedProviders lists the ids of providers on the service operator's
	// endorsed list. An empty list means selection is unrestricted.
	EndorsedProviders(ctx context.Context) ([]ProviderID, error)

	// ClientDataSets lists all data sets owned by the client, with liveness
	// flags, piece counts, and metadata already resolved.
	ClientDataSets(ctx context.Context, client common.Address) ([]SelectionDataSet, error)
}
