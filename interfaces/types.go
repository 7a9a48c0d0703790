// Package interfaces defines the core types and collaborator interfaces for the
// warm-storage client. It provides the contract between different components
// without implementation details.
package interfaces

import (
	"maps"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
)

// ProviderID is the numeric identifier a storage provider is registered under
// in the service contract. IDs are 1-based; 0 is never a valid provider.
type ProviderID uint64

// DataSetID identifies a client-owned data set on a provider. IDs are 1-based.
type DataSetID uint64

// NewDataSetSentinel marks a placement that requires creating a fresh data set
// on the chosen provider instead of reusing an existing one.
const NewDataSetSentinel DataSetID = 0

// ProviderInfo is an immutable snapshot of a storage provider's registration.
type ProviderInfo struct {
	// ID is the provider's registry identifier.
	ID ProviderID

	// ServiceURL is the base URL of the provider's PDP service endpoint.
	ServiceURL string

	// Payee is the address payments for this provider are settled to. It is
	// also the address data sets reference their provider by.
	Payee common.Address
}

// Metadata is an unordered set of key/value labels attached to a data set.
type Metadata map[string]string

// Equal reports whether two metadata sets carry exactly the same keys with
// exactly the same values. Order is irrelevant; an empty set only equals an
// empty set.
func (m Metadata) Equal(other Metadata) bool {
	return maps.Equal(m, other)
}

// Clone returns an independent copy of the metadata set.
func (m Metadata) Clone() Metadata {
	return maps.Clone(m)
}

// SelectionDataSet is a snapshot of one client-owned data set, as resolved
// from the service contract. The client never mutates it; piece counts and
// metadata are refreshed by the assembler on every selection call.
type SelectionDataSet struct {
	// ID is the data set's registry identifier.
	ID DataSetID

	// ProviderID identifies the provider hosting this data set.
	ProviderID ProviderID

	// Metadata holds the labels the data set was created with.
	Metadata Metadata

	// ActivePieceCount is the number of pieces currently proven in the set.
	ActivePieceCount uint64

	// PDPEndEpoch is the epoch at which proving for the set ended, or 0 while
	// the set is still active.
	PDPEndEpoch uint64

	// Live reports whether the set still exists and is valid at the PDP layer.
	Live bool

	// Managed reports whether the set is recognized by the current version of
	// the service contract.
	Managed bool
}

// EligibleForSelection reports whether the data set may receive new writes:
// it must be live, managed by the current contract, and not terminated.
func (ds SelectionDataSet) EligibleForSelection() bool {
	return ds.Live && ds.Managed && ds.PDPEndEpoch == 0
}

// ProviderSelectionInput is the full state snapshot the selector works on.
// All fields are supplied by an external assembler; the selector never issues
// its own chain queries.
type ProviderSelectionInput struct {
	// Providers is the candidate pool, in the order the caller prefers it.
	Providers []ProviderInfo

	// EndorsedIDs restricts the pool to the listed providers when non-empty.
	// An empty list means no restriction.
	EndorsedIDs []ProviderID

	// ClientDataSets are all data sets known to belong to the client.
	ClientDataSets []SelectionDataSet

	// Metadata is the label set a reused data set must match exactly.
	Metadata Metadata
}

// ProviderSelectionOptions tunes a single selection call.
type ProviderSelectionOptions struct {
	// Count is how many placements to produce. Zero means one.
	Count int

	// ExcludeProviderIDs lists providers to skip, typically because a
	// previous attempt against them failed.
	ExcludeProviderIDs []ProviderID
}

// ResolvedLocation is one placement decision: where a write should go and
// whether an existing data set can be reused there.
type ResolvedLocation struct {
	// Provider is the chosen provider.
	Provider ProviderInfo

	// DataSetID is the data set to reuse, or NewDataSetSentinel if a new one
	// must be created on the provider.
	DataSetID DataSetID

	// Endorsed reports whether the provider is a member of the endorsed pool,
	// independently of whether the pool was restricted for this call.
	Endorsed bool
}

// RetrievalCandidate pairs a provider with the piece about to be probed on it.
// Candidates are constructed per fetch call and never persisted.
type RetrievalCandidate struct {
	Provider ProviderInfo
	PieceCID cid.Cid
}
