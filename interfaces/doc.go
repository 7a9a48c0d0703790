// Package interfaces defines core interfaces and types for the warm-storage
// client, separating interface definitions from implementations.
//
// The package provides the contracts for the two decision procedures at the
// heart of the client:
//
// # Selection Types
//
// ProviderSelectionInput: Snapshot of providers, endorsements, client data
// sets, and desired metadata that the selector ranks into placements.
//
// ResolvedLocation: One placement decision - the chosen provider, a data set
// to reuse (or NewDataSetSentinel), and the provider's endorsement status.
//
// # Retrieval Interfaces
//
// PieceRetriever: Fetches piece bytes for a client, optionally delegating to
// a next retriever in a chain when exhausted.
//
// PieceProber: Performs the per-candidate existence check and download
// against a provider's PDP service endpoint.
//
// # Registry Interface
//
// ProviderRegistry: Read-only view of the service contract - provider
// resolution by id and payee address, the endorsed provider list, and the
// client's data sets.
//
// # Error Sentinels
//
// ErrProviderNotFound, ErrPieceNotFound, ErrNoCandidates, and
// ErrAllRetrievalsFailed distinguish "nothing to try" from "everything was
// tried and failed"; only the last retriever in a chain surfaces either to
// the caller.
package interfaces
