// Package retrieval implements the read path: resolving which providers can
// serve a piece, racing probes against them, and falling back through a chain
// of alternate sources.
//
// # Retrieval Chain
//
// Retrievers form a chain of responsibility. Each link tries its own source
// and, on exhaustion, delegates to an optional next link set at construction:
//
//   - ChainRetriever resolves candidates from the service contract (a forced
//     provider address, or every provider holding a live, non-empty data set
//     for the client) and races one probe per candidate.
//   - IPFSRetriever and S3MirrorRetriever serve pieces mirrored outside the
//     provider network.
//
// Only the last link surfaces a typed failure, distinguishing "no candidates
// could be discovered" (interfaces.ErrNoCandidates) from "every candidate was
// attempted and failed" (interfaces.ErrAllRetrievalsFailed).
//
// # Racing Semantics
//
// raceFirstSuccess starts all probes under one shared cancellation scope and
// settles on the first success, discarding earlier failures. First-to-finish
// racing would be wrong here: a fast 404 must not beat a slow 200. Sibling
// probes are cancelled the moment a winner is known, and an externally
// cancelled context stops every probe in flight.
package retrieval
