/*
Package httpserver implements the warm-storage gateway's HTTP API.

It exposes two public endpoints on top of the retrieval chain and the
selection assembler:

  - GET /api/public/piece/{piece_cid} downloads a piece through the full
    retrieval chain (local cache, provider racing, mirrors). The client
    address is passed as a query parameter; an optional provider parameter
    forces the fetch to a single provider.
  - POST /api/public/providers/select resolves write placements for a client,
    applying the endorsed-pool restriction with unrestricted fallback.

The server also serves the usual health and diagnostic endpoints (livez,
readyz, drain, undrain) and an optional pprof mount, with Prometheus metrics
on a separate listener.
*/
package httpserver
