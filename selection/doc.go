// Package selection implements the write-path placement decision: ranking a
// snapshot of providers and client data sets into an ordered list of
// placements.
//
// The logic is pure and deterministic. Data sets are eligible for reuse only
// while live, managed by the current service contract, and not terminated
// (PDPEndEpoch == 0), and only when their metadata exactly matches the
// request. Among eligible sets on a provider, non-empty sets are preferred
// over empty ones and older sets over newer ones.
//
// Absence of candidates is represented structurally: an empty placement list,
// never an error. When an endorsed-provider restriction empties the pool, the
// caller decides whether to retry unrestricted (see the state package).
package selection
