// Package pass holds the game-pass domain types.
package pass

import "encoding/json"

// GamePass is an upstream-defined record representing a purchasable pass.
// It is stored and returned verbatim, never inspected or transformed.
type GamePass = json.RawMessage

// Listing is the envelope the upstream listing endpoint responds with.
// A missing data field decodes to a nil slice, which callers treat as empty.
type Listing struct {
	Data []GamePass `json:"data"`
}
