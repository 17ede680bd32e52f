// Package committee derives the active committee and next-block validator
// set from registered candidate vote tallies.
package committee

import (
	"fmt"
	"sort"
	"time"

	"github.com/n3-go/core/pkg/core/state"
	"github.com/n3-go/core/pkg/crypto/keys"
)

// cacheValidityBlocks bounds how far behind the current height a cached
// resolution may be and still be served without recomputation.
const cacheValidityBlocks = 5

// Resolve derives the committee from candidates: sorted by vote count
// descending, ties broken by ascending public key byte order, truncated to
// size members, and padded from genesis (in its listed order, skipping any
// key already selected) if candidates run short.
func Resolve(candidates []state.Candidate, genesis []*keys.PublicKey, size int) ([]*keys.PublicKey, error) {
	if size <= 0 {
		return nil, fmt.Errorf("committee: invalid committee size %d", size)
	}
	for i := range candidates {
		if err := validate(candidates[i].PublicKey); err != nil {
			return nil, fmt.Errorf("committee: candidate %d: %w", i, err)
		}
	}

	ranked := make([]state.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Votes != ranked[j].Votes {
			return ranked[i].Votes > ranked[j].Votes
		}
		return ranked[i].PublicKey.Less(ranked[j].PublicKey)
	})

	members := make([]*keys.PublicKey, 0, size)
	seen := make(map[string]bool, size)
	for _, c := range ranked {
		if len(members) == size {
			break
		}
		members = append(members, c.PublicKey)
		seen[string(c.PublicKey.Bytes())] = true
	}

	for _, pub := range genesis {
		if len(members) == size {
			break
		}
		if err := validate(pub); err != nil {
			return nil, fmt.Errorf("committee: genesis padding key rejected: %w", err)
		}
		key := string(pub.Bytes())
		if seen[key] {
			continue
		}
		members = append(members, pub)
		seen[key] = true
	}

	if len(members) < size {
		return nil, fmt.Errorf("committee: only %d members available, need %d", len(members), size)
	}
	return members, nil
}

// validate re-checks a candidate/genesis key's shape: the correct length, a
// valid compressed-point prefix, and membership on the curve.
func validate(pub *keys.PublicKey) error {
	if pub == nil {
		return fmt.Errorf("nil public key")
	}
	if _, err := keys.NewPublicKeyFromBytes(pub.Bytes()); err != nil {
		return err
	}
	return nil
}

// Validators selects the block-producing subset of a resolved committee:
// its first count members once sorted by ascending public key bytes, the
// fixed ordering consensus rotates through to pick the next block's
// primary speaker.
func Validators(members []*keys.PublicKey, count int) ([]*keys.PublicKey, error) {
	if count <= 0 || count > len(members) {
		return nil, fmt.Errorf("committee: invalid validator count %d for %d members", count, len(members))
	}
	sorted := make([]*keys.PublicKey, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return sorted[:count], nil
}

// Cache holds the most recently resolved committee, valid for a bounded
// window of block heights so repeated lookups within that window avoid
// re-deriving the set from candidate storage.
type Cache struct {
	Members     []*keys.PublicKey
	BlockHeight uint32
	ExpiresAt   time.Time
}

// Valid reports whether the cache may still be served for a lookup at
// currentHeight and time now.
func (c *Cache) Valid(currentHeight uint32, now time.Time) bool {
	if c == nil || c.Members == nil {
		return false
	}
	if !now.Before(c.ExpiresAt) {
		return false
	}
	if currentHeight > c.BlockHeight+cacheValidityBlocks {
		return false
	}
	return true
}
