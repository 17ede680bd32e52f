package committee

import (
	"testing"
	"time"

	"github.com/n3-go/core/pkg/core/state"
	"github.com/n3-go/core/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) *keys.PublicKey {
	t.Helper()
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return priv.PublicKey()
}

func TestResolveSortsByVoteDescending(t *testing.T) {
	a, b, c := genKey(t), genKey(t), genKey(t)
	candidates := []state.Candidate{
		{PublicKey: a, Votes: 10},
		{PublicKey: b, Votes: 100},
		{PublicKey: c, Votes: 50},
	}
	members, err := Resolve(candidates, nil, 3)
	require.NoError(t, err)
	require.Equal(t, b.Bytes(), members[0].Bytes())
	require.Equal(t, c.Bytes(), members[1].Bytes())
	require.Equal(t, a.Bytes(), members[2].Bytes())
}

func TestResolveTieBreaksByPublicKeyBytesAscending(t *testing.T) {
	a, b := genKey(t), genKey(t)
	lo, hi := a, b
	if bytesLess(hi.Bytes(), lo.Bytes()) {
		lo, hi = b, a
	}
	candidates := []state.Candidate{
		{PublicKey: hi, Votes: 10},
		{PublicKey: lo, Votes: 10},
	}
	members, err := Resolve(candidates, nil, 2)
	require.NoError(t, err)
	require.Equal(t, lo.Bytes(), members[0].Bytes())
	require.Equal(t, hi.Bytes(), members[1].Bytes())
}

func TestResolveTruncatesToCommitteeSize(t *testing.T) {
	candidates := make([]state.Candidate, 25)
	for i := range candidates {
		candidates[i] = state.Candidate{PublicKey: genKey(t), Votes: int64(100 - i)}
	}
	members, err := Resolve(candidates, nil, 21)
	require.NoError(t, err)
	require.Len(t, members, 21)
}

func TestResolvePadsFromGenesisSkippingDuplicates(t *testing.T) {
	shared := genKey(t)
	genesisOnly := genKey(t)
	candidates := []state.Candidate{{PublicKey: shared, Votes: 5}}
	genesis := []*keys.PublicKey{shared, genesisOnly}

	members, err := Resolve(candidates, genesis, 2)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, shared.Bytes(), members[0].Bytes())
	require.Equal(t, genesisOnly.Bytes(), members[1].Bytes())
}

func TestResolveErrorsWhenStillShortAfterPadding(t *testing.T) {
	candidates := []state.Candidate{{PublicKey: genKey(t), Votes: 1}}
	_, err := Resolve(candidates, nil, 5)
	require.Error(t, err)
}

func TestValidatorsSelectsAscendingSubset(t *testing.T) {
	members := []*keys.PublicKey{genKey(t), genKey(t), genKey(t), genKey(t)}
	validators, err := Validators(members, 3)
	require.NoError(t, err)
	require.Len(t, validators, 3)
	for i := 1; i < len(validators); i++ {
		require.True(t, validators[i-1].Less(validators[i]))
	}
}

func TestCacheValid(t *testing.T) {
	c := &Cache{Members: []*keys.PublicKey{genKey(t)}, BlockHeight: 100, ExpiresAt: time.Now().Add(time.Minute)}
	require.True(t, c.Valid(104, time.Now()))
	require.False(t, c.Valid(106, time.Now()))
	require.False(t, c.Valid(104, time.Now().Add(2*time.Minute)))
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
