package transaction

import (
	"errors"

	"github.com/n3-go/core/pkg/crypto/keys"
	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/util"
)

// MaxAllowedContracts bounds the CustomContracts allowlist.
const MaxAllowedContracts = 16

// MaxAllowedGroups bounds the CustomGroups allowlist.
const MaxAllowedGroups = 16

// MaxWitnessRules bounds the WitnessRules list.
const MaxWitnessRules = 16

// Signer declares a transaction signatory and the scope of authority its
// witness carries.
type Signer struct {
	Account          util.Uint160
	Scopes           WitnessScope
	AllowedContracts []util.Uint160
	AllowedGroups    []*keys.PublicKey
	Rules            []WitnessRule
}

// EncodeBinary implements io.Serializable.
func (s *Signer) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(s.Account.BytesBE())
	w.WriteU8(byte(s.Scopes))
	if s.Scopes&CustomContracts != 0 {
		w.WriteVarUint(uint64(len(s.AllowedContracts)))
		for _, c := range s.AllowedContracts {
			w.WriteBytes(c.BytesBE())
		}
	}
	if s.Scopes&CustomGroups != 0 {
		w.WriteVarUint(uint64(len(s.AllowedGroups)))
		for _, g := range s.AllowedGroups {
			w.WriteBytes(g.Bytes())
		}
	}
	if s.Scopes&WitnessRules != 0 {
		w.WriteVarUint(uint64(len(s.Rules)))
		for i := range s.Rules {
			s.Rules[i].EncodeBinary(w)
		}
	}
}

// DecodeBinary implements io.Serializable, enforcing the scope-field
// consistency rule: a field may only be populated when its scope bit is
// set, and each list is bounded.
func (s *Signer) DecodeBinary(r *io.BinReader) {
	var accB [util.Uint160Size]byte
	r.ReadBytes(accB[:])
	s.Account, r.Err = util.Uint160DecodeBytesBE(accB[:])
	if r.Err != nil {
		return
	}
	scopes, err := ScopesFromByte(r.ReadU8())
	if err != nil {
		r.Err = err
		return
	}
	s.Scopes = scopes
	if scopes&CustomContracts != 0 {
		n := r.ReadVarUint()
		if n == 0 || n > MaxAllowedContracts {
			r.Err = errors.New("transaction: invalid allowed contracts count")
			return
		}
		s.AllowedContracts = make([]util.Uint160, n)
		for i := range s.AllowedContracts {
			var b [util.Uint160Size]byte
			r.ReadBytes(b[:])
			s.AllowedContracts[i], r.Err = util.Uint160DecodeBytesBE(b[:])
			if r.Err != nil {
				return
			}
			if s.AllowedContracts[i].IsZero() {
				r.Err = errors.New("transaction: zero allowed contract hash")
				return
			}
		}
	}
	if scopes&CustomGroups != 0 {
		n := r.ReadVarUint()
		if n == 0 || n > MaxAllowedGroups {
			r.Err = errors.New("transaction: invalid allowed groups count")
			return
		}
		s.AllowedGroups = make([]*keys.PublicKey, n)
		for i := range s.AllowedGroups {
			var b [keys.PublicKeySize]byte
			r.ReadBytes(b[:])
			s.AllowedGroups[i], r.Err = keys.NewPublicKeyFromBytes(b[:])
			if r.Err != nil {
				return
			}
		}
	}
	if scopes&WitnessRules != 0 {
		n := r.ReadVarUint()
		if n == 0 || n > MaxWitnessRules {
			r.Err = errors.New("transaction: invalid witness rules count")
			return
		}
		s.Rules = make([]WitnessRule, n)
		for i := range s.Rules {
			s.Rules[i].DecodeBinary(r)
		}
	}
}
