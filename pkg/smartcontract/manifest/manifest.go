// Package manifest implements the ContractManifest structure describing a
// contract's ABI, permissions, and metadata.
package manifest

import (
	"encoding/json"

	"github.com/n3-go/core/pkg/crypto/keys"
	"github.com/n3-go/core/pkg/smartcontract"
	"github.com/n3-go/core/pkg/util"
)

// MaxManifestSize bounds the serialized JSON form of a manifest as stored
// alongside a contract's NEF.
const MaxManifestSize = 0xFFFF

// WildCardContainer is either a concrete list of values or a wildcard
// matching anything (nil slice with IsWildcard true).
type WildCardContainer[T any] struct {
	Values     []T
	IsWildcard bool
}

// NewWildcard creates a container matching anything.
func NewWildcard[T any]() *WildCardContainer[T] {
	return &WildCardContainer[T]{IsWildcard: true}
}

// NewWildCardContainer wraps a concrete set of values.
func NewWildCardContainer[T any](values []T) *WildCardContainer[T] {
	return &WildCardContainer[T]{Values: values}
}

// MarshalJSON renders a wildcard as "*" and a concrete set as a JSON array.
func (w WildCardContainer[T]) MarshalJSON() ([]byte, error) {
	if w.IsWildcard {
		return json.Marshal("*")
	}
	return json.Marshal(w.Values)
}

// UnmarshalJSON accepts "*" as a wildcard or a JSON array as a concrete set.
func (w *WildCardContainer[T]) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil && s == "*" {
		w.IsWildcard = true
		w.Values = nil
		return nil
	}
	w.IsWildcard = false
	return json.Unmarshal(b, &w.Values)
}

// Parameter describes a single ABI method parameter.
type Parameter struct {
	Name string
	Type smartcontract.ParamType
}

// NewParameter is a convenience constructor for Parameter.
func NewParameter(name string, typ smartcontract.ParamType) Parameter {
	return Parameter{Name: name, Type: typ}
}

// Method describes a single ABI entry point.
type Method struct {
	Name       string
	Parameters []Parameter
	ReturnType smartcontract.ParamType
	Offset     int
	Safe       bool
}

// Event describes a notification a contract may emit.
type Event struct {
	Name       string
	Parameters []Parameter
}

// ABI is the application binary interface of a contract: its callable
// methods and emittable events.
type ABI struct {
	Methods []Method
	Events  []Event
}

// GetMethod finds a method by name and parameter count; paramCount -1
// matches any arity, implementing the "safe-overload" resolution rule used
// by cross-contract calls.
func (a *ABI) GetMethod(name string, paramCount int) *Method {
	for i := range a.Methods {
		m := &a.Methods[i]
		if m.Name == name && (paramCount == -1 || len(m.Parameters) == paramCount) {
			return m
		}
	}
	return nil
}

// PermissionDescriptor identifies the target(s) a Permission entry grants
// call access to: a specific contract hash, a specific signing group, or a
// wildcard matching any contract.
type PermissionDescriptor struct {
	Hash      *util.Uint160
	Group     *keys.PublicKey
	IsWildcard bool
}

// Permission grants the ability to call a set of methods on a target
// contract (or any contract, for a wildcard descriptor).
type Permission struct {
	Contract PermissionDescriptor
	Methods  WildCardContainer[string]
}

// methodsMatch reports whether name matches the permission's method
// wildcard.
func (p *Permission) methodsMatch(name string) bool {
	if p.Methods.IsWildcard {
		return true
	}
	for _, m := range p.Methods.Values {
		if m == name {
			return true
		}
	}
	return false
}

// contractMatches reports whether the permission's target descriptor
// matches the given contract hash and declared manifest groups.
func (p *Permission) contractMatches(hash util.Uint160, groups []Group) bool {
	if p.Contract.IsWildcard {
		return true
	}
	if p.Contract.Hash != nil {
		return *p.Contract.Hash == hash
	}
	if p.Contract.Group != nil {
		target := p.Contract.Group.Bytes()
		for _, g := range groups {
			if string(g.PublicKey.Bytes()) == string(target) {
				return true
			}
		}
	}
	return false
}

// Group is a (public key, signature) pair asserting that the signer
// endorses this contract; groups let a permission target "any contract
// signed by this key" rather than a single fixed hash.
type Group struct {
	PublicKey *keys.PublicKey
	Signature []byte
}

// Manifest is the full descriptor of a contract: identity, ABI,
// permissions, trusts, and free-form metadata.
type Manifest struct {
	Name               string
	Groups             []Group
	SupportedStandards []string
	ABI                ABI
	Permissions        []Permission
	Trusts             WildCardContainer[util.Uint160]
	Extra              map[string]interface{}
}

// DefaultManifest returns an empty manifest for a native contract of the
// given name: no declared permissions (so CanCall on it reports false for
// every target), no groups, no extras.
func DefaultManifest(name string) *Manifest {
	return &Manifest{
		Name:        name,
		Permissions: nil,
		Trusts:      WildCardContainer[util.Uint160]{},
		Extra:       map[string]interface{}{},
	}
}

// NewManifest is an alias for DefaultManifest kept for call sites that
// construct a manifest for an ordinary (non-native) contract under test.
func NewManifest(name string) *Manifest {
	return DefaultManifest(name)
}

// manifestJSON is the wire shape of Manifest, keeping the exported struct
// free of json tags so in-memory field names stay idiomatic Go.
type manifestJSON struct {
	Name               string                        `json:"name"`
	Groups             []Group                       `json:"groups"`
	SupportedStandards []string                       `json:"supportedstandards"`
	ABI                ABI                            `json:"abi"`
	Permissions        []Permission                   `json:"permissions"`
	Trusts             WildCardContainer[util.Uint160] `json:"trusts"`
	Extra              map[string]interface{}         `json:"extra"`
}

// MarshalJSON renders m as the wire JSON manifest shape.
func MarshalJSON(m *Manifest) ([]byte, error) {
	return json.Marshal(manifestJSON{
		Name: m.Name, Groups: m.Groups, SupportedStandards: m.SupportedStandards,
		ABI: m.ABI, Permissions: m.Permissions, Trusts: m.Trusts, Extra: m.Extra,
	})
}

// UnmarshalJSON decodes b into m.
func UnmarshalJSON(b []byte, m *Manifest) error {
	var aux manifestJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	m.Name, m.Groups, m.SupportedStandards = aux.Name, aux.Groups, aux.SupportedStandards
	m.ABI, m.Permissions, m.Trusts, m.Extra = aux.ABI, aux.Permissions, aux.Trusts, aux.Extra
	return nil
}

// CanCall reports whether this manifest authorizes a call to the method
// named on the contract identified by hash/groups.
func (m *Manifest) CanCall(target util.Uint160, targetGroups []Group, method string) bool {
	for i := range m.Permissions {
		p := &m.Permissions[i]
		if p.contractMatches(target, targetGroups) && p.methodsMatch(method) {
			return true
		}
	}
	return false
}
