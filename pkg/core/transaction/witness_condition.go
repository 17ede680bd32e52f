package transaction

import (
	"errors"

	"github.com/n3-go/core/pkg/crypto/keys"
	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/util"
)

// WitnessConditionType tags the concrete shape of a WitnessCondition node.
type WitnessConditionType byte

// Condition node types, mirroring the boolean-tree grammar a WITNESS_RULES
// scope evaluates against the calling context.
const (
	ConditionBoolean           WitnessConditionType = 0x00
	ConditionNot               WitnessConditionType = 0x01
	ConditionAnd               WitnessConditionType = 0x02
	ConditionOr                WitnessConditionType = 0x03
	ConditionScriptHash        WitnessConditionType = 0x18
	ConditionGroup             WitnessConditionType = 0x19
	ConditionCalledByEntry     WitnessConditionType = 0x20
	ConditionCalledByContract  WitnessConditionType = 0x28
	ConditionCalledByGroup     WitnessConditionType = 0x29
)

// WitnessCondition is one node of the boolean tree a WITNESS_RULES rule
// evaluates. Context is supplied by the engine at verification time: the
// hash of the contract currently executing and the hash of whatever
// contract invoked it (zero hash if none).
type WitnessCondition interface {
	Type() WitnessConditionType
	// Match evaluates the condition against the current call frame.
	Match(currentScriptHash, callingScriptHash util.Uint160, groups []*keys.PublicKey) bool
}

// ConditionBooleanC is a constant true/false leaf.
type ConditionBooleanC bool

func (ConditionBooleanC) Type() WitnessConditionType { return ConditionBoolean }
func (c ConditionBooleanC) Match(util.Uint160, util.Uint160, []*keys.PublicKey) bool { return bool(c) }

// ConditionNotC negates its single child.
type ConditionNotC struct{ Condition WitnessCondition }

func (ConditionNotC) Type() WitnessConditionType { return ConditionNot }
func (c ConditionNotC) Match(cur, calling util.Uint160, groups []*keys.PublicKey) bool {
	return !c.Condition.Match(cur, calling, groups)
}

// ConditionAndC requires every child to match.
type ConditionAndC struct{ Conditions []WitnessCondition }

func (ConditionAndC) Type() WitnessConditionType { return ConditionAnd }
func (c ConditionAndC) Match(cur, calling util.Uint160, groups []*keys.PublicKey) bool {
	for _, sub := range c.Conditions {
		if !sub.Match(cur, calling, groups) {
			return false
		}
	}
	return true
}

// ConditionOrC requires at least one child to match.
type ConditionOrC struct{ Conditions []WitnessCondition }

func (ConditionOrC) Type() WitnessConditionType { return ConditionOr }
func (c ConditionOrC) Match(cur, calling util.Uint160, groups []*keys.PublicKey) bool {
	for _, sub := range c.Conditions {
		if sub.Match(cur, calling, groups) {
			return true
		}
	}
	return false
}

// ConditionScriptHashC matches the currently executing contract's hash.
type ConditionScriptHashC util.Uint160

func (ConditionScriptHashC) Type() WitnessConditionType { return ConditionScriptHash }
func (c ConditionScriptHashC) Match(cur, _ util.Uint160, _ []*keys.PublicKey) bool {
	return util.Uint160(c) == cur
}

// ConditionGroupC matches if the currently executing contract is signed by
// the given group key.
type ConditionGroupC struct{ Group *keys.PublicKey }

func (ConditionGroupC) Type() WitnessConditionType { return ConditionGroup }
func (c ConditionGroupC) Match(_, _ util.Uint160, groups []*keys.PublicKey) bool {
	target := c.Group.Bytes()
	for _, g := range groups {
		if string(g.Bytes()) == string(target) {
			return true
		}
	}
	return false
}

// ConditionCalledByEntryC matches only when there is no calling contract,
// i.e. the entry script itself is executing.
type ConditionCalledByEntryC struct{}

func (ConditionCalledByEntryC) Type() WitnessConditionType { return ConditionCalledByEntry }
func (ConditionCalledByEntryC) Match(_, calling util.Uint160, _ []*keys.PublicKey) bool {
	return calling.IsZero()
}

// ConditionCalledByContractC matches the immediate caller's hash.
type ConditionCalledByContractC util.Uint160

func (ConditionCalledByContractC) Type() WitnessConditionType { return ConditionCalledByContract }
func (c ConditionCalledByContractC) Match(_, calling util.Uint160, _ []*keys.PublicKey) bool {
	return util.Uint160(c) == calling
}

// ConditionCalledByGroupC matches if the immediate caller is signed by the
// given group key. Resolution of the caller's manifest groups is the
// engine's responsibility; here groups is passed in already resolved for
// the caller.
type ConditionCalledByGroupC struct{ Group *keys.PublicKey }

func (ConditionCalledByGroupC) Type() WitnessConditionType { return ConditionCalledByGroup }
func (c ConditionCalledByGroupC) Match(_, _ util.Uint160, groups []*keys.PublicKey) bool {
	target := c.Group.Bytes()
	for _, g := range groups {
		if string(g.Bytes()) == string(target) {
			return true
		}
	}
	return false
}

// WitnessRuleAction is the verdict a matching WitnessRule contributes.
type WitnessRuleAction byte

const (
	WitnessDeny  WitnessRuleAction = 0x00
	WitnessAllow WitnessRuleAction = 0x01
)

// WitnessRule pairs a condition with the action to take when it matches.
type WitnessRule struct {
	Action    WitnessRuleAction
	Condition WitnessCondition
}

// EncodeBinary implements io.Serializable; the condition tree is encoded
// depth-first, tag byte followed by node-specific payload.
func (r *WitnessRule) EncodeBinary(w *io.BinWriter) {
	w.WriteU8(byte(r.Action))
	encodeCondition(w, r.Condition)
}

// DecodeBinary implements io.Serializable.
func (r *WitnessRule) DecodeBinary(br *io.BinReader) {
	r.Action = WitnessRuleAction(br.ReadU8())
	r.Condition = decodeCondition(br, 0)
}

const maxConditionDepth = 8

func encodeCondition(w *io.BinWriter, c WitnessCondition) {
	if w.Err != nil {
		return
	}
	w.WriteU8(byte(c.Type()))
	switch cond := c.(type) {
	case ConditionBooleanC:
		w.WriteBool(bool(cond))
	case ConditionNotC:
		encodeCondition(w, cond.Condition)
	case ConditionAndC:
		w.WriteVarUint(uint64(len(cond.Conditions)))
		for _, sub := range cond.Conditions {
			encodeCondition(w, sub)
		}
	case ConditionOrC:
		w.WriteVarUint(uint64(len(cond.Conditions)))
		for _, sub := range cond.Conditions {
			encodeCondition(w, sub)
		}
	case ConditionScriptHashC:
		w.WriteBytes(util.Uint160(cond).BytesBE())
	case ConditionGroupC:
		w.WriteBytes(cond.Group.Bytes())
	case ConditionCalledByEntryC:
	case ConditionCalledByContractC:
		w.WriteBytes(util.Uint160(cond).BytesBE())
	case ConditionCalledByGroupC:
		w.WriteBytes(cond.Group.Bytes())
	default:
		w.Err = errors.New("transaction: unknown witness condition type")
	}
}

func decodeCondition(br *io.BinReader, depth int) WitnessCondition {
	if br.Err != nil {
		return nil
	}
	if depth > maxConditionDepth {
		br.Err = errors.New("transaction: witness condition tree too deep")
		return nil
	}
	typ := WitnessConditionType(br.ReadU8())
	switch typ {
	case ConditionBoolean:
		return ConditionBooleanC(br.ReadBool())
	case ConditionNot:
		return ConditionNotC{Condition: decodeCondition(br, depth+1)}
	case ConditionAnd:
		n := br.ReadVarUint()
		conds := make([]WitnessCondition, n)
		for i := range conds {
			conds[i] = decodeCondition(br, depth+1)
		}
		return ConditionAndC{Conditions: conds}
	case ConditionOr:
		n := br.ReadVarUint()
		conds := make([]WitnessCondition, n)
		for i := range conds {
			conds[i] = decodeCondition(br, depth+1)
		}
		return ConditionOrC{Conditions: conds}
	case ConditionScriptHash:
		var b [util.Uint160Size]byte
		br.ReadBytes(b[:])
		u, _ := util.Uint160DecodeBytesBE(b[:])
		return ConditionScriptHashC(u)
	case ConditionGroup:
		var b [keys.PublicKeySize]byte
		br.ReadBytes(b[:])
		pk, err := keys.NewPublicKeyFromBytes(b[:])
		if err != nil {
			br.Err = err
			return nil
		}
		return ConditionGroupC{Group: pk}
	case ConditionCalledByEntry:
		return ConditionCalledByEntryC{}
	case ConditionCalledByContract:
		var b [util.Uint160Size]byte
		br.ReadBytes(b[:])
		u, _ := util.Uint160DecodeBytesBE(b[:])
		return ConditionCalledByContractC(u)
	case ConditionCalledByGroup:
		var b [keys.PublicKeySize]byte
		br.ReadBytes(b[:])
		pk, err := keys.NewPublicKeyFromBytes(b[:])
		if err != nil {
			br.Err = err
			return nil
		}
		return ConditionCalledByGroupC{Group: pk}
	default:
		br.Err = errors.New("transaction: unknown witness condition type")
		return nil
	}
}
