package state

import (
	"encoding/json"
	"fmt"

	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/smartcontract/trigger"
	"github.com/n3-go/core/pkg/util"
	"github.com/n3-go/core/pkg/vm"
	"github.com/n3-go/core/pkg/vm/stackitem"
)

// NotificationEvent is a single Runtime.Notify call recorded during
// execution: the emitting contract, the event name it chose, and the
// arguments it passed.
type NotificationEvent struct {
	ScriptHash util.Uint160
	Name       string
	Item       *stackitem.Array
}

// EncodeBinary implements io.Serializable.
func (e *NotificationEvent) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(e.ScriptHash.BytesBE())
	w.WriteString(e.Name)
	stackitem.EncodeBinaryStackItem(e.Item, w)
}

// DecodeBinary implements io.Serializable.
func (e *NotificationEvent) DecodeBinary(r *io.BinReader) {
	var h [util.Uint160Size]byte
	r.ReadBytes(h[:])
	if r.Err == nil {
		e.ScriptHash, r.Err = util.Uint160DecodeBytesBE(h[:])
	}
	e.Name = r.ReadString()
	item := stackitem.DecodeBinaryStackItem(r)
	if arr, ok := item.(*stackitem.Array); ok {
		e.Item = arr
	} else {
		e.Item = stackitem.NewArray(nil)
	}
}

type notificationEventAux struct {
	Contract  string          `json:"contract"`
	EventName string          `json:"eventname"`
	State     json.RawMessage `json:"state"`
}

// MarshalJSON implements json.Marshaler.
func (e NotificationEvent) MarshalJSON() ([]byte, error) {
	st, err := stackitem.ToJSON(e.Item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(notificationEventAux{
		Contract:  "0x" + e.ScriptHash.StringBE(),
		EventName: e.Name,
		State:     st,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *NotificationEvent) UnmarshalJSON(data []byte) error {
	var aux notificationEventAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	h, err := util.Uint160DecodeStringBE(trim0xPrefix(aux.Contract))
	if err != nil {
		return err
	}
	item, err := stackitem.FromJSON(aux.State)
	if err != nil {
		return err
	}
	arr, ok := item.(*stackitem.Array)
	if !ok {
		return fmt.Errorf("state: notification state is not an array")
	}
	e.ScriptHash, e.Name, e.Item = h, aux.EventName, arr
	return nil
}

func trim0xPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// Execution is the outcome of a single trigger-driven VM run: its final
// state, the gas it spent, the values left on its result stack, and the
// notifications it emitted along the way.
type Execution struct {
	Trigger        trigger.Type
	VMState        vm.State
	GasConsumed    int64
	Stack          []stackitem.Item
	Events         []NotificationEvent
	FaultException string
}

// AppExecResult binds an Execution to the container (transaction or block)
// that produced it, the persisted unit the State Layer indexes results by.
type AppExecResult struct {
	Container util.Uint256
	Execution
}

// EncodeBinary implements io.Serializable.
func (a *AppExecResult) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(a.Container.BytesBE())
	w.WriteB(byte(a.Trigger))
	w.WriteB(byte(a.VMState))
	w.WriteU64LE(uint64(a.GasConsumed))
	w.WriteVarUint(uint64(len(a.Stack)))
	for _, it := range a.Stack {
		stackitem.EncodeBinaryStackItem(it, w)
	}
	w.WriteVarUint(uint64(len(a.Events)))
	for i := range a.Events {
		a.Events[i].EncodeBinary(w)
	}
	if a.VMState == vm.FaultState {
		w.WriteString(a.FaultException)
	}
}

// DecodeBinary implements io.Serializable.
func (a *AppExecResult) DecodeBinary(r *io.BinReader) {
	var h [util.Uint256Size]byte
	r.ReadBytes(h[:])
	if r.Err == nil {
		a.Container, r.Err = util.Uint256DecodeBytesBE(h[:])
	}
	a.Trigger = trigger.Type(r.ReadB())
	a.VMState = vm.State(r.ReadB())
	a.GasConsumed = int64(r.ReadU64LE())

	n := r.ReadVarUint()
	a.Stack = make([]stackitem.Item, n)
	for i := range a.Stack {
		a.Stack[i] = stackitem.DecodeBinaryStackItem(r)
		if r.Err != nil {
			return
		}
	}
	nEv := r.ReadVarUint()
	a.Events = make([]NotificationEvent, nEv)
	for i := range a.Events {
		a.Events[i].DecodeBinary(r)
		if r.Err != nil {
			return
		}
	}
	if a.VMState == vm.FaultState {
		a.FaultException = r.ReadString()
	}
}

type appExecResultAux struct {
	Container     string               `json:"container"`
	Trigger       string               `json:"trigger"`
	VMState       string               `json:"vmstate"`
	GasConsumed   string               `json:"gasconsumed"`
	Stack         json.RawMessage      `json:"stack"`
	Notifications []NotificationEvent  `json:"notifications"`
	Exception     *string              `json:"exception,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (a AppExecResult) MarshalJSON() ([]byte, error) {
	parts := make([]json.RawMessage, len(a.Stack))
	for i, it := range a.Stack {
		b, err := stackitem.ToJSON(it)
		if err != nil {
			return nil, err
		}
		parts[i] = b
	}
	stack, err := json.Marshal(parts)
	if err != nil {
		return nil, err
	}
	aux := appExecResultAux{
		Container:     "0x" + a.Container.StringBE(),
		Trigger:       a.Trigger.String(),
		VMState:       a.VMState.String(),
		GasConsumed:   fmt.Sprintf("%d", a.GasConsumed),
		Stack:         stack,
		Notifications: a.Events,
	}
	if a.VMState == vm.FaultState {
		aux.Exception = &a.FaultException
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AppExecResult) UnmarshalJSON(data []byte) error {
	var aux appExecResultAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c, err := util.Uint256DecodeStringBE(trim0xPrefix(aux.Container))
	if err != nil {
		return err
	}
	trig, err := trigger.FromString(aux.Trigger)
	if err != nil {
		return err
	}
	vmState, err := vm.StateFromString(aux.VMState)
	if err != nil {
		return err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(aux.Stack, &raw); err != nil {
		return err
	}
	stack := make([]stackitem.Item, len(raw))
	for i, r := range raw {
		it, err := stackitem.FromJSON(r)
		if err != nil {
			// A stack entry the decoder can't represent becomes nil
			// rather than failing the whole result.
			stack[i] = nil
			continue
		}
		stack[i] = it
	}
	a.Container = c
	a.Trigger = trig
	a.VMState = vmState
	a.Stack = stack
	a.Events = aux.Notifications
	if aux.Exception != nil {
		a.FaultException = *aux.Exception
	}
	var gc int64
	fmt.Sscanf(aux.GasConsumed, "%d", &gc)
	a.GasConsumed = gc
	return nil
}
