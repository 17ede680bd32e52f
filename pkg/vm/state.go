package vm

import (
	"encoding/json"
	"errors"
	"strings"
)

// State represents the state of the VM, a bitmask so a single execution can
// report e.g. "halted at a breakpoint" (HALT | BREAK) after a debugger step.
type State uint8

// Possible VM execution states.
const (
	noneState State = 0
	haltState State = 1 << (iota - 1)
	faultState
	breakState
)

// Exported aliases for the states above, the ones callers construct and
// compare against.
const (
	NoneState  = noneState
	HaltState  = haltState
	FaultState = faultState
	BreakState = breakState
)

var stateStrings = []struct {
	s State
	n string
}{
	{haltState, "HALT"},
	{faultState, "FAULT"},
	{breakState, "BREAK"},
}

// HasFlag checks for the presence of a given flag.
func (s State) HasFlag(f State) bool {
	return s&f != 0
}

// String implements the fmt.Stringer interface.
func (s State) String() string {
	if s == noneState {
		return "NONE"
	}
	var ss []string
	for _, e := range stateStrings {
		if s.HasFlag(e.s) {
			ss = append(ss, e.n)
		}
	}
	return strings.Join(ss, ", ")
}

// StateFromString converts a string into the State.
func StateFromString(s string) (st State, err error) {
	if s = strings.TrimSpace(s); s == "NONE" {
		return noneState, nil
	}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		found := false
		for _, e := range stateStrings {
			if e.n == p {
				st |= e.s
				found = true
				break
			}
		}
		if !found {
			return 0, errors.New("unknown state")
		}
	}
	return
}

// MarshalJSON implements the json.Marshaler interface.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *State) UnmarshalJSON(data []byte) (err error) {
	var str string
	if err = json.Unmarshal(data, &str); err != nil {
		return
	}
	*s, err = StateFromString(str)
	return
}
