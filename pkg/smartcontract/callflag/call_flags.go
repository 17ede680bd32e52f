// Package callflag defines the capability bits an Application Engine
// context may exercise: reading state, writing state, calling other
// contracts, and emitting notifications.
package callflag

import (
	"fmt"
	"strings"
)

// CallFlag represents a bitmask of permissions granted to an execution
// context.
type CallFlag byte

// Individual and composite call flag values. The composite names
// (ReadOnly, States, All) are themselves valid flag values and are
// preferred over their constituent bits when rendering CallFlag.String().
const (
	NoneFlag CallFlag = 0

	ReadStates CallFlag = 1 << iota
	WriteStates
	AllowCall
	AllowNotify

	States   = ReadStates | WriteStates
	ReadOnly = ReadStates | AllowCall
	All      = States | AllowCall | AllowNotify
)

// namedFlags lists flag values in the precedence order used by String: the
// broadest composite names are tried first so that a value exactly matching
// a composite renders as that single name.
var namedFlags = []struct {
	f    CallFlag
	name string
}{
	{All, "All"},
	{ReadOnly, "ReadOnly"},
	{States, "States"},
	{ReadStates, "ReadStates"},
	{WriteStates, "WriteStates"},
	{AllowCall, "AllowCall"},
	{AllowNotify, "AllowNotify"},
}

// Has returns whether f contains all bits set in v.
func (f CallFlag) Has(v CallFlag) bool {
	return f&v == v
}

// String renders f as a comma-separated list of the most specific named
// flags it decomposes into, preferring composite names (All, ReadOnly,
// States) over their individual bits.
func (f CallFlag) String() string {
	if f == NoneFlag {
		return "None"
	}
	remaining := f
	var parts []string
	for _, nf := range namedFlags {
		if nf.f != 0 && remaining&nf.f == nf.f {
			parts = append(parts, nf.name)
			remaining &^= nf.f
		}
		if remaining == 0 {
			break
		}
	}
	return strings.Join(parts, ", ")
}

// FromString parses a comma-separated list of flag names (as produced by
// String, but also accepting individual combinations written directly)
// back into a CallFlag.
func FromString(s string) (CallFlag, error) {
	names := map[string]CallFlag{
		"None":        NoneFlag,
		"All":         All,
		"ReadOnly":    ReadOnly,
		"States":      States,
		"ReadStates":  ReadStates,
		"WriteStates": WriteStates,
		"AllowCall":   AllowCall,
		"AllowNotify": AllowNotify,
	}
	parts := strings.Split(s, ",")
	var result CallFlag
	seenNone := false
	seenAll := false
	for i, p := range parts {
		if i == 0 {
			if p != strings.TrimLeft(p, " ") {
				return NoneFlag, fmt.Errorf("callflag: leading whitespace not allowed: %q", s)
			}
		} else {
			trimmed := strings.TrimPrefix(p, " ")
			if trimmed == p && p != "" {
				return NoneFlag, fmt.Errorf("callflag: missing space after comma: %q", s)
			}
			p = trimmed
		}
		v, ok := names[p]
		if !ok {
			return NoneFlag, fmt.Errorf("callflag: unknown flag %q", p)
		}
		if v == NoneFlag {
			seenNone = true
		}
		if p == "All" {
			seenAll = true
		}
		result |= v
	}
	if seenNone && len(parts) > 1 {
		return NoneFlag, fmt.Errorf("callflag: None cannot be combined: %q", s)
	}
	if seenAll && len(parts) > 1 {
		// explicit combination spelling "All" together with other flags is rejected
		return NoneFlag, fmt.Errorf("callflag: All cannot be combined: %q", s)
	}
	return result, nil
}

// MarshalJSON implements json.Marshaler.
func (f CallFlag) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *CallFlag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if len(data) < 2 || data[0] != '"' {
		return fmt.Errorf("callflag: invalid JSON flag value %q", data)
	}
	v, err := FromString(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (f CallFlag) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *CallFlag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := FromString(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}
