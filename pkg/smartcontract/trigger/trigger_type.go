// Package trigger defines the reasons an Application Engine may be
// invoked, which gate which native contract hooks run and which script
// container is bound to the engine.
package trigger

import "fmt"

// Type represents the trigger for an Application Engine invocation.
type Type byte

// Trigger type values, matching the Neo N3 TriggerType enumeration.
const (
	// OnPersist runs once at the start of a block, before any
	// transaction, allowing native contracts to update state required by
	// the rest of block application.
	OnPersist Type = 0x01
	// PostPersist runs once at the end of a block, after every
	// transaction has been applied.
	PostPersist Type = 0x02
	// Verification runs a signer's verification script to decide whether
	// a witness authorizes a transaction.
	Verification Type = 0x20
	// Application runs the transaction's or deployment script proper.
	Application Type = 0x40
	// System is reserved for internal system invocations that are not
	// tied to a persisted transaction (e.g. ad hoc RPC invokes).
	System Type = 0x10

	// All matches every trigger type, used when querying accumulated
	// execution results irrespective of trigger.
	All Type = OnPersist | PostPersist | Verification | Application | System
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case OnPersist:
		return "OnPersist"
	case PostPersist:
		return "PostPersist"
	case Verification:
		return "Verification"
	case Application:
		return "Application"
	case System:
		return "System"
	case All:
		return "All"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(t))
	}
}

// FromString parses a trigger name produced by String.
func FromString(s string) (Type, error) {
	switch s {
	case "OnPersist":
		return OnPersist, nil
	case "PostPersist":
		return PostPersist, nil
	case "Verification":
		return Verification, nil
	case "Application":
		return Application, nil
	case "System":
		return System, nil
	case "All":
		return All, nil
	default:
		return 0, fmt.Errorf("trigger: unknown trigger type %q", s)
	}
}
