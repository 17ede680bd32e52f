package transaction

import (
	"github.com/n3-go/core/pkg/crypto/hash"
	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/util"
)

// MaxScriptLength bounds both the invocation and verification scripts of a
// Witness, matching the NEF script size limit.
const MaxScriptLength = 512 * 1024

// Witness carries the two scripts a signer provides to authorize a
// transaction: an invocation script that pushes arguments, and a
// verification script that the engine runs to check them.
type Witness struct {
	InvocationScript   []byte
	VerificationScript []byte
}

// ScriptHash returns the script hash of the verification script, the
// account this witness authorizes.
func (w *Witness) ScriptHash() util.Uint160 {
	return hash.Hash160(w.VerificationScript)
}

// EncodeBinary implements io.Serializable.
func (w *Witness) EncodeBinary(writer *io.BinWriter) {
	writer.WriteVarBytes(w.InvocationScript)
	writer.WriteVarBytes(w.VerificationScript)
}

// DecodeBinary implements io.Serializable.
func (w *Witness) DecodeBinary(reader *io.BinReader) {
	w.InvocationScript = reader.ReadVarBytes(MaxScriptLength)
	w.VerificationScript = reader.ReadVarBytes(MaxScriptLength)
}
