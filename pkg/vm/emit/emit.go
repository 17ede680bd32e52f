// Package emit provides helpers for building VM scripts instruction by
// instruction, used by native contract metadata construction and by test
// fixtures that need hand-assembled scripts.
package emit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/smartcontract/callflag"
	"github.com/n3-go/core/pkg/smartcontract/interopnames"
	"github.com/n3-go/core/pkg/util"
	"github.com/n3-go/core/pkg/vm/opcode"
	"github.com/n3-go/core/pkg/vm/stackitem"
)

// Instruction emits a single opcode followed by its raw operand bytes.
func Instruction(w *io.BinWriter, op opcode.Opcode, b []byte) {
	w.WriteU8(byte(op))
	w.WriteBytes(b)
}

// Opcodes emits a sequence of bare opcodes with no operands.
func Opcodes(w *io.BinWriter, ops ...opcode.Opcode) {
	for _, op := range ops {
		w.WriteU8(byte(op))
	}
}

// Bool emits a boolean literal.
func Bool(w *io.BinWriter, ok bool) {
	if ok {
		Opcodes(w, opcode.PUSHT)
	} else {
		Opcodes(w, opcode.PUSHF)
	}
}

func padRight(size int, buf []byte) []byte {
	l := len(buf)
	out := make([]byte, size)
	copy(out, buf)
	if buf[l-1]&0x80 != 0 {
		for i := l; i < size; i++ {
			out[i] = 0xFF
		}
	}
	return out
}

// Int emits the shortest encoding of a small integer.
func Int(w *io.BinWriter, i int64) {
	if smallInt(w, i) {
		return
	}
	bigInt(w, big.NewInt(i), false)
}

// BigInt emits an arbitrary-precision integer literal.
func BigInt(w *io.BinWriter, n *big.Int) {
	bigInt(w, n, true)
}

func smallInt(w *io.BinWriter, i int64) bool {
	switch {
	case i == -1:
		Opcodes(w, opcode.PUSHM1)
	case i >= 0 && i < 16:
		Opcodes(w, opcode.Opcode(int(opcode.PUSH0)+int(i)))
	default:
		return false
	}
	return true
}

func bigInt(w *io.BinWriter, n *big.Int, trySmall bool) {
	if w.Err != nil {
		return
	}
	if trySmall && n.IsInt64() && smallInt(w, n.Int64()) {
		return
	}
	if err := stackitem.CheckIntegerSize(n); err != nil {
		w.Err = err
		return
	}
	buf := io.BigIntToBytes(n)
	if len(buf) == 0 {
		Opcodes(w, opcode.PUSH0)
		return
	}
	padSize := byte(8 - bits.LeadingZeros8(byte(len(buf)-1)))
	Opcodes(w, opcode.PUSHINT8+opcode.Opcode(padSize))
	w.WriteBytes(padRight(1<<padSize, buf))
}

// Array emits a packed array literal built from es, innermost-first.
func Array(w *io.BinWriter, es ...interface{}) {
	if len(es) == 0 {
		Opcodes(w, opcode.NEWARRAY0)
		return
	}
	for i := len(es) - 1; i >= 0; i-- {
		switch e := es[i].(type) {
		case []interface{}:
			Array(w, e...)
		case int64:
			Int(w, e)
		case int:
			Int(w, int64(e))
		case uint32:
			Int(w, int64(e))
		case *big.Int:
			BigInt(w, e)
		case string:
			String(w, e)
		case util.Uint160:
			Bytes(w, e.BytesBE())
		case util.Uint256:
			Bytes(w, e.BytesBE())
		case []byte:
			Bytes(w, e)
		case bool:
			Bool(w, e)
		default:
			if es[i] != nil {
				w.Err = fmt.Errorf("emit: unsupported type %T", e)
				return
			}
			Opcodes(w, opcode.PUSHNULL)
		}
	}
	Int(w, int64(len(es)))
	Opcodes(w, opcode.PACK)
}

// String emits a UTF-8 string literal.
func String(w *io.BinWriter, s string) {
	Bytes(w, []byte(s))
}

// Bytes emits a byte-string literal, choosing the narrowest PUSHDATA
// variant for its length.
func Bytes(w *io.BinWriter, b []byte) {
	n := len(b)
	switch {
	case n < 0x100:
		Instruction(w, opcode.PUSHDATA1, []byte{byte(n)})
	case n < 0x10000:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(n))
		Instruction(w, opcode.PUSHDATA2, buf)
	default:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(n))
		Instruction(w, opcode.PUSHDATA4, buf)
	}
	w.WriteBytes(b)
}

// Syscall emits a SYSCALL to the named host service.
func Syscall(w *io.BinWriter, api string) {
	if w.Err != nil {
		return
	}
	if len(api) == 0 {
		w.Err = errors.New("emit: syscall api cannot be empty")
		return
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, interopnames.ToID([]byte(api)))
	Instruction(w, opcode.SYSCALL, buf)
}

// Jmp emits a control-transfer instruction with a 2-byte label operand.
func Jmp(w *io.BinWriter, op opcode.Opcode, label uint16) {
	if w.Err != nil {
		return
	}
	if !opcode.IsJump(op) {
		w.Err = fmt.Errorf("emit: opcode %s is not a jump or call type", op)
		return
	}
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, label)
	Instruction(w, op, buf)
}

// Call emits a CALL/CALLL to a label.
func Call(w *io.BinWriter, op opcode.Opcode, label uint16) {
	Jmp(w, op, label)
}

// AppCallNoArgs emits a System.Contract.Call invocation assuming the
// arguments array is already on the stack.
func AppCallNoArgs(w *io.BinWriter, scriptHash util.Uint160, operation string, f callflag.CallFlag) {
	Int(w, int64(f))
	String(w, operation)
	Bytes(w, scriptHash.BytesBE())
	Syscall(w, interopnames.SystemContractCall)
}

// AppCall emits a full cross-contract invocation of operation on
// scriptHash with args, under call flags f.
func AppCall(w *io.BinWriter, scriptHash util.Uint160, operation string, f callflag.CallFlag, args ...interface{}) {
	Array(w, args...)
	AppCallNoArgs(w, scriptHash, operation, f)
}
