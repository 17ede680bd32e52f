package nef

import (
	"bytes"
	"errors"

	"github.com/n3-go/core/pkg/io"
)

// bufWriter adds a fixed-width, zero-padded string field on top of
// io.BufBinWriter, used for the NEF compiler-identifier field.
type bufWriter struct {
	*io.BufBinWriter
}

func newBufWriter() *bufWriter {
	return &bufWriter{io.NewBufBinWriter()}
}

func (w *bufWriter) writeFixedString(s string, size int) {
	b := make([]byte, size)
	copy(b, s)
	w.WriteBytes(b)
}

func readFixedString(r *io.BinReader, size int) string {
	b := make([]byte, size)
	r.ReadBytes(b)
	if r.Err != nil {
		return ""
	}
	return string(bytes.TrimRight(b, "\x00"))
}

var errFixedStringTooLong = errors.New("nef: fixed-width string exceeds field size")

