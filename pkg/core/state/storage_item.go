package state

import "github.com/n3-go/core/pkg/io"

// StorageItem is the value half of a contract storage entry; the key is a
// StorageKey held by the caller, never embedded in the item itself.
type StorageItem struct {
	Value []byte
}

// EncodeBinary implements io.Serializable.
func (i *StorageItem) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(i.Value)
}

// DecodeBinary implements io.Serializable.
func (i *StorageItem) DecodeBinary(r *io.BinReader) {
	i.Value = r.ReadVarBytes()
}
