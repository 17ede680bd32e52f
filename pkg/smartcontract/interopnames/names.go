// Package interopnames lists the dotted syscall names the engine recognizes
// and converts them to the 32-bit IDs actually carried on SYSCALL
// instructions.
package interopnames

import (
	"errors"
	"hash/crc32"
)

// Recognized syscall names, grouped by the host service that implements
// them.
const (
	SystemContractCall       = "System.Contract.Call"
	SystemContractCallNative = "System.Contract.CallNative"
	SystemContractCreateStandardAccount = "System.Contract.CreateStandardAccount"
	SystemContractGetCallFlags = "System.Contract.GetCallFlags"
	SystemContractNativeOnPersist = "System.Contract.NativeOnPersist"
	SystemContractNativePostPersist = "System.Contract.NativePostPersist"

	SystemCryptoCheckSig    = "System.Crypto.CheckSig"
	SystemCryptoCheckMultisig = "System.Crypto.CheckMultisig"

	SystemIteratorNext  = "System.Iterator.Next"
	SystemIteratorValue = "System.Iterator.Value"

	SystemRuntimeCheckWitness    = "System.Runtime.CheckWitness"
	SystemRuntimeGasLeft         = "System.Runtime.GasLeft"
	SystemRuntimeGetNetwork      = "System.Runtime.GetNetwork"
	SystemRuntimeGetNotifications = "System.Runtime.GetNotifications"
	SystemRuntimeGetRandom       = "System.Runtime.GetRandom"
	SystemRuntimeGetScriptContainer = "System.Runtime.GetScriptContainer"
	SystemRuntimeGetTrigger      = "System.Runtime.GetTrigger"
	SystemRuntimeLoadScript      = "System.Runtime.LoadScript"
	SystemRuntimeLog             = "System.Runtime.Log"
	SystemRuntimeNotify          = "System.Runtime.Notify"
	SystemRuntimePlatform        = "System.Runtime.Platform"

	SystemStorageDelete    = "System.Storage.Delete"
	SystemStorageFind      = "System.Storage.Find"
	SystemStorageGet       = "System.Storage.Get"
	SystemStorageGetContext = "System.Storage.GetContext"
	SystemStorageGetReadOnlyContext = "System.Storage.GetReadOnlyContext"
	SystemStoragePut       = "System.Storage.Put"
	SystemStorageAsReadOnly = "System.Storage.AsReadOnly"
)

var names = []string{
	SystemContractCall, SystemContractCallNative, SystemContractCreateStandardAccount,
	SystemContractGetCallFlags, SystemContractNativeOnPersist, SystemContractNativePostPersist,
	SystemCryptoCheckSig, SystemCryptoCheckMultisig,
	SystemIteratorNext, SystemIteratorValue,
	SystemRuntimeCheckWitness, SystemRuntimeGasLeft, SystemRuntimeGetNetwork,
	SystemRuntimeGetNotifications, SystemRuntimeGetRandom, SystemRuntimeGetScriptContainer,
	SystemRuntimeGetTrigger, SystemRuntimeLoadScript, SystemRuntimeLog, SystemRuntimeNotify,
	SystemRuntimePlatform,
	SystemStorageDelete, SystemStorageFind, SystemStorageGet, SystemStorageGetContext,
	SystemStorageGetReadOnlyContext, SystemStoragePut, SystemStorageAsReadOnly,
}

var errNotFound = errors.New("interopnames: id not found")

// ToID converts a syscall name to its wire ID: the IEEE CRC-32 checksum of
// its ASCII bytes.
func ToID(name []byte) uint32 {
	return crc32.ChecksumIEEE(name)
}

// FromID reverses ToID against the set of recognized names, returning
// errNotFound if id does not correspond to any of them.
func FromID(id uint32) (string, error) {
	for _, n := range names {
		if ToID([]byte(n)) == id {
			return n, nil
		}
	}
	return "", errNotFound
}
