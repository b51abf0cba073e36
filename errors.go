// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package prolly

import (
	"errors"
	"fmt"
)

// Sentinel errors for the library's failure taxonomy. User errors
// (missing key, absent proof target) are reported as explicit zero
// values/bools rather than errors; these are for storage failures,
// invariant violations and config mismatches.
var (
	ErrKeyNotFound    = errors.New("prolly: key not found")
	ErrStorageError   = errors.New("prolly: storage error")
	ErrCorruptNode    = errors.New("prolly: corrupt node")
	ErrConfigMismatch = errors.New("prolly: persisted config does not match")
	ErrInvalidConfig  = errors.New("prolly: invalid tree config")
	ErrNotSupported   = errors.New("prolly: backend does not support this operation")
)

// StorageError wraps a backend failure with the operation that triggered it.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("prolly: storage error during %s: %v", e.Op, e.Cause)
}

// Unwrap exposes the underlying cause, so callers can test for e.g.
// ErrKeyNotFound through a storage wrapper with errors.Is. Is reports
// StorageError itself as matching ErrStorageError, independent of Cause.
func (e *StorageError) Unwrap() error { return e.Cause }
func (e *StorageError) Is(target error) bool { return target == ErrStorageError }

func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Cause: err}
}

// CorruptNodeError reports a detected invariant violation: a digest
// mismatch on a fetched node, a missing child still referenced by a
// live parent, or a key-order violation within a node.
type CorruptNodeError struct {
	Hash   Hash
	Reason string
}

func (e *CorruptNodeError) Error() string {
	return fmt.Sprintf("prolly: corrupt node %s: %s", e.Hash.Hex(), e.Reason)
}

func (e *CorruptNodeError) Unwrap() error { return ErrCorruptNode }

func corruptNodeErr(h Hash, reason string) error {
	return &CorruptNodeError{Hash: h, Reason: reason}
}
