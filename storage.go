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

import "errors"

// Backend is the narrow byte-key/byte-value contract every storage
// implementation must satisfy. A Backend
// knows nothing about nodes, hashes, or chunking; NodeStore is the only
// thing built on top of it that does.
type Backend interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Has(key []byte) (bool, error)
	Delete(key []byte) error

	// List enumerates every key currently stored, for use by garbage
	// collection. A Backend that cannot support enumeration
	// cheaply may return ErrNotSupported; GC degrades to a no-op in that
	// case rather than failing the whole store.
	List() ([][]byte, error)

	Close() error
}

// NodeStore is the content-addressed layer above a Backend: it encodes
// and decodes Nodes, and persists the two reserved, non-content-addressed
// keys a tree needs outside the hash namespace — its frozen TreeConfig
// and its current root hash.
type NodeStore struct {
	backend Backend
}

// NewNodeStore wraps backend as a NodeStore.
func NewNodeStore(backend Backend) *NodeStore {
	return &NodeStore{backend: backend}
}

// GetNode fetches and decodes the node stored under hash. A node missing
// from the store, or present under its own content hash but failing to
// parse, is reported as ErrCorruptNode, never silently skipped.
func (s *NodeStore) GetNode(hash Hash) (*Node, error) {
	data, err := s.backend.Get(hash[:])
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, corruptNodeErr(hash, "node missing from store")
		}
		return nil, wrapStorageErr("get node", err)
	}
	n, err := ParseNode(data)
	if err != nil {
		return nil, err
	}
	if got := n.Hash(); got != hash {
		return nil, corruptNodeErr(hash, "content digest mismatch: stored bytes hash to "+got.Hex())
	}
	return n, nil
}

// PutNode serializes n and stores it under its own content hash,
// returning that hash. Storing under a pre-existing hash is a cheap no-op
// at the Backend level, since the bytes are guaranteed identical by the
// hash function's collision resistance.
func (s *NodeStore) PutNode(n *Node) (Hash, error) {
	h := n.Hash()
	if err := s.backend.Put(h[:], n.CanonicalSerialize()); err != nil {
		return Hash{}, wrapStorageErr("put node", err)
	}
	return h, nil
}

// HasNode reports whether hash is present in the store.
func (s *NodeStore) HasNode(hash Hash) (bool, error) {
	ok, err := s.backend.Has(hash[:])
	if err != nil {
		return false, wrapStorageErr("has node", err)
	}
	return ok, nil
}

// DeleteNode removes hash from the store, used only by garbage
// collection's sweep phase — never by ordinary mutation,
// since a node may still be shared by another root.
func (s *NodeStore) DeleteNode(hash Hash) error {
	return wrapStorageErr("delete node", s.backend.Delete(hash[:]))
}

// ListHashes enumerates every node hash currently in the store.
func (s *NodeStore) ListHashes() ([]Hash, error) {
	keys, err := s.backend.List()
	if err != nil {
		return nil, wrapStorageErr("list", err)
	}
	out := make([]Hash, 0, len(keys))
	for _, k := range keys {
		if len(k) != HashSize {
			// Reserved keys (config, root) share the keyspace but are
			// not node hashes; skip them rather than fail.
			continue
		}
		out = append(out, HashFromBytes(k))
	}
	return out, nil
}

// LoadConfig reads back the tree's persisted TreeConfig, if any.
// ErrKeyNotFound means the store has never been initialized.
func (s *NodeStore) LoadConfig() (*TreeConfig, error) {
	data, err := s.backend.Get([]byte(reservedConfigKey))
	if err != nil {
		return nil, wrapStorageErr("load config", err)
	}
	return deserializeConfig(data)
}

// SaveConfig persists cfg under the reserved config key. Callers must
// first confirm (via LoadConfig + TreeConfig.Equal) that they are not
// silently changing the config of an existing store.
func (s *NodeStore) SaveConfig(cfg *TreeConfig) error {
	return wrapStorageErr("save config", s.backend.Put([]byte(reservedConfigKey), cfg.serialize()))
}

// LoadRoot reads back the tree's current root hash. ErrKeyNotFound means
// the tree is empty and has never been committed.
func (s *NodeStore) LoadRoot() (Hash, error) {
	data, err := s.backend.Get([]byte(reservedRootKey))
	if err != nil {
		return Hash{}, wrapStorageErr("load root", err)
	}
	return HashFromBytes(data), nil
}

// SaveRoot persists hash as the tree's current root pointer.
func (s *NodeStore) SaveRoot(hash Hash) error {
	return wrapStorageErr("save root", s.backend.Put([]byte(reservedRootKey), hash[:]))
}

// Close releases the underlying backend.
func (s *NodeStore) Close() error { return s.backend.Close() }
