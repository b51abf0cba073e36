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
	"encoding/hex"
	"os"
	"path/filepath"
)

// FileBackend stores every value as one file per key, hex-named, under a
// root directory. Node hashes make natural filenames: collisions are
// impossible short of a hash break, and the directory itself doubles as
// a human-inspectable dump of the store's contents.
type FileBackend struct {
	dir string
}

// NewFileBackend opens (creating if necessary) a FileBackend rooted at
// dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapStorageErr("open file backend", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(key []byte) string {
	return filepath.Join(f.dir, hex.EncodeToString(key))
}

func (f *FileBackend) Get(key []byte) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, wrapStorageErr("read file", err)
	}
	return data, nil
}

func (f *FileBackend) Put(key, value []byte) error {
	return wrapStorageErr("write file", os.WriteFile(f.path(key), value, 0o644))
}

func (f *FileBackend) Has(key []byte) (bool, error) {
	_, err := os.Stat(f.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, wrapStorageErr("stat file", err)
}

func (f *FileBackend) Delete(key []byte) error {
	err := os.Remove(f.path(key))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return wrapStorageErr("remove file", err)
}

func (f *FileBackend) List() ([][]byte, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, wrapStorageErr("list dir", err)
	}
	out := make([][]byte, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		k, err := hex.DecodeString(e.Name())
		if err != nil {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (f *FileBackend) Close() error { return nil }
