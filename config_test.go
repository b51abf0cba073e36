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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigRoundTripsThroughSerialize(t *testing.T) {
	cfg := DefaultConfig()
	data := cfg.serialize()

	got, err := deserializeConfig(data)
	require.NoError(t, err)
	require.True(t, cfg.Equal(got))
}

func TestConfigRoundTripPreservesTypeHints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeyTypeHint = "string"
	cfg.ValueTypeHint = "json"
	cfg.HashAlgorithm = HashBLAKE3

	got, err := deserializeConfig(cfg.serialize())
	require.NoError(t, err)
	require.True(t, cfg.Equal(got))
	require.Equal(t, "string", got.KeyTypeHint)
	require.Equal(t, "json", got.ValueTypeHint)
	require.Equal(t, HashBLAKE3, got.HashAlgorithm)
}

func TestConfigEqualDetectsMismatch(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	require.True(t, a.Equal(b))

	b.MaxChunkSize = a.MaxChunkSize + 1
	require.False(t, a.Equal(b))
}

func TestConfigEqualHandlesNil(t *testing.T) {
	var a *TreeConfig
	b := DefaultConfig()
	require.False(t, a.Equal(b))
	require.False(t, b.Equal(a))
	require.True(t, a.Equal(nil))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MinChunkSize = 1
	require.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultConfig()
	bad.MaxChunkSize = bad.MinChunkSize - 1
	require.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestDeserializeConfigRejectsTruncatedBuffer(t *testing.T) {
	cfg := DefaultConfig()
	data := cfg.serialize()
	_, err := deserializeConfig(data[:len(data)-1])
	require.Error(t, err)
}
