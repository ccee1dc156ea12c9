package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDBProviderBatchIsAtomic(t *testing.T) {
	p, err := NewMemLevelDBProvider()
	require.NoError(t, err)
	defer p.Close()

	batch := p.Batch()
	batch.Put([]byte("account:a"), []byte("1"))
	batch.Put([]byte("account:b"), []byte("2"))

	v, err := p.Get([]byte("account:a"))
	require.NoError(t, err)
	assert.Nil(t, v, "batch must not be visible before Write")

	require.NoError(t, batch.Write())

	v, err = p.Get([]byte("account:b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestLevelDBProviderMissingKey(t *testing.T) {
	p, err := NewMemLevelDBProvider()
	require.NoError(t, err)
	defer p.Close()

	v, err := p.Get([]byte("nope"))
	require.NoError(t, err)
	assert.Nil(t, v)

	ok, err := p.Has([]byte("nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLevelDBProviderIteratePrefix(t *testing.T) {
	p, err := NewLevelDBProvider(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Put([]byte("record:1"), []byte("a")))
	require.NoError(t, p.Put([]byte("record:2"), []byte("b")))
	require.NoError(t, p.Put([]byte("token:1"), []byte("c")))

	seen := map[string]string{}
	err = p.IteratePrefix([]byte("record:"), func(key, value []byte) bool {
		seen[string(key)] = string(value)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"record:1": "a", "record:2": "b"}, seen)

	// double close is tolerated
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}
