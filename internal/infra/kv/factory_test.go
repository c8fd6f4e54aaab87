package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(Options{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "f.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.(*SQLiteStore).Close()

	_, err = New(Options{Backend: BackendRedis})
	assert.Error(t, err)

	_, err = New(Options{Backend: "etcd"})
	assert.Error(t, err)
}
