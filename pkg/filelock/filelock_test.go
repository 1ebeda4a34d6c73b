// SPDX-License-Identifier: GPL-3.0-or-later

package filelock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.NotNil(t, New(""))
	assert.Equal(t, filepath.Join(os.TempDir(), "perf-stat"+suffix), New("").Filename("perf-stat"))
}

func TestLocker_Lock(t *testing.T) {
	tests := map[string]func(t *testing.T, dir string){
		"take a lock": func(t *testing.T, dir string) {
			reg := New(dir)

			assert.NoError(t, reg.Lock("perf-stat"))
			assert.True(t, reg.isLocked("perf-stat"))
		},
		"take the same lock twice": func(t *testing.T, dir string) {
			reg := New(dir)

			require.NoError(t, reg.Lock("perf-stat"))
			assert.NoError(t, reg.Lock("perf-stat"))
		},
		"lock held by another run": func(t *testing.T, dir string) {
			reg1 := New(dir)
			reg2 := New(dir)

			require.NoError(t, reg1.Lock("perf-stat"))

			err := reg2.Lock("perf-stat")
			assert.ErrorIs(t, err, ErrLocked)
			assert.False(t, reg2.isLocked("perf-stat"))
		},
		"directory doesn't exist": func(t *testing.T, dir string) {
			reg := New(filepath.Join(dir, "missing"))

			err := reg.Lock("perf-stat")
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrLocked)
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test(t, t.TempDir())
		})
	}
}

func TestLocker_Unlock(t *testing.T) {
	dir := t.TempDir()
	reg1 := New(dir)
	reg2 := New(dir)

	require.NoError(t, reg1.Lock("perf-record"))
	reg1.Unlock("perf-record")
	assert.False(t, reg1.isLocked("perf-record"))
	assert.FileExists(t, reg1.Filename("perf-record"))

	assert.NoError(t, reg2.Lock("perf-record"))

	reg1.Unlock("never-locked")
}

func TestLocker_UnlockAll(t *testing.T) {
	reg := New(t.TempDir())

	require.NoError(t, reg.Lock("a"))
	require.NoError(t, reg.Lock("b"))

	reg.UnlockAll()

	assert.False(t, reg.isLocked("a"))
	assert.False(t, reg.isLocked("b"))
	assert.FileExists(t, reg.Filename("a"))
	assert.FileExists(t, reg.Filename("b"))
}
