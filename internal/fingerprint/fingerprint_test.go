package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBinary(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestHashFileMatchesSHA256(t *testing.T) {
	content := []byte("MZ\x90\x00binary-content")
	path := writeBinary(t, t.TempDir(), "game.exe", content)

	sum := sha256.Sum256(content)
	digest, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)
}

func TestHashReaderSpansChunks(t *testing.T) {
	content := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, ChunkSize)
	sum := sha256.Sum256(content)

	digest, err := HashReader(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"game.exe":           "game",
		"Game Engine.DLL":    "Game Engine",
		"archive.tar.gz":     "archive.tar",
		"noext":              "noext",
		".hidden":            ".hidden",
		"/opt/bin/game.exe":  "game",
		`C:\Games\swfoc.exe`: "swfoc",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, Stem(input), "input %q", input)
	}
}

func TestID(t *testing.T) {
	digest := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	assert.Equal(t, "game_0123456789abcdef", ID("game.exe", digest))
	assert.Equal(t, "star_wars_game_0123456789abcdef", ID("Star Wars Game.EXE", digest))
	assert.Equal(t, "short_abc", ID("short.bin", "abc"))
}

func TestComputeStable(t *testing.T) {
	path := writeBinary(t, t.TempDir(), "swfoc.exe", []byte("stable-bytes"))

	first, err := Compute(path)
	require.NoError(t, err)
	second, err := Compute(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "swfoc.exe", first.ModuleName)
	assert.Equal(t, ID("swfoc.exe", first.FileSha256), first.FingerprintID)
	assert.True(t, first.Valid())
}

func TestComputeSingleByteChange(t *testing.T) {
	content := []byte("0123456789abcdef")
	changed := append([]byte(nil), content...)
	changed[7] ^= 0x01

	original, err := Compute(writeBinary(t, t.TempDir(), "game.exe", content))
	require.NoError(t, err)
	modified, err := Compute(writeBinary(t, t.TempDir(), "game.exe", changed))
	require.NoError(t, err)

	assert.NotEqual(t, original.FileSha256, modified.FileSha256)
	assert.NotEqual(t, original.FingerprintID, modified.FingerprintID)
}

func TestComputeMissing(t *testing.T) {
	_, err := Compute(filepath.Join(t.TempDir(), "missing.exe"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBinaryNotFound))
}

func TestResolverCachesByFileState(t *testing.T) {
	path := writeBinary(t, t.TempDir(), "game.exe", []byte("version-1"))
	r := NewResolver(nil)

	first, err := r.Resolve(path)
	require.NoError(t, err)
	second, err := r.Resolve(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.HashCount())

	require.NoError(t, os.WriteFile(path, []byte("version-2"), 0644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := r.Resolve(path)
	require.NoError(t, err)
	assert.NotEqual(t, first.FileSha256, third.FileSha256)
	assert.Equal(t, 2, r.HashCount())
}

func TestResolverMissingBinary(t *testing.T) {
	_, err := NewResolver(nil).Resolve(filepath.Join(t.TempDir(), "nope.exe"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBinaryNotFound))
}

func TestResolverRejectsDirectory(t *testing.T) {
	_, err := NewResolver(nil).Resolve(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}
