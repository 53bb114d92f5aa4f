// Package fingerprint computes content identities for analyzed binaries.
//
// A binary is hashed with SHA-256 in fixed-size chunks, so memory use is
// bounded regardless of binary size. The fingerprint id combines the module
// stem with the first 16 hex characters of the digest:
//
//	fingerprintId = lower(stem(moduleName)) + "_" + sha256[:16]
//
// Spaces in the stem become underscores.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/roach88/symbolpack/internal/ir"
)

// ChunkSize is the read size used when hashing files.
const ChunkSize = 1 << 20

// idDigestChars is the number of digest characters kept in a fingerprint id.
const idDigestChars = 16

// ErrBinaryNotFound is returned when the binary to fingerprint does not exist.
var ErrBinaryNotFound = errors.New("binary not found")

// HashFile returns the lowercase hex SHA-256 of the file at path.
func HashFile(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}

// HashReader returns the lowercase hex SHA-256 of everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, ChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hash content: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Stem returns the final path element without its last extension. Both
// slash styles separate elements. Dot files without a further extension
// are returned unchanged.
func Stem(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := path.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// ID derives the fingerprint id from a module name and file digest.
func ID(moduleName, fileSha256 string) string {
	stem := strings.ReplaceAll(strings.ToLower(Stem(moduleName)), " ", "_")
	digest := fileSha256
	if len(digest) > idDigestChars {
		digest = digest[:idDigestChars]
	}
	return stem + "_" + digest
}

// New builds a fingerprint from a module name and file digest.
func New(moduleName, fileSha256 string) ir.BinaryFingerprint {
	return ir.BinaryFingerprint{
		FingerprintID: ID(moduleName, fileSha256),
		ModuleName:    moduleName,
		FileSha256:    fileSha256,
	}
}

// Compute hashes the binary at path and derives its fingerprint. The module
// name is the file's base name.
func Compute(binaryPath string) (ir.BinaryFingerprint, error) {
	digest, err := HashFile(binaryPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ir.BinaryFingerprint{}, fmt.Errorf("%w: %s", ErrBinaryNotFound, binaryPath)
		}
		return ir.BinaryFingerprint{}, fmt.Errorf("fingerprint %s: %w", binaryPath, err)
	}
	return New(filepath.Base(binaryPath), digest), nil
}
