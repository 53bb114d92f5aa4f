package fingerprint

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/symbolpack/internal/ir"
)

// cacheKey identifies one observed state of a file on disk.
type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

// Resolver computes fingerprints and memoizes them per file state, so
// stages that touch the same binary share one hash computation.
//
// A Resolver is not safe for concurrent use; the pipeline is single-threaded.
type Resolver struct {
	cache  map[cacheKey]ir.BinaryFingerprint
	hashes int
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		cache:  make(map[cacheKey]ir.BinaryFingerprint),
		logger: logger,
	}
}

// Resolve returns the fingerprint of the binary at binaryPath. A cached
// result is reused while the file's size and modification time are
// unchanged.
func (r *Resolver) Resolve(binaryPath string) (ir.BinaryFingerprint, error) {
	abs, err := filepath.Abs(binaryPath)
	if err != nil {
		return ir.BinaryFingerprint{}, fmt.Errorf("resolve binary path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ir.BinaryFingerprint{}, fmt.Errorf("%w: %s", ErrBinaryNotFound, abs)
		}
		return ir.BinaryFingerprint{}, fmt.Errorf("stat binary: %w", err)
	}
	if info.IsDir() {
		return ir.BinaryFingerprint{}, fmt.Errorf("binary path is a directory: %s", abs)
	}

	key := cacheKey{path: abs, size: info.Size(), modTime: info.ModTime()}
	if fp, ok := r.cache[key]; ok {
		r.logger.Debug("fingerprint reused", "path", abs, "fingerprint_id", fp.FingerprintID)
		return fp, nil
	}

	fp, err := Compute(abs)
	if err != nil {
		return ir.BinaryFingerprint{}, err
	}
	r.hashes++
	r.cache[key] = fp
	r.logger.Debug("fingerprint computed", "path", abs, "fingerprint_id", fp.FingerprintID, "bytes", info.Size())
	return fp, nil
}

// HashCount reports how many files the resolver actually hashed.
func (r *Resolver) HashCount() int {
	return r.hashes
}
