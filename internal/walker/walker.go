package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the maximum file size to process (64 MB).
const DefaultMaxFileSize int64 = 64 << 20

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash-separated path relative to the root directory.
	Size        int64  // File size in bytes.
	Type        Type   // Asset type guessed from the extension.
	ContentHash string // SHA-256 hex digest, empty when hashing is off.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir     string   // Root directory to walk.
	Include     []string // Glob patterns; only matching files are included.
	Exclude     []string // Glob patterns; matching files are excluded.
	MaxFileSize int64    // Files larger than this are skipped (0 = use default).
	Hash        bool     // Compute ContentHash for every file.
}

// Walk returns every regular file below config.RootDir that passes the
// filter, in lexical order. Hidden files, default-excluded directories,
// unreadable entries and files over the size limit are skipped.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}

	filter, err := NewFilter(config.Include, config.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path != root && skipDir(name) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || strings.HasPrefix(name, ".") {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if !filter.Keep(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		fi := FileInfo{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
			Type:    DetectType(name),
		}
		if config.Hash {
			if fi.ContentHash, err = hashFile(path); err != nil {
				return nil
			}
		}
		files = append(files, fi)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}
	return files, nil
}

// hashFile computes the SHA-256 digest of the given file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
