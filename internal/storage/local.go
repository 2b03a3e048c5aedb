package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yairfalse/vahti/pkg/types"
)

// ErrNoSnapshots means the snapshot directory holds nothing to compare.
var ErrNoSnapshots = errors.New("no snapshots")

// Config configures local snapshot storage
type Config struct {
	BaseDir string
}

// SnapshotInfo describes one stored snapshot file
type SnapshotInfo struct {
	// Start is the snapshot start timestamp carried in the filename
	Start    string
	FilePath string
	FileSize int64
}

// LocalStorage keeps snapshots as JSON files in one directory.
// Files are named after their start timestamp, so a plain directory
// listing sorts chronologically.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the snapshot directory if needed
func NewLocalStorage(config Config) (*LocalStorage, error) {
	if config.BaseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		config.BaseDir = filepath.Join(homeDir, ".vahti", "snapshots")
	}

	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", config.BaseDir, err)
	}

	return &LocalStorage{dir: config.BaseDir}, nil
}

// Dir returns the snapshot directory
func (s *LocalStorage) Dir() string {
	return s.dir
}

// SaveSnapshot writes a snapshot to disk and returns its path
func (s *LocalStorage) SaveSnapshot(snapshot *types.Snapshot) (string, error) {
	if err := snapshot.Validate(); err != nil {
		return "", fmt.Errorf("invalid snapshot: %w", err)
	}

	path := filepath.Join(s.dir, snapshot.Metadata.Start+".json")
	if err := s.saveJSON(path, snapshot); err != nil {
		return "", err
	}

	return path, nil
}

// ListSnapshots returns stored snapshots, newest first
func (s *LocalStorage) ListSnapshots() ([]SnapshotInfo, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	var infos []SnapshotInfo
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		stat, err := file.Info()
		if err != nil {
			continue
		}

		infos = append(infos, SnapshotInfo{
			Start:    strings.TrimSuffix(file.Name(), ".json"),
			FilePath: filepath.Join(s.dir, file.Name()),
			FileSize: stat.Size(),
		})
	}

	// Timestamp filenames make newest-first a plain name sort
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Start > infos[j].Start
	})

	return infos, nil
}

// LoadSnapshot reads one snapshot file
func (s *LocalStorage) LoadSnapshot(path string) (*types.Snapshot, error) {
	var snapshot types.Snapshot
	if err := s.loadJSON(path, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// LatestPair returns the two newest snapshots for comparison. With a
// single snapshot on disk previous is nil, so a first run reports
// everything as new.
func (s *LocalStorage) LatestPair() (current, previous *types.Snapshot, err error) {
	infos, err := s.ListSnapshots()
	if err != nil {
		return nil, nil, err
	}
	if len(infos) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoSnapshots, s.dir)
	}

	current, err = s.LoadSnapshot(infos[0].FilePath)
	if err != nil {
		return nil, nil, err
	}

	if len(infos) > 1 {
		previous, err = s.LoadSnapshot(infos[1].FilePath)
		if err != nil {
			return nil, nil, err
		}
	}

	return current, previous, nil
}

// Prune removes all but the newest keep snapshots and reports how many
// files were deleted. keep <= 0 disables pruning.
func (s *LocalStorage) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	infos, err := s.ListSnapshots()
	if err != nil {
		return 0, err
	}
	if len(infos) <= keep {
		return 0, nil
	}

	removed := 0
	for _, info := range infos[keep:] {
		if err := os.Remove(info.FilePath); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", info.FilePath, err)
		}
		removed++
	}

	return removed, nil
}

// saveJSON writes through a temp file and renames into place so a
// crash mid-write never leaves a half-written .json behind. The temp
// name has no .json suffix, keeping it invisible to ListSnapshots.
func (s *LocalStorage) saveJSON(path string, data interface{}) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// loadJSON loads JSON data from the specified path
func (s *LocalStorage) loadJSON(path string, target interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	return nil
}
