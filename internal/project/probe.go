package project

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jakoblorz/flaskgen/internal/filesystem"
	"github.com/jakoblorz/flaskgen/internal/models"
)

// Probe classifies root. Checks run in order: existence, emptiness, then the
// entry point and environment markers.
func Probe(fsys filesystem.FileSystem, root string) (models.ProjectState, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.StateAbsent, nil
		}
		return models.StateAbsent, fmt.Errorf("failed to inspect %s: %w", root, err)
	}
	if !info.IsDir() {
		return models.StateAbsent, fmt.Errorf("%s exists and is not a directory", root)
	}

	entries, err := fsys.ReadDir(root)
	if err != nil {
		return models.StateAbsent, fmt.Errorf("failed to read %s: %w", root, err)
	}
	if len(entries) == 0 {
		return models.StateEmptyDir, nil
	}

	if IsRecognized(fsys, root) {
		return models.StateRecognizedExisting, nil
	}
	return models.StateUnrecognizedNonEmpty, nil
}

// IsRecognized reports whether root holds both an entry point and an environment directory.
func IsRecognized(fsys filesystem.FileSystem, root string) bool {
	return fsys.Exists(Path(root, MarkerEntry)) && HasVenv(fsys, root)
}

// HasVenv reports whether root contains an environment directory.
func HasVenv(fsys filesystem.FileSystem, root string) bool {
	info, err := fsys.Stat(Path(root, VenvDir))
	return err == nil && info.IsDir()
}
