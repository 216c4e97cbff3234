// Package storage persists saved games, per-variant statistics and user
// preferences in a BadgerDB database.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName = "chessrules"

	// DataDirEnv overrides the data directory.
	DataDirEnv = "CHESSRULES_DATA_DIR"
)

// GetDataDir returns the data directory and creates it if needed.
// DataDirEnv wins when set. Otherwise the directory lives under the
// platform's per-user data location:
//   - macOS: ~/Library/Application Support/chessrules/
//   - Linux: $XDG_DATA_HOME/chessrules/ or ~/.local/share/chessrules/
//   - Windows: %APPDATA%/chessrules/
func GetDataDir() (string, error) {
	dataDir := os.Getenv(DataDirEnv)
	if dataDir == "" {
		base, err := userDataBase()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(base, appName)
	}
	return ensureDir(dataDir)
}

// userDataBase picks the per-user data root. Environment variables come
// first and the home directory is the fallback.
func userDataBase() (string, error) {
	env, fallback := "XDG_DATA_HOME", []string{".local", "share"}
	switch runtime.GOOS {
	case "darwin":
		env, fallback = "", []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	}

	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// GetDatabaseDir returns the directory for the BadgerDB database under
// dataDir, or under GetDataDir when dataDir is empty.
func GetDatabaseDir(dataDir string) (string, error) {
	if dataDir == "" {
		var err error
		if dataDir, err = GetDataDir(); err != nil {
			return "", err
		}
	}
	return ensureDir(filepath.Join(dataDir, "db"))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
