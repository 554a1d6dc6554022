package stash

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary
// directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveBackupRoot determines the backup home. Precedence: explicit
// override, STASH_HOME, then the platform cache dir. Dev/test runs are
// re-rooted into a temp namespace so `go test` never touches a user's real
// backups.
func ResolveBackupRoot(override string, forceTemp bool) string {
	if forceTemp || IsDevRun() {
		// EXCEPTION: a path already inside the system temp dir is assumed
		// intentional (t.TempDir() or explicit intent) and trusted as is.
		if override != "" {
			clean := filepath.Clean(override)
			rel, err := filepath.Rel(os.TempDir(), clean)
			if err == nil && !strings.HasPrefix(rel, "..") {
				return clean
			}
		}
		return filepath.Join(os.TempDir(), "stash-dev", "backups")
	}

	if override != "" {
		return override
	}

	if env := os.Getenv("STASH_HOME"); env != "" {
		return filepath.Join(env, "backups")
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "stash", "backups")
	}
	return filepath.Join(cacheDir, "stash", "backups")
}
