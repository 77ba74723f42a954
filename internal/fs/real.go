package fs

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// RealFileSystem performs actual filesystem operations.
type RealFileSystem struct {
	afero.Fs
}

// Rename performs the rename operation.
func (r *RealFileSystem) Rename(oldname, newname string) error {
	slog.Debug("renaming", "from", oldname, "to", newname)
	return r.Fs.Rename(oldname, newname)
}

// Remove performs the remove operation.
func (r *RealFileSystem) Remove(name string) error {
	slog.Debug("removing", "path", name)
	return r.Fs.Remove(name)
}

// RemoveAll performs the recursive remove operation.
func (r *RealFileSystem) RemoveAll(path string) error {
	slog.Debug("removing all", "path", path)
	return r.Fs.RemoveAll(path)
}

// Trash moves a file/directory to the system trash (platform-specific).
func (r *RealFileSystem) Trash(path string) error {
	slog.Debug("trashing", "path", path)
	switch runtime.GOOS {
	case "darwin":
		return trashDarwin(path)
	case "windows":
		return trashWindows(path)
	case "linux":
		return trashLinux(r.Fs, path)
	default:
		return fmt.Errorf("trash not supported on %s", runtime.GOOS)
	}
}

// AvailablePath returns path or the first free suffixed variant.
func (r *RealFileSystem) AvailablePath(path string) string {
	return availablePath(r.Fs, path)
}

// trashDarwin moves a file to trash on macOS using AppleScript.
func trashDarwin(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, absPath)
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// trashWindows moves a file to the Recycle Bin on Windows using PowerShell.
func trashWindows(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	// Escape single quotes for PowerShell single-quoted string (double them)
	escaped := strings.ReplaceAll(absPath, "'", "''")

	// Use Shell.Application COM object to move to recycle bin
	script := fmt.Sprintf(`
		$shell = New-Object -ComObject Shell.Application
		$item = $shell.Namespace(0).ParseName('%s')
		$item.InvokeVerb('delete')
	`, escaped)

	cmd := exec.Command("powershell", "-NoProfile", "-Command", script)
	return cmd.Run()
}

// trashLinux moves a file to trash following the FreeDesktop.org Trash specification.
// See: https://specifications.freedesktop.org/trash-spec/trashspec-latest.html
func trashLinux(fs afero.Fs, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	// Get the trash directory
	trashDir, err := getLinuxTrashDir()
	if err != nil {
		return err
	}

	// Ensure trash directories exist
	filesDir := filepath.Join(trashDir, "files")
	infoDir := filepath.Join(trashDir, "info")
	if err := fs.MkdirAll(filesDir, 0700); err != nil {
		return err
	}
	if err := fs.MkdirAll(infoDir, 0700); err != nil {
		return err
	}

	// Generate a unique name for the trashed file
	baseName := filepath.Base(absPath)
	trashedName := baseName
	trashedPath := filepath.Join(filesDir, trashedName)

	// If file already exists in trash, add a suffix
	for i := 1; ; i++ {
		if _, err := fs.Stat(trashedPath); os.IsNotExist(err) {
			break
		}
		trashedName = fmt.Sprintf("%s.%d", baseName, i)
		trashedPath = filepath.Join(filesDir, trashedName)
	}

	// Create the .trashinfo file
	infoPath := filepath.Join(infoDir, trashedName+".trashinfo")
	infoContent := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		absPath,
		time.Now().Format("2006-01-02T15:04:05"),
	)
	if err := afero.WriteFile(fs, infoPath, []byte(infoContent), 0600); err != nil {
		return err
	}

	// Move the file to trash
	if err := fs.Rename(absPath, trashedPath); err != nil {
		// Clean up the info file if move fails
		fs.Remove(infoPath)
		return err
	}

	return nil
}

// getLinuxTrashDir returns the path to the user's trash directory.
func getLinuxTrashDir() (string, error) {
	// First try XDG_DATA_HOME
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "Trash"), nil
	}

	// Fall back to ~/.local/share/Trash
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "Trash"), nil
}
