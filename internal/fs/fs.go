package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileSystem extends afero.Fs with the operations the workspace needs beyond
// plain file I/O.
type FileSystem interface {
	afero.Fs

	// Trash moves a file/directory to the system trash (platform-specific).
	// On macOS: uses Finder via AppleScript
	// On Windows: uses Recycle Bin via PowerShell
	// On Linux: follows FreeDesktop.org Trash specification
	Trash(path string) error

	// AvailablePath returns path if nothing exists there, otherwise the first
	// free suffixed variant (file_2.md, file_3.md, ...).
	AvailablePath(path string) string
}

// NewReal creates a FileSystem that performs actual filesystem operations.
func NewReal() FileSystem {
	return &RealFileSystem{
		Fs: afero.NewOsFs(),
	}
}

// NewMemTest returns a MemFileSystem for testing with access to Must* helpers.
func NewMemTest() *MemFileSystem {
	return &MemFileSystem{Fs: afero.NewMemMapFs()}
}

// GenerateSuffixedPath generates a path with a numeric suffix.
// For example: note.md with suffix 2 becomes note_2.md
// For multi-extension files: archive.tar.gz becomes archive_2.tar.gz
func GenerateSuffixedPath(path string, suffix int) string {
	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	// Find the base name and extensions
	// For "archive.tar.gz" we want base="archive", ext=".tar.gz"
	// For ".hidden.txt" we want base=".hidden", ext=".txt"
	base, ext := splitFilenameAndExtensions(filename)

	newFilename := fmt.Sprintf("%s_%d%s", base, suffix, ext)
	return filepath.Join(dir, newFilename)
}

// availablePath finds the first path that does not exist yet.
func availablePath(afs afero.Fs, path string) string {
	if _, err := afs.Stat(path); os.IsNotExist(err) {
		return path
	}
	for i := 2; ; i++ {
		candidate := GenerateSuffixedPath(path, i)
		if _, err := afs.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// splitFilenameAndExtensions splits a filename into base and extensions.
// Unlike filepath.Ext, this treats compound extensions as one unit.
// Examples:
//   - "file.txt" → ("file", ".txt")
//   - "archive.tar.gz" → ("archive", ".tar.gz")
//   - "file" → ("file", "")
//   - ".hidden" → (".hidden", "")
//   - ".hidden.txt" → (".hidden", ".txt")
func splitFilenameAndExtensions(filename string) (base, ext string) {
	// Handle hidden files (starting with .)
	if strings.HasPrefix(filename, ".") {
		// Find the first dot after the leading dot
		rest := filename[1:]
		idx := strings.Index(rest, ".")
		if idx == -1 {
			// No extension, e.g., ".hidden"
			return filename, ""
		}
		// e.g., ".hidden.txt" → base=".hidden", ext=".txt"
		return filename[:idx+1], filename[idx+1:]
	}

	// Normal files - find the first dot
	idx := strings.Index(filename, ".")
	if idx == -1 {
		return filename, ""
	}
	return filename[:idx], filename[idx:]
}
