package watcher

import (
	"errors"
	"fmt"
)

var (
	// ErrNotDirectory is returned when a watch root is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrRelativeRoot is returned when a watch root is not an absolute path.
	ErrRelativeRoot = errors.New("folder path must be absolute")
)

// InstallError reports that the watch on Root could not be installed. The
// dispatcher is degraded after returning one; any other error from a
// retarget means the request itself was not applied.
type InstallError struct {
	Root string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to watch %s: %v", e.Root, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// IsInstallError reports whether err is or wraps an *InstallError.
func IsInstallError(err error) bool {
	var ie *InstallError
	return errors.As(err, &ie)
}

// Handle identifies one installed watch.
type Handle interface {
	Root() string
}

// Source is the OS-level recursive watch primitive.
//
// Install starts delivering RawEvents for everything under root to callback,
// from a goroutine owned by the source. Uninstall stops delivery; once it
// returns the callback is not invoked again for that handle.
type Source interface {
	Install(root string, callback func(RawEvent)) (Handle, error)
	Uninstall(h Handle) error
}
