package watcher

import "strings"

const (
	extendedPrefix    = `\\?\`
	extendedUNCPrefix = `\\?\UNC\`
)

// StripExtendedPrefix removes a Windows extended-length prefix.
//
//	\\?\C:\docs\a.md        -> C:\docs\a.md
//	\\?\UNC\server\share\x  -> \\server\share\x
//
// Paths without the prefix are returned unchanged.
func StripExtendedPrefix(path string) string {
	if strings.HasPrefix(path, extendedUNCPrefix) {
		return `\\` + path[len(extendedUNCPrefix):]
	}
	return strings.TrimPrefix(path, extendedPrefix)
}

func normalizeEvent(ev ChangeEvent) ChangeEvent {
	ev.Path = StripExtendedPrefix(ev.Path)
	ev.Path2 = StripExtendedPrefix(ev.Path2)
	return ev
}
