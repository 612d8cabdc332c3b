package repo

import (
	"os"

	"github.com/odvcencio/wit/pkg/object"
)

// filePermFromMode maps a blob leaf mode to the permission bits used on
// checkout. Only the executable bit is carried.
func filePermFromMode(mode string) os.FileMode {
	if mode == object.TreeModeExecutable {
		return 0o755
	}
	return 0o644
}

// modeFromFileInfo returns the tree leaf mode for a file on disk.
func modeFromFileInfo(info os.FileInfo) string {
	switch {
	case info.IsDir():
		return object.TreeModeDir
	case info.Mode()&os.ModeSymlink != 0:
		return object.TreeModeSymlink
	case info.Mode()&0o111 != 0:
		return object.TreeModeExecutable
	default:
		return object.TreeModeFile
	}
}
