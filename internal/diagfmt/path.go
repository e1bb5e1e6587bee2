package diagfmt

import (
	"path/filepath"

	"wgslln/internal/source"
)

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		return f.DisplayPath("", true)
	case PathModeRelative:
		return f.DisplayPath(fs.BaseDir(), false)
	case PathModeBasename:
		return filepath.Base(f.Path)
	default:
		p := f.DisplayPath(fs.BaseDir(), false)
		if filepath.IsAbs(filepath.FromSlash(p)) {
			return f.Path
		}
		return p
	}
}
