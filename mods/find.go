package mods

import (
	"duck/common"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// FindProject determines the project to build for a path given on the command
// line.  A directory must hold a project file.  A source file belongs to the
// project in its directory if that project names it as its entry; otherwise
// it is compiled as a lone file.
func FindProject(path string) (*DuckProject, error) {
	finfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if finfo.IsDir() {
		return LoadProject(path)
	}

	abspath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if filepath.Base(abspath) == common.ProjectFileName {
		return LoadProject(filepath.Dir(abspath))
	}

	if checkEntry(filepath.Dir(abspath), abspath) {
		return LoadProject(filepath.Dir(abspath))
	}

	return DefaultProject(abspath)
}

// checkEntry checks whether the project file in a directory (if any) names
// the given file as its entry
func checkEntry(dir, srcPath string) bool {
	projFilePath := filepath.Join(dir, common.ProjectFileName)

	finfo, err := os.Stat(projFilePath)
	if err != nil || finfo.IsDir() {
		return false
	}

	// only the entry field matters here so we don't do the full unmarshal (and
	// validation).  An invalid project file simply doesn't claim the file.
	tree, err := toml.LoadFile(projFilePath)
	if err != nil {
		return false
	}

	entry, ok := tree.Get("project.entry").(string)
	if !ok {
		return false
	}

	if !filepath.IsAbs(entry) {
		entry = filepath.Join(dir, entry)
	}

	return filepath.Clean(entry) == filepath.Clean(srcPath)
}
