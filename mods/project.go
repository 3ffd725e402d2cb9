package mods

import (
	"duck/common"
	"path/filepath"
	"strings"
)

// DuckProject represents a project -- specifically, the project configuration
// with every path resolved against the project root.
type DuckProject struct {
	// Name is the name of the project (also the default program name)
	Name string

	// Root is the path to the directory enclosing the project file
	Root string

	// EntryPath is the path to the source file to compile
	EntryPath string

	// GrammarPath is the path to a grammar overriding the built-in one.  It is
	// empty when the built-in grammar should be used.
	GrammarPath string

	// TableCachePath is the path the generated parsing table is cached at.  It
	// is empty if the table should be rebuilt on every compilation.
	TableCachePath string

	// OutputPath is the path the program object is written to
	OutputPath string

	// AllowConflicts indicates whether a grammar that is not SLR(1) should be
	// accepted (resolving conflicts by the fixed policy) instead of rejected
	AllowConflicts bool

	// Run holds the settings of the virtual machine
	Run RunSettings
}

// RunSettings configures program execution
type RunSettings struct {
	// MaxCallDepth is the maximum number of live call frames
	MaxCallDepth int

	// Inputs is a scripted list of lines fed to `read`.  If it is empty, input
	// is read from the console.
	Inputs []string
}

// DefaultProject creates the implicit project of a lone source file: the
// program object is written next to the file and nothing is cached
func DefaultProject(srcPath string) (*DuckProject, error) {
	abspath, err := filepath.Abs(srcPath)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(abspath), filepath.Ext(abspath))
	if !common.IsValidIdentifier(name) {
		name = "main"
	}

	return &DuckProject{
		Name:       name,
		Root:       filepath.Dir(abspath),
		EntryPath:  abspath,
		OutputPath: common.ReplaceExt(abspath, common.ProgramFileExtension),
		Run:        RunSettings{MaxCallDepth: common.DefaultMaxCallDepth},
	}, nil
}

// resolvePath makes a project-relative path absolute.  Empty paths stay empty.
func (dp *DuckProject) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dp.Root, path)
}
