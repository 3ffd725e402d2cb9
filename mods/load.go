package mods

import (
	"duck/common"
	"duck/logging"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// tomlProjectFile represents the project file as it is encoded in TOML
type tomlProjectFile struct {
	Project *tomlProject `toml:"project"`
	Run     *tomlRun     `toml:"run"`
}

// tomlProject represents the project table as it is encoded in TOML
type tomlProject struct {
	Name           string `toml:"name"`
	Entry          string `toml:"entry"`
	Grammar        string `toml:"grammar,omitempty"`
	TableCache     string `toml:"table-cache,omitempty"`
	Output         string `toml:"output,omitempty"`
	AllowConflicts bool   `toml:"allow-conflicts"`
	Version        string `toml:"duck-version"`
}

// tomlRun represents the run settings as they are encoded in TOML
type tomlRun struct {
	MaxCallDepth int      `toml:"max-call-depth"`
	Inputs       []string `toml:"inputs,omitempty"`
}

// LoadProject loads and validates a project.  `path` is the path to the
// project directory.
func LoadProject(path string) (*DuckProject, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// open file
	f, err := os.Open(filepath.Join(root, common.ProjectFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// unmarshal the contents
	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}
	tpf := &tomlProjectFile{}
	if err := toml.Unmarshal(buff, tpf); err != nil {
		return nil, err
	}

	if err := validateProject(root, tpf); err != nil {
		return nil, err
	}

	// move all the relevant TOML attributes over to the project
	dp := &DuckProject{
		Name:           tpf.Project.Name,
		Root:           root,
		AllowConflicts: tpf.Project.AllowConflicts,
		Run:            RunSettings{MaxCallDepth: common.DefaultMaxCallDepth},
	}

	dp.EntryPath = dp.resolvePath(tpf.Project.Entry)
	dp.GrammarPath = dp.resolvePath(tpf.Project.Grammar)
	dp.TableCachePath = dp.resolvePath(tpf.Project.TableCache)

	if tpf.Project.Output == "" {
		dp.OutputPath = filepath.Join(root, "out", dp.Name+common.ProgramFileExtension)
	} else {
		dp.OutputPath = dp.resolvePath(tpf.Project.Output)
	}

	if tpf.Run != nil {
		if tpf.Run.MaxCallDepth > 0 {
			dp.Run.MaxCallDepth = tpf.Run.MaxCallDepth
		}

		dp.Run.Inputs = tpf.Run.Inputs
	}

	return dp, nil
}

// validateProject checks that the project file contents are valid
func validateProject(root string, tpf *tomlProjectFile) error {
	if tpf.Project == nil {
		return fmt.Errorf("missing [project] table in project at %s", root)
	}
	proj := tpf.Project

	if proj.Name == "" {
		return fmt.Errorf("missing project name for project at %s", root)
	}

	if !common.IsValidIdentifier(proj.Name) {
		return errors.New("project name must be a valid identifier")
	}

	if proj.Entry == "" {
		return fmt.Errorf("project `%s` must specify an entry file", proj.Name)
	}

	if filepath.Ext(proj.Entry) != common.SrcFileExtension {
		return fmt.Errorf("entry file of project `%s` must be a `%s` file", proj.Name, common.SrcFileExtension)
	}

	if tpf.Run != nil && tpf.Run.MaxCallDepth < 0 {
		return fmt.Errorf("max-call-depth of project `%s` cannot be negative", proj.Name)
	}

	if proj.Version != common.DuckVersion {
		logging.LogConfigWarning(
			"Project",
			fmt.Sprintf("version of project `%s` (v%s) does not match current duck version (v%s)", proj.Name, proj.Version, common.DuckVersion),
		)
	}

	return nil
}
