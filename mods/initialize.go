package mods

import (
	"duck/common"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// InitProject creates a new project with the given name at the given path.  A
// starter entry file is written too unless one already exists.
func InitProject(name, path string) error {
	// convert the project directory to the path to the project file
	projFilePath := filepath.Join(path, common.ProjectFileName)

	// check to see if a project already exists
	_, err := os.Stat(projFilePath)
	if err == nil {
		return errors.New("project file already exists")
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("project file error: %s", err.Error())
	}

	// validate project name
	if !common.IsValidIdentifier(name) {
		return errors.New("project name must be a valid identifier")
	}

	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return err
	}

	tpf := &tomlProjectFile{
		Project: &tomlProject{
			Name:       name,
			Entry:      "main" + common.SrcFileExtension,
			TableCache: filepath.Join(".duck", "duck"+common.TableFileExtension),
			Output:     filepath.Join("out", name+common.ProgramFileExtension),
			Version:    common.DuckVersion,
		},
		Run: &tomlRun{MaxCallDepth: common.DefaultMaxCallDepth},
	}

	// encode and save project to file
	f, err := os.Create(projFilePath)
	if err != nil {
		return fmt.Errorf("error creating project file: %s", err.Error())
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Order(toml.OrderPreserve).Encode(tpf); err != nil {
		return fmt.Errorf("error encoding TOML %s", err.Error())
	}

	entryPath := filepath.Join(path, tpf.Project.Entry)
	if _, err := os.Stat(entryPath); os.IsNotExist(err) {
		return ioutil.WriteFile(entryPath, []byte(starterSource(name)), 0644)
	}

	return nil
}

// starterSource is the entry file of a freshly initialized project
func starterSource(name string) string {
	return fmt.Sprintf("program %s;\n\nmain {\n  write(\"hello from %s\");\n}\nend\n", name, name)
}
