package build

import (
	"duck/ir"
	"duck/logging"
	"duck/mods"
	"duck/syntax"
	"io/ioutil"
	"os"
	"path/filepath"
)

// Compiler is the data structure responsible for maintaining all high-level
// state of the Duck compiler: the project being built and the parsing table
// shared by every compilation
type Compiler struct {
	// project is the project being compiled
	project *mods.DuckProject

	// parsingTable is the SLR(1) table driving the parser.  It is loaded
	// lazily by the first compilation.
	parsingTable *syntax.ParsingTable

	// cached indicates whether the parsing table was loaded from the table
	// cache instead of being generated
	cached bool
}

// NewCompiler creates a new compiler for a project
func NewCompiler(project *mods.DuckProject) *Compiler {
	return &Compiler{project: project}
}

// Project returns the project the compiler builds
func (c *Compiler) Project() *mods.DuckProject {
	return c.project
}

// Compile runs the full compilation algorithm on the entry file of the project
// and returns the program object.  All errors are logged before they are
// returned.
func (c *Compiler) Compile() (*ir.Program, error) {
	buff, err := ioutil.ReadFile(c.project.EntryPath)
	if err != nil {
		logging.LogConfigError("File", "error reading entry file: "+err.Error())
		return nil, err
	}

	return c.CompileSource(string(buff))
}

// CompileSource compiles source text as the entry file of the project
func (c *Compiler) CompileSource(src string) (*ir.Program, error) {
	if err := c.LoadTable(); err != nil {
		return nil, err
	}

	logging.LogCompileHeader(c.project.Name, c.cached)

	logging.LogBeginPhase("Scanning")
	toks, err := syntax.Tokenize(src)
	if err != nil {
		return nil, c.fail(err)
	}
	logging.LogEndPhase(true)

	logging.LogBeginPhase("Parsing")
	parser := syntax.NewParser(c.parsingTable, toks)
	gen, err := parser.Parse()
	if err != nil {
		return nil, c.fail(err)
	}
	logging.LogEndPhase(true)

	name := parser.Context().ProgramName
	if name == "" {
		name = c.project.Name
	}

	logging.LogBeginPhase("Generating")
	prog, err := gen.Export(name)
	if err != nil {
		return nil, c.fail(err)
	}
	logging.LogEndPhase(true)

	return prog, nil
}

// fail ends the current phase unsuccessfully and logs the error
func (c *Compiler) fail(err error) error {
	logging.LogEndPhase(false)
	logging.LogError(c.project.EntryPath, "Compile", err)
	return err
}

// WriteProgram writes a program object to the output path of the project
func (c *Compiler) WriteProgram(prog *ir.Program) error {
	if err := os.MkdirAll(filepath.Dir(c.project.OutputPath), os.ModeDir|0755); err != nil {
		return err
	}

	return ir.SaveProgram(c.project.OutputPath, prog)
}
