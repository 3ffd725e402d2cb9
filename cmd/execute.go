package cmd

import (
	"duck/build"
	"duck/common"
	"duck/generate"
	"duck/grammar"
	"duck/ir"
	"duck/logging"
	"duck/mods"
	"duck/syntax"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"
)

// Execute runs the main `duck` application
func Execute() {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("duck", "duck is a tool for compiling and running Duck programs", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("warn")
	cli.AddFlag("quads", "q", "display the generated quadruples")

	buildCmd := cli.AddSubcommand("build", "compile a program to a program object", true)
	buildCmd.AddPrimaryArg("project-path", "the path to the project or source file to build", true)

	runCmd := cli.AddSubcommand("run", "compile and run a program", true)
	runCmd.AddPrimaryArg("project-path", "the path to the project, source file or program object to run", true)

	tableCmd := cli.AddSubcommand("table", "generate the parsing table of a grammar", true)
	tableCmd.AddPrimaryArg("grammar-path", "the path to the grammar file (the built-in grammar if omitted)", false)
	tableCmd.AddStringArg("output", "o", "the path to write the table to", false)
	tableCmd.AddFlag("show", "s", "display the FIRST/FOLLOW sets, the LR(0) states and the table")
	tableCmd.AddFlag("allow-conflicts", "ac", "resolve conflicts instead of rejecting the grammar")

	llvmCmd := cli.AddSubcommand("llvm", "emit the LLVM IR of a program", true)
	llvmCmd.AddPrimaryArg("project-path", "the path to the project or source file to convert", true)
	llvmCmd.AddStringArg("output", "o", "the path to write the module to", false)

	initCmd := cli.AddSubcommand("init", "initialize a project", true)
	initCmd.AddPrimaryArg("project-name", "the name of the project to create", true)

	cli.AddSubcommand("version", "print the Duck version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}

	logging.Initialize(result.Arguments["loglevel"].(string))
	showQuads := result.HasFlag("quads")

	// process the inputed command line
	ok := true
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		ok = execBuildCommand(subResult, showQuads)
	case "run":
		ok = execRunCommand(subResult, showQuads)
	case "table":
		ok = execTableCommand(subResult)
	case "llvm":
		ok = execLLVMCommand(subResult, showQuads)
	case "init":
		ok = execInitCommand(subResult)
	case "version":
		logging.PrintInfoMessage("Duck Version", common.DuckVersion)
	}

	if !ok {
		os.Exit(1)
	}
}

// execBuildCommand executes the build subcommand and handles all errors
func execBuildCommand(result *olive.ArgParseResult, showQuads bool) bool {
	c, prog, ok := compileProject(result, showQuads)
	if !ok {
		return false
	}

	if err := c.WriteProgram(prog); err != nil {
		logging.LogConfigError("Output", "error writing program object: "+err.Error())
		return finish(false)
	}

	return finish(true)
}

// execRunCommand executes the run subcommand: program objects are loaded
// directly and anything else is compiled first
func execRunCommand(result *olive.ArgParseResult, showQuads bool) bool {
	path, _ := result.PrimaryArg()

	var prog *ir.Program
	settings := mods.RunSettings{MaxCallDepth: common.DefaultMaxCallDepth}

	if filepath.Ext(path) == common.ProgramFileExtension {
		var err error
		prog, err = ir.LoadProgram(path)
		if err != nil {
			logging.LogConfigError("Program Object", "error loading program object: "+err.Error())
			return false
		}

		if showQuads {
			logging.LogQuadTable(prog.Name, prog.Rows())
		}
	} else {
		c, compiled, ok := compileProject(result, showQuads)
		if !ok {
			return false
		}

		if !finish(true) {
			return false
		}

		prog = compiled
		settings = c.Project().Run
	}

	console := build.NewConsole(settings, os.Stdin, os.Stdout)
	return build.Run(prog, console, settings) == nil
}

// execTableCommand executes the table subcommand: offline generation of a
// parsing table
func execTableCommand(result *olive.ArgParseResult) bool {
	var g *grammar.Grammar
	var err error
	grammarPath, _ := result.PrimaryArg()
	if grammarPath != "" {
		g, err = grammar.LoadGrammar(grammarPath)
	} else {
		grammarPath = "duck.grammar"
		g, err = grammar.Default()
	}

	if err != nil {
		logging.LogError(grammarPath, "Grammar", err)
		return false
	}

	tb := grammar.NewTableBuilder(g)
	ptable, err := tb.Build(!result.HasFlag("allow-conflicts"))
	if err != nil {
		logging.LogError(grammarPath, "Grammar", err)
		return false
	}

	for _, conflict := range ptable.Conflicts {
		logging.LogConfigWarning("Grammar", conflict)
	}

	// the sets and states come first so conflicts can be traced back to them
	if result.HasFlag("show") {
		tb.Analysis.DumpSets(os.Stdout)
		fmt.Println()
		tb.Automaton.Dump(os.Stdout)
		ptable.Dump(os.Stdout)
	}

	outPath := common.ReplaceExt(filepath.Base(grammarPath), common.TableFileExtension)
	if outArg, ok := result.Arguments["output"]; ok {
		outPath = outArg.(string)
	}

	if err := syntax.SaveParsingTable(outPath, ptable); err != nil {
		logging.LogConfigError("Output", "error writing parsing table: "+err.Error())
		return false
	}

	logging.PrintInfoMessage("Parsing Table", outPath)
	return true
}

// execLLVMCommand executes the llvm subcommand: the program is compiled and
// its LLVM IR is written out
func execLLVMCommand(result *olive.ArgParseResult, showQuads bool) bool {
	c, prog, ok := compileProject(result, showQuads)
	if !ok {
		return false
	}

	outPath := common.ReplaceExt(c.Project().OutputPath, common.LLVMFileExtension)
	if outArg, ok := result.Arguments["output"]; ok {
		outPath = outArg.(string)
	}

	f, err := os.Create(outPath)
	if err != nil {
		logging.LogConfigError("Output", "error creating module file: "+err.Error())
		return finish(false)
	}
	defer f.Close()

	if err := generate.WriteModule(prog, f); err != nil {
		logging.LogConfigError("LLVM", "error generating module: "+err.Error())
		return finish(false)
	}

	return finish(true)
}

// execInitCommand executes the `init` subcommand: the project is created in a
// directory named after it
func execInitCommand(result *olive.ArgParseResult) bool {
	name, _ := result.PrimaryArg()

	workDir, err := os.Getwd()
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return false
	}

	if err := mods.InitProject(name, filepath.Join(workDir, name)); err != nil {
		logging.PrintErrorMessage("Project Init Error", err)
		return false
	}

	return true
}

// -----------------------------------------------------------------------------

// compileProject finds the project at the primary argument and compiles it.
// It handles all errors appropriately.
func compileProject(result *olive.ArgParseResult, showQuads bool) (*build.Compiler, *ir.Program, bool) {
	relPath, _ := result.PrimaryArg()

	path, err := filepath.Abs(relPath)
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return nil, nil, false
	}

	project, err := mods.FindProject(path)
	if err != nil {
		logging.LogConfigError("Project", "error loading project: "+err.Error())
		return nil, nil, false
	}

	c := build.NewCompiler(project)
	prog, err := c.Compile()
	if err != nil {
		return nil, nil, finish(false)
	}

	if showQuads {
		logging.LogQuadTable(prog.Name, prog.Rows())
	}

	return c, prog, true
}

// finish displays the closing summary of compilation and passes on its success
func finish(success bool) bool {
	logging.LogCompilationFinished()
	return success
}
