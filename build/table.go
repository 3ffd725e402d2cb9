package build

import (
	"duck/grammar"
	"duck/logging"
	"duck/syntax"
	"os"
	"path/filepath"
)

// LoadTable initializes the parsing table of the compiler.  A table cache that
// is at least as recent as the grammar is loaded directly; otherwise the table
// is generated from the project grammar (or the built-in one) and cached.
func (c *Compiler) LoadTable() error {
	if c.parsingTable != nil {
		return nil
	}

	if c.cacheIsFresh() {
		ptable, err := syntax.LoadParsingTable(c.project.TableCachePath)
		if err == nil {
			c.parsingTable = ptable
			c.cached = true
			return nil
		}

		// a corrupt cache is regenerated
		logging.LogConfigWarning("Table Cache", "discarding unreadable table cache: "+err.Error())
	}

	logging.LogBeginPhase("Grammar")
	ptable, err := c.generateTable()
	if err != nil {
		logging.LogEndPhase(false)
		logging.LogConfigError("Grammar", "error building parsing table: "+err.Error())
		return err
	}
	logging.LogEndPhase(true)

	for _, conflict := range ptable.Conflicts {
		logging.LogConfigWarning("Grammar", conflict)
	}

	c.parsingTable = ptable

	if path := c.project.TableCachePath; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), os.ModeDir|0755); err == nil {
			err = syntax.SaveParsingTable(path, ptable)
		}

		// failing to cache only costs time on the next compilation
		if err != nil {
			logging.LogConfigWarning("Table Cache", "unable to cache parsing table: "+err.Error())
		}
	}

	return nil
}

// generateTable builds the parsing table from the grammar of the project
func (c *Compiler) generateTable() (*syntax.ParsingTable, error) {
	var g *grammar.Grammar
	var err error
	if c.project.GrammarPath != "" {
		g, err = grammar.LoadGrammar(c.project.GrammarPath)
	} else {
		g, err = grammar.Default()
	}

	if err != nil {
		return nil, err
	}

	return grammar.BuildTable(g, !c.project.AllowConflicts)
}

// cacheIsFresh checks whether the table cache exists and is not older than
// the grammar override
func (c *Compiler) cacheIsFresh() bool {
	if c.project.TableCachePath == "" {
		return false
	}

	cinfo, err := os.Stat(c.project.TableCachePath)
	if err != nil {
		return false
	}

	if c.project.GrammarPath == "" {
		return true
	}

	ginfo, err := os.Stat(c.project.GrammarPath)
	if err != nil {
		return false
	}

	return !cinfo.ModTime().Before(ginfo.ModTime())
}
