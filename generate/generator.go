package generate

import (
	"duck/ir"
	"fmt"
	"io"
	"sort"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// NOTE: The generated module is a listing of the program object in LLVM IR
// text: it is meant to be fed to `llc`/`clang` and is never executed by the
// compiler itself.  The virtual machine remains the reference for program
// semantics; the module mirrors the memory map with plain arrays (one per
// segment and type) and maps every quadruple onto its own basic block so that
// jumps translate directly into branches.

// Generator is responsible for converting a program object into an LLVM
// module.  It is single use: create a new generator for every module.
type Generator struct {
	// prog is the program object being converted
	prog *ir.Program

	// mod is the LLVM module being generated
	mod *llvm.Module

	// globals holds the arrays of the global segment by data type
	globals [3]*segmentArray

	// funcs maps the names of the Duck functions onto their LLVM functions
	funcs map[string]*llvm.Func

	// strings holds the string table as global constants
	strings []*stringConst

	// rt holds the declarations of the C runtime functions used for I/O
	rt runtimeFuncs

	// fn is the state of the function being generated
	fn *funcState
}

// funcRange is the run of quadruples making up a function body
type funcRange struct {
	info       *ir.FuncInfo
	start, end int // [start, end]
}

// NewGenerator creates a new generator for a program object
func NewGenerator(prog *ir.Program) *Generator {
	return &Generator{
		prog:  prog,
		mod:   llvm.NewModule(),
		funcs: make(map[string]*llvm.Func),
	}
}

// Generate runs the main generation algorithm and returns the completed module
func (g *Generator) Generate() (*llvm.Module, error) {
	g.mod.SourceFilename = g.prog.Name

	g.declareRuntime()
	g.genGlobals()
	g.genStrings()

	ranges, err := g.splitFunctions()
	if err != nil {
		return nil, err
	}

	// declare every function before generating any body so calls can refer
	// to functions defined later in the program
	for _, fr := range ranges {
		g.declareFunc(fr.info)
	}

	for _, fr := range ranges {
		if err := g.genFunc(fr); err != nil {
			return nil, err
		}
	}

	return g.mod, nil
}

// WriteModule generates the module and writes its source text to w
func WriteModule(prog *ir.Program, w io.Writer) error {
	mod, err := NewGenerator(prog).Generate()
	if err != nil {
		return err
	}

	_, err = mod.WriteTo(w)
	return err
}

// splitFunctions determines the quadruple range of every function.  Bodies
// are laid out back to back in entry order and the main body runs to the end
// of the program.  Anything before the first body (the jump over the function
// bodies) belongs to no function.
func (g *Generator) splitFunctions() ([]funcRange, error) {
	infos := make([]*ir.FuncInfo, 0, len(g.prog.Functions))
	for _, fi := range g.prog.Functions {
		infos = append(infos, fi)
	}

	if g.prog.Main() == nil {
		infos = append(infos, &ir.FuncInfo{Name: ir.MainFunc})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Entry < infos[j].Entry
	})

	ranges := make([]funcRange, len(infos))
	for i, fi := range infos {
		end := len(g.prog.Quads) - 1
		if i+1 < len(infos) {
			end = infos[i+1].Entry - 1
		}

		if fi.Entry < 0 || fi.Entry > len(g.prog.Quads) {
			return nil, fmt.Errorf("entry L%d of `%s` is outside of the program", fi.Entry, fi.Name)
		}

		if fi.Name != ir.MainFunc && end < fi.Entry {
			return nil, fmt.Errorf("function `%s` has an empty body", fi.Name)
		}

		ranges[i] = funcRange{info: fi, start: fi.Entry, end: end}
	}

	return ranges, nil
}

// segmentArray is the storage of one segment/type pair: a global or a stack
// allocated array
type segmentArray struct {
	typ *types.ArrayType
	ptr value.Value
}

// stringConst is a NUL-terminated global string
type stringConst struct {
	typ *types.ArrayType
	g   *llvm.Global
}
