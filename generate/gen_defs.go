package generate

import (
	"duck/ir"
	"duck/typing"
	"fmt"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// runtimeFuncs are the C library functions the generated code calls
type runtimeFuncs struct {
	printf, scanf, puts, exit *llvm.Func

	// format strings of write (by type) and read (by type)
	writeFmts, readFmts [3]*stringConst
	writeStr            *stringConst

	// message printed on a division by zero
	divZero *stringConst
}

// convType converts a Duck data type into its LLVM type
func convType(dt typing.DataType) types.Type {
	switch dt {
	case typing.Float:
		return types.Double
	case typing.Char:
		return types.I8
	case typing.Void:
		return types.Void
	}

	return types.I64
}

// declareRuntime declares the C runtime functions and their format strings
func (g *Generator) declareRuntime() {
	g.rt.printf = g.mod.NewFunc("printf", types.I32, llvm.NewParam("format", types.I8Ptr))
	g.rt.printf.Sig.Variadic = true

	g.rt.scanf = g.mod.NewFunc("scanf", types.I32, llvm.NewParam("format", types.I8Ptr))
	g.rt.scanf.Sig.Variadic = true

	g.rt.puts = g.mod.NewFunc("puts", types.I32, llvm.NewParam("s", types.I8Ptr))
	g.rt.exit = g.mod.NewFunc("exit", types.Void, llvm.NewParam("status", types.I32))

	writeFmts := [3]string{"%lld\n", "%g\n", "%c\n"}
	readFmts := [3]string{" %lld", " %lf", " %c"}
	for dt := typing.Int; dt <= typing.Char; dt++ {
		g.rt.writeFmts[dt] = g.newString(fmt.Sprintf("fmt.write.%s", dt.Repr()), writeFmts[dt])
		g.rt.readFmts[dt] = g.newString(fmt.Sprintf("fmt.read.%s", dt.Repr()), readFmts[dt])
	}

	g.rt.writeStr = g.newString("fmt.write.string", "%s\n")
	g.rt.divZero = g.newString("msg.divzero", "runtime error: division by zero")
}

// newString defines a new immutable global string
func (g *Generator) newString(name, s string) *stringConst {
	arr := constant.NewCharArrayFromString(s + "\x00")
	glob := g.mod.NewGlobalDef(name, arr)
	glob.Immutable = true

	return &stringConst{typ: arr.Typ, g: glob}
}

// genGlobals defines one array per type for the global segment, sized to the
// number of slots the program uses
func (g *Generator) genGlobals() {
	for dt := typing.Int; dt <= typing.Char; dt++ {
		n := g.prog.Globals[dt]
		if n == 0 {
			n = 1
		}

		arrType := types.NewArray(uint64(n), convType(dt))
		glob := g.mod.NewGlobalDef(fmt.Sprintf("duck.global.%s", dt.Repr()), constant.NewZeroInitializer(arrType))
		g.globals[dt] = &segmentArray{typ: arrType, ptr: glob}
	}
}

// genStrings defines the string table
func (g *Generator) genStrings() {
	for i, s := range g.prog.Strings {
		g.strings = append(g.strings, g.newString(fmt.Sprintf("duck.str.%d", i), s))
	}
}

// funcName returns the LLVM name of a Duck function.  The main body becomes
// the C entry point; every other function is prefixed so it cannot collide
// with the runtime functions.
func funcName(name string) string {
	if name == ir.MainFunc {
		return "main"
	}

	return "duck." + name
}

// declareFunc creates the LLVM function of a Duck function: parameters become
// real LLVM parameters and the return type is carried over
func (g *Generator) declareFunc(fi *ir.FuncInfo) {
	if fi.Name == ir.MainFunc {
		g.funcs[fi.Name] = g.mod.NewFunc("main", types.I32)
		return
	}

	params := make([]*llvm.Param, len(fi.Params))
	for i, p := range fi.Params {
		params[i] = llvm.NewParam(fmt.Sprintf("p%d", i), convType(p.Type))
	}

	ret := types.Type(types.Void)
	if fi.HasReturn {
		ret = convType(fi.ReturnType)
	}

	g.funcs[fi.Name] = g.mod.NewFunc(funcName(fi.Name), ret, params...)
}
