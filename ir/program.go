package ir

import (
	"bufio"
	"duck/typing"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"
)

// MainFunc is the name the main body is registered under in the function table
const MainFunc = "main"

// Param describes a formal parameter: its type and the local address the
// callee reads it from
type Param struct {
	Type    typing.DataType
	Address int
}

// FuncInfo is the linkage information of a function
type FuncInfo struct {
	Name       string
	Entry      int
	HasReturn  bool
	ReturnType typing.DataType
	ParamCount int
	Params     []Param
}

// Program is the frozen output of compilation and the sole input of the
// virtual machine
type Program struct {
	Name      string
	Quads     []Quad
	Functions map[string]*FuncInfo
	Constants map[int]Value
	Strings   []string

	// Globals counts the global slots used per type (int, float, char)
	Globals [3]int
}

// Main returns the linkage info of the main body
func (p *Program) Main() *FuncInfo {
	return p.Functions[MainFunc]
}

// Rows returns the rendered columns of every quadruple
func (p *Program) Rows() [][]string {
	rows := make([][]string, len(p.Quads))
	for i, q := range p.Quads {
		rows[i] = q.Row()
	}

	return rows
}

// Dump writes a textual listing of the program: the function table, the
// constant and string tables and then each quadruple prefixed by its index
func (p *Program) Dump(w io.Writer) {
	fmt.Fprintf(w, "program %s\n", p.Name)

	names := make([]string, 0, len(p.Functions))
	for name := range p.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fi := p.Functions[name]
		ret := "void"
		if fi.HasReturn {
			ret = fi.ReturnType.Repr()
		}

		fmt.Fprintf(w, "func %s: entry L%d, returns %s, %d params\n", name, fi.Entry, ret, fi.ParamCount)
	}

	addrs := make([]int, 0, len(p.Constants))
	for addr := range p.Constants {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)

	for _, addr := range addrs {
		fmt.Fprintf(w, "const @%d = %s\n", addr, p.Constants[addr])
	}

	for i, s := range p.Strings {
		fmt.Fprintf(w, "string s%d = %q\n", i, s)
	}

	for i, q := range p.Quads {
		fmt.Fprintf(w, "%4d  %s\n", i, q)
	}
}

// SaveProgram writes a program object to disk
func SaveProgram(path string, p *Program) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(p); err != nil {
		return err
	}

	return w.Flush()
}

// LoadProgram reads a program object from disk
func LoadProgram(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Program{}
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(p); err != nil {
		return nil, err
	}

	return p, nil
}
