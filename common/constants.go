package common

const (
	SrcFileExtension     = ".duck"
	ProgramFileExtension = ".dko"
	TableFileExtension   = ".ptable"
	ProjectFileName      = "duck.toml"
	DuckVersion          = "0.1.0"
	LLVMFileExtension    = ".ll"
)

// DefaultMaxCallDepth is the call depth at which the VM reports a stack
// overflow instead of recursing further
const DefaultMaxCallDepth = 1024
