package filter

// Env is the set of variables and functions an expression is evaluated
// against
type Env = map[string]any

// EnvFunc builds the evaluation environment for one item
type EnvFunc[T any] func(item T) Env

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	// Evaluate reports whether env satisfies the filter
	Evaluate(env Env) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
