// Package exitinmain defines an Analyzer that reports direct os.Exit calls
// inside the main function of the main package.
//
// Exiting from main skips deferred calls, so the store is never closed
// and buffered log entries are lost. Return an error from a run function
// and let main decide instead.
package exitinmain

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports os.Exit calls in main.main.
var Analyzer = &analysis.Analyzer{
	Name:     "exitinmain",
	Doc:      "reports os.Exit call inside main function of the main package",
	Run:      run,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	// WithStack gives the enclosing declarations of every call,
	// so calls in closures declared inside main are found too.
	inspect.WithStack(nodeFilter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		if !insideMain(stack) {
			return true
		}
		call := n.(*ast.CallExpr)
		if isOsExit(pass.TypesInfo, call) {
			pass.Reportf(call.Pos(), "os.Exit call inside main function")
		}
		return true
	})

	return nil, nil
}

// insideMain reports whether the top level declaration on the stack is func main.
func insideMain(stack []ast.Node) bool {
	for _, n := range stack {
		if fn, ok := n.(*ast.FuncDecl); ok {
			return fn.Recv == nil && fn.Name.Name == "main"
		}
	}
	return false
}

// isOsExit resolves the callee, so renamed imports of os are handled.
func isOsExit(info *types.Info, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	fn, ok := info.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}
