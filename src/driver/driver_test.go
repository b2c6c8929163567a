package driver

import (
	"math/big"
	"strings"
	"testing"

	"resoc/src/diag"
	"resoc/src/parsetree"
	"resoc/src/util"
)

// mainReturning0 builds the parse tree for:
//
//	func main() -> i32 { return 0; }
func mainReturning0() *parsetree.Node {
	params := parsetree.New(parsetree.PARAM_LIST, 1, 1, nil)
	ret := parsetree.New(parsetree.TYPE_NAME, 1, 1, "i32")
	body := parsetree.New(parsetree.BLOCK, 1, 1, nil,
		parsetree.New(parsetree.RETURN_STATEMENT, 1, 1, nil,
			parsetree.New(parsetree.INTEGER_LITERAL, 1, 1, big.NewInt(0))))
	fn := parsetree.New(parsetree.FUNCTION, 1, 1,
		parsetree.FunctionData{Name: "main", Visibility: parsetree.VisGlobal},
		params, ret, body)
	return parsetree.New(parsetree.PROGRAM, 1, 1, nil, fn)
}

func stubFrontend(trees map[string]*parsetree.Node) Frontend {
	return func(unitID, source string, bag *diag.Bag) *parsetree.Node {
		n, ok := trees[unitID]
		if !ok {
			bag.Fatalf(unitID, 0, 0, "no fixture tree registered for unit %q", unitID)
			return nil
		}
		return n
	}
}

func TestCompileMainReturningZero(t *testing.T) {
	sources := []Source{{ID: "main.reso", Text: ""}}
	fe := stubFrontend(map[string]*parsetree.Node{"main.reso": mainReturning0()})

	res, err := Compile(sources, fe, util.Options{})
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected Success, got diagnostics: %v", res.Diagnostics)
	}
	if !strings.Contains(res.IR, "define i32 @main()") {
		t.Fatalf("expected a definition of main returning i32, got IR:\n%s", res.IR)
	}
}

func TestCompileNoSourcesIsFatal(t *testing.T) {
	res, err := Compile(nil, stubFrontend(nil), util.Options{})
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if res.Success {
		t.Fatalf("compiling zero sources must not succeed")
	}
}

func TestCompileMissingMainIsFatal(t *testing.T) {
	noMain := parsetree.New(parsetree.PROGRAM, 1, 1, nil)
	sources := []Source{{ID: "empty.reso", Text: ""}}
	fe := stubFrontend(map[string]*parsetree.Node{"empty.reso": noMain})

	res, err := Compile(sources, fe, util.Options{})
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if res.Success {
		t.Fatalf("a program with no main function must not compile successfully")
	}
	found := false
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "no main function declared") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a diagnostic about the missing main function, got: %v", res.Diagnostics)
	}
}
