package ast

import (
	"encoding/json"
	"testing"

	"nilan/types"
)

func TestPrintProgramJSON_SimpleReturn(t *testing.T) {
	body := &Block{Body: []Stmt{
		&Return{X: &Num{IntValue: 42}},
	}}
	prog := &Program{Funcs: []*Var{
		{Name: "main", Storage: Function, Body: body, IsDefinition: true},
	}}

	out, err := PrintProgramJSON(prog)
	if err != nil {
		t.Fatalf("PrintProgramJSON error: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	funcs, ok := parsed["functions"].([]any)
	if !ok || len(funcs) != 1 {
		t.Fatalf("expected 1 function, got %v", parsed["functions"])
	}
	fn := funcs[0].(map[string]any)
	if fn["name"] != "main" {
		t.Fatalf("expected function name main, got %v", fn["name"])
	}

	bodyNode := fn["body"].(map[string]any)
	if bodyNode["type"] != "Block" {
		t.Fatalf("expected Block, got %v", bodyNode["type"])
	}
	stmts := bodyNode["body"].([]any)
	ret := stmts[0].(map[string]any)
	if ret["type"] != "Return" {
		t.Fatalf("expected Return, got %v", ret["type"])
	}
	num := ret["x"].(map[string]any)
	if num["value"].(float64) != 42 {
		t.Fatalf("expected return value 42, got %v", num["value"])
	}
}

func TestPrintProgramJSON_BinaryAndVarRef(t *testing.T) {
	v := &Var{Name: "x", Type: types.NewInt(), Storage: Local}
	expr := &Binary{
		Op: "+",
		X:  &VarRef{Var: v},
		Y:  &Num{IntValue: 1},
	}
	body := &Block{Body: []Stmt{&ExprStmt{X: expr}}}
	prog := &Program{Funcs: []*Var{{Name: "f", Storage: Function, Body: body}}}

	out, err := PrintProgramJSON(prog)
	if err != nil {
		t.Fatalf("PrintProgramJSON error: %v", err)
	}

	var parsed map[string]any
	json.Unmarshal([]byte(out), &parsed)
	fn := parsed["functions"].([]any)[0].(map[string]any)
	bodyNode := fn["body"].(map[string]any)
	exprStmt := bodyNode["body"].([]any)[0].(map[string]any)
	bin := exprStmt["x"].(map[string]any)

	if bin["type"] != "Binary" || bin["op"] != "+" {
		t.Fatalf("expected Binary '+', got %v", bin)
	}
	left := bin["x"].(map[string]any)
	if left["type"] != "VarRef" || left["name"] != "x" {
		t.Fatalf("expected VarRef x, got %v", left)
	}
}

func TestPrintProgramJSON_IfWithNilElse(t *testing.T) {
	ifStmt := &If{
		Cond: &Num{IntValue: 1},
		Then: &NullStmt{},
		Else: nil,
	}
	body := &Block{Body: []Stmt{ifStmt}}
	prog := &Program{Funcs: []*Var{{Name: "g", Storage: Function, Body: body}}}

	out, err := PrintProgramJSON(prog)
	if err != nil {
		t.Fatalf("PrintProgramJSON error: %v", err)
	}
	var parsed map[string]any
	json.Unmarshal([]byte(out), &parsed)
	fn := parsed["functions"].([]any)[0].(map[string]any)
	bodyNode := fn["body"].(map[string]any)
	ifNode := bodyNode["body"].([]any)[0].(map[string]any)

	if ifNode["type"] != "If" {
		t.Fatalf("expected If, got %v", ifNode["type"])
	}
	if elseVal, exists := ifNode["else"]; !exists || elseVal != nil {
		t.Fatalf("expected else to be nil, got %v", ifNode["else"])
	}
}
