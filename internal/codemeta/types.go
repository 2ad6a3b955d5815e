package codemeta

import "encoding/json"

// DataStruct is a type/module level node produced by the upstream AST analyzer.
// Only Content, Functions and InnerStructures are touched by the transform;
// every other field is payload that is carried through unchanged.
//
// Slices and pointers use omitzero so that an absent list (nil) and an
// empty list ([]) survive a decode/encode round trip as distinct values.
// Keys the analyzer emits that are not modeled here are kept in Extra and
// written back after the modeled fields.
type DataStruct struct {
	NodeName        string        `json:"NodeName,omitempty"`
	Module          string        `json:"Module,omitempty"`
	Type            string        `json:"Type,omitempty"`
	Package         string        `json:"Package,omitempty"`
	FilePath        string        `json:"FilePath,omitempty"`
	Fields          []Field       `json:"Fields,omitzero"`
	MultipleExtend  []string      `json:"MultipleExtend,omitzero"`
	Implements      []string      `json:"Implements,omitzero"`
	Extend          string        `json:"Extend,omitempty"`
	Functions       []*Function   `json:"Functions,omitzero"`
	InnerStructures []*DataStruct `json:"InnerStructures,omitzero"`
	Annotations     []Annotation  `json:"Annotations,omitzero"`
	FunctionCalls   []Call        `json:"FunctionCalls,omitzero"`
	Parameters      []Property    `json:"Parameters,omitzero"`
	Imports         []Import      `json:"Imports,omitzero"`
	Exports         []Export      `json:"Exports,omitzero"`
	Extension       string        `json:"Extension,omitempty"`
	Position        *Position     `json:"Position,omitzero"`
	Content         *string       `json:"Content,omitzero"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Function is a leaf node describing a single function or method. Unmodeled
// keys are kept in Extra like on DataStruct.
type Function struct {
	Name           string       `json:"Name,omitempty"`
	Type           string       `json:"Type,omitempty"`
	FilePath       string       `json:"FilePath,omitempty"`
	Package        string       `json:"Package,omitempty"`
	ReturnType     string       `json:"ReturnType,omitempty"`
	Parameters     []Property   `json:"Parameters,omitzero"`
	FunctionCalls  []Call       `json:"FunctionCalls,omitzero"`
	Annotations    []Annotation `json:"Annotations,omitzero"`
	Modifiers      []string     `json:"Modifiers,omitzero"`
	LocalVariables []Property   `json:"LocalVariables,omitzero"`
	Override       bool         `json:"Override,omitempty"`
	IsConstructor  bool         `json:"IsConstructor,omitempty"`
	IsReturnNull   bool         `json:"IsReturnNull,omitempty"`
	BodyHash       int64        `json:"BodyHash,omitempty"`
	Position       *Position    `json:"Position,omitzero"`
	Content        *string      `json:"Content,omitzero"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Field is a class-level field declaration.
type Field struct {
	TypeType    string       `json:"TypeType,omitempty"`
	TypeValue   string       `json:"TypeValue,omitempty"`
	TypeKey     string       `json:"TypeKey,omitempty"`
	Modifiers   []string     `json:"Modifiers,omitzero"`
	Annotations []Annotation `json:"Annotations,omitzero"`
}

// Property is a parameter or local variable.
type Property struct {
	TypeType    string       `json:"TypeType,omitempty"`
	TypeValue   string       `json:"TypeValue,omitempty"`
	TypeKey     string       `json:"TypeKey,omitempty"`
	Modifiers   []string     `json:"Modifiers,omitzero"`
	Annotations []Annotation `json:"Annotations,omitzero"`
	Name        string       `json:"Name,omitempty"`
	Value       string       `json:"Value,omitempty"`
}

// Annotation is a decorator/annotation attached to a node.
type Annotation struct {
	Name      string         `json:"Name,omitempty"`
	KeyValues []AnnotationKV `json:"KeyValues,omitzero"`
	Start     int            `json:"Start,omitempty"`
	End       int            `json:"End,omitempty"`
}

// AnnotationKV is a single annotation argument.
type AnnotationKV struct {
	Key   string `json:"Key,omitempty"`
	Value string `json:"Value,omitempty"`
}

// Call is a function call made from inside a node.
type Call struct {
	Package      string     `json:"Package,omitempty"`
	Type         string     `json:"Type,omitempty"`
	NodeName     string     `json:"NodeName,omitempty"`
	FunctionName string     `json:"FunctionName,omitempty"`
	Parameters   []Property `json:"Parameters,omitzero"`
	Position     *Position  `json:"Position,omitzero"`
}

// Import is an import statement of the enclosing file.
type Import struct {
	Source     string   `json:"Source,omitempty"`
	AsName     string   `json:"AsName,omitempty"`
	UsageName  []string `json:"UsageName,omitzero"`
	Scope      string   `json:"Scope,omitempty"`
	Specifiers []string `json:"Specifiers,omitzero"`
}

// Export is a symbol exported by the enclosing module.
type Export struct {
	Name       string `json:"Name,omitempty"`
	SourceFile string `json:"SourceFile,omitempty"`
	Type       string `json:"Type,omitempty"`
}

// Position is a source range, lines and columns are 1-based.
type Position struct {
	StartLine         int `json:"StartLine,omitempty"`
	StartLinePosition int `json:"StartLinePosition,omitempty"`
	StopLine          int `json:"StopLine,omitempty"`
	StopLinePosition  int `json:"StopLinePosition,omitempty"`
}

// Text returns a pointer to s, for building nodes with present content.
func Text(s string) *string {
	return &s
}
