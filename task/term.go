package task

// Term is an argument to a literal or function application: either a
// reference to an operator parameter (by index) or a ground Object.
type Term struct {
	// IsParameter selects which of the two fields is meaningful.
	IsParameter bool
	ParamIndex  int
	Object      string
}

// ParamTerm constructs a Term referencing operator parameter i.
func ParamTerm(i int) Term { return Term{IsParameter: true, ParamIndex: i} }

// ObjectTerm constructs a Term naming a ground object.
func ObjectTerm(name string) Term { return Term{Object: name} }

// TypedParameter is one schematic operator parameter.
type TypedParameter struct {
	Name string
	Type Type
}
