// Package dist implements the lazily evaluated random-variable graph a
// scenario is compiled into. Nodes form a closed set of tagged variants:
// leaf distributions plus structural decorators for attribute access,
// operator application, and method/function invocation. Pattern matchers
// in the pruning engine recover semantic shape from this graph by
// exhaustive case analysis over the variant set; the only mutation the
// graph supports is conditioning a node to a narrower replacement.
package dist

// Node is a participant in the sampling graph.
type Node interface {
	// Dependencies returns the node's direct inputs in order.
	Dependencies() []Node
	// Conditioned returns the value this node has been conditioned to,
	// or nil if it is unconditioned.
	Conditioned() Node
	// ConditionTo permanently narrows the node so it always evaluates to
	// n. The replacement must be supported on a subset of the node's
	// prior support; that obligation rests with the caller.
	ConditionTo(n Node)
}

// Var carries conditioning state and is embedded by every node variant,
// including the region types defined elsewhere.
type Var struct {
	conditioned Node
}

// Conditioned returns the current replacement, or nil.
func (v *Var) Conditioned() Node { return v.conditioned }

// ConditionTo records a permanent replacement for the node.
func (v *Var) ConditionTo(n Node) { v.conditioned = n }

// Resolve follows conditioning to the node's current value. An
// unconditioned node resolves to itself.
func Resolve(n Node) Node {
	for n != nil {
		c := n.Conditioned()
		if c == nil || c == n {
			return n
		}
		n = c
	}
	return n
}

// Distribution identifies leaf nodes whose value is not determined by
// their dependencies alone and therefore requires sampling.
type Distribution interface {
	Node
	// Distribution is a marker; embed Leaf to implement it.
	Distribution()
}

// Leaf marks a node variant as a leaf distribution.
type Leaf struct{}

// Distribution implements the Distribution marker.
func (Leaf) Distribution() {}

// Op identifies an operator wrapped by an Operator node.
type Op string

// Operators recognized by the pattern matchers.
const (
	OpAdd  Op = "add"
	OpRAdd Op = "radd"
	OpSub  Op = "sub"
)

// Func identifies a function wrapped by a FunctionCall node.
type Func string

// FuncNormalizeAngle is the angle-normalization call the heading matcher
// looks through.
const FuncNormalizeAngle Func = "normalizeAngle"

// Method identifies a method wrapped by a MethodCall node.
type Method string

const (
	// MethodFieldAt is vector-field indexing: field[position].
	MethodFieldAt Method = "fieldAt"
	// MethodNorm is the Euclidean norm of a vector-valued node.
	MethodNorm Method = "norm"
)

// Constant is a fully resolved value.
type Constant struct {
	Var
	Value any
}

// NewConstant wraps a fixed value as a graph node.
func NewConstant(v any) *Constant { return &Constant{Value: v} }

func (c *Constant) Dependencies() []Node { return nil }

// Uniform draws a scalar uniformly from [Low, High].
type Uniform struct {
	Var
	Leaf
	Low, High float64
}

// NewUniform returns a uniform scalar distribution on [low, high].
func NewUniform(low, high float64) *Uniform { return &Uniform{Low: low, High: high} }

func (u *Uniform) Dependencies() []Node { return nil }

// Attribute is attribute access on a child node.
type Attribute struct {
	Var
	Object Node
	Name   string
}

// NewAttribute builds an attribute-access decorator.
func NewAttribute(object Node, name string) *Attribute {
	return &Attribute{Object: object, Name: name}
}

func (a *Attribute) Dependencies() []Node { return []Node{a.Object} }

// Operator applies Op to Object with an operand list.
type Operator struct {
	Var
	Op       Op
	Object   Node
	Operands []Node
}

// NewOperator builds an operator-application decorator.
func NewOperator(op Op, object Node, operands ...Node) *Operator {
	return &Operator{Op: op, Object: object, Operands: operands}
}

func (o *Operator) Dependencies() []Node {
	deps := make([]Node, 0, len(o.Operands)+1)
	deps = append(deps, o.Object)
	deps = append(deps, o.Operands...)
	return deps
}

// MethodCall invokes an identified method on a receiver. The receiver
// may be a plain value (such as a vector field) rather than a node;
// matchers compare the Method token and type-assert the receiver.
type MethodCall struct {
	Var
	Method Method
	Recv   any
	Args   []Node
}

// NewMethodCall builds a method-invocation decorator.
func NewMethodCall(method Method, recv any, args ...Node) *MethodCall {
	return &MethodCall{Method: method, Recv: recv, Args: args}
}

func (m *MethodCall) Dependencies() []Node {
	var deps []Node
	if n, ok := m.Recv.(Node); ok {
		deps = append(deps, n)
	}
	deps = append(deps, m.Args...)
	return deps
}

// FunctionCall invokes an identified function over argument nodes.
type FunctionCall struct {
	Var
	Func Func
	Args []Node
}

// NewFunctionCall builds a function-invocation decorator.
func NewFunctionCall(fn Func, args ...Node) *FunctionCall {
	return &FunctionCall{Func: fn, Args: args}
}

func (f *FunctionCall) Dependencies() []Node { return f.Args }

// ValueType is the runtime type a Typechecked node enforces.
type ValueType int

const (
	TypeAny ValueType = iota
	TypeFloat
	TypeVector
)

// Typechecked wraps a node with a runtime type requirement. The heading
// matcher looks through float-typechecking wrappers.
type Typechecked struct {
	Var
	Dist      Node
	ValueType ValueType
}

// NewTypechecked wraps a node in a typechecking decorator.
func NewTypechecked(dist Node, vt ValueType) *Typechecked {
	return &Typechecked{Dist: dist, ValueType: vt}
}

func (t *Typechecked) Dependencies() []Node { return []Node{t.Dist} }
