package dist

import (
	"github.com/tbastian/winnow/pkg/geom"
)

// NeedsSampling reports whether n's current value still carries
// unresolved randomness: n resolves to a leaf distribution, or any of
// its resolved dependencies does.
func NeedsSampling(n Node) bool {
	if n == nil {
		return false
	}
	n = Resolve(n)
	if _, ok := n.(Distribution); ok {
		return true
	}
	for _, dep := range n.Dependencies() {
		if NeedsSampling(dep) {
			return true
		}
	}
	return false
}

// SupportInterval returns a sound bound on the possible values of a
// scalar node without sampling it. A nil bound means unbounded or
// uncomputable on that side. The rules are deliberately partial: any
// shape not enumerated here reports no bound at all.
func SupportInterval(n Node) (low, high *float64) {
	if n == nil {
		return nil, nil
	}
	switch v := Resolve(n).(type) {
	case *Constant:
		if f, ok := scalarValue(v.Value); ok {
			return ptr(f), ptr(f)
		}
	case *Uniform:
		return ptr(v.Low), ptr(v.High)
	case *Typechecked:
		return SupportInterval(v.Dist)
	case *Operator:
		if len(v.Operands) != 1 {
			return nil, nil
		}
		ol, oh := SupportInterval(v.Object)
		pl, ph := SupportInterval(v.Operands[0])
		switch v.Op {
		case OpAdd, OpRAdd:
			return addBounds(ol, pl), addBounds(oh, ph)
		case OpSub:
			return subBounds(ol, ph), subBounds(oh, pl)
		}
	case *Attribute:
		// Component access on a constant vector.
		if c, ok := Resolve(v.Object).(*Constant); ok {
			if vec, ok := c.Value.(geom.Vector); ok {
				switch v.Name {
				case "x":
					return ptr(vec.X), ptr(vec.X)
				case "y":
					return ptr(vec.Y), ptr(vec.Y)
				case "z":
					return ptr(vec.Z), ptr(vec.Z)
				}
			}
		}
	case *MethodCall:
		// Norm of a constant vector.
		if v.Method == MethodNorm {
			if recv, ok := v.Recv.(Node); ok {
				if c, ok := Resolve(recv).(*Constant); ok {
					if vec, ok := c.Value.(geom.Vector); ok {
						nrm := vec.Norm()
						return ptr(nrm), ptr(nrm)
					}
				}
			}
		}
	}
	return nil, nil
}

// scalarValue extracts a float from a constant payload.
func scalarValue(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	}
	return 0, false
}

func ptr(f float64) *float64 { return &f }

func addBounds(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return ptr(*a + *b)
}

func subBounds(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return ptr(*a - *b)
}

// IsZeroInterval reports whether n's support is exactly {0}.
func IsZeroInterval(n Node) bool {
	low, high := SupportInterval(n)
	return low != nil && high != nil && *low == 0 && *high == 0
}
