package resolve

// Resolver turns a raw option value into the value an operation acts on.
// Implementations may evaluate expressions, look up variables, or return
// the value untouched. Resolve must be safe for concurrent use.
type Resolver interface {
	Resolve(raw any) any
}

// Func adapts a plain function to Resolver.
type Func func(raw any) any

// Resolve calls f(raw).
func (f Func) Resolve(raw any) any { return f(raw) }

// Identity returns every value unchanged.
var Identity Resolver = Func(func(raw any) any { return raw })

// OrIdentity returns r, or Identity when r is nil.
func OrIdentity(r Resolver) Resolver {
	if r == nil {
		return Identity
	}
	return r
}
