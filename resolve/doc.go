// Package resolve defines the Value Resolver every bridge operation passes
// its options through before acting on them.
//
// The bridge is agnostic to what a resolver does. Identity returns values
// untouched, Func adapts a closure, and Template evaluates
// "{{ path.to.value }}" expressions against a variable scope, which is what
// the HTTP and CLI surfaces use for their "vars" object.
//
// Truthy implements the presence check operations apply to resolved values:
// nil, false, "", numeric zero and NaN are absent.
package resolve
