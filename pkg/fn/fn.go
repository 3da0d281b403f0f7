// Package fn provides the algebraic combinators over T -> R functions
// that the original source's attribute-chain builder (F.x(y)) produced
// by recording attribute lookups at runtime. Go has first-class
// functions, so there is nothing to build at runtime: fn just ships
// the pointwise-lift combinators spec.md's DESIGN NOTES calls out
// (Compose, And, Or, Eq lifted pointwise over a shared domain).
package fn

// Fn is a plain element-to-value function. It exists as a named type
// only so the combinators below read naturally; any func(T) R value
// satisfies it via a conversion.
type Fn[T, R any] func(T) R

// Compose chains g after f: Compose(f, g)(x) == g(f(x)).
func Compose[T, U, R any](f Fn[T, U], g Fn[U, R]) Fn[T, R] {
	return func(x T) R { return g(f(x)) }
}

// Pair applies f and g to the same input and returns both results,
// the Go equivalent of lifting a pair of AlgFn-s pointwise.
func Pair[T, A, B any](f Fn[T, A], g Fn[T, B]) Fn[T, [2]any] {
	return func(x T) [2]any { return [2]any{f(x), g(x)} }
}

// And lifts boolean-valued predicates pointwise: And(p, q)(x) ==
// p(x) && q(x).
func And[T any](p, q Fn[T, bool]) Fn[T, bool] {
	return func(x T) bool { return p(x) && q(x) }
}

// Or lifts boolean-valued predicates pointwise: Or(p, q)(x) ==
// p(x) || q(x).
func Or[T any](p, q Fn[T, bool]) Fn[T, bool] {
	return func(x T) bool { return p(x) || q(x) }
}

// Not negates a predicate.
func Not[T any](p Fn[T, bool]) Fn[T, bool] {
	return func(x T) bool { return !p(x) }
}

// Eq lifts equality pointwise over two functions sharing a domain:
// Eq(f, g)(x) == f(x) == g(x).
func Eq[T any, R comparable](f, g Fn[T, R]) Fn[T, bool] {
	return func(x T) bool { return f(x) == g(x) }
}

// Const returns a function that ignores its input and always yields v.
func Const[T, R any](v R) Fn[T, R] {
	return func(T) R { return v }
}

// Identity returns its input unchanged.
func Identity[T any](x T) T { return x }
