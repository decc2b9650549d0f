// Package collection provides generic, functional-style helpers for slices.
//
//	names := collection.Map(products, func(p models.Product) string { return p.Name })
//	units := collection.Reduce(orders, 0, func(n int, o models.Order) int { return n + o.Quantity })
package collection

// Map transforms each element of slice s using fn. The result is never nil.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Reduce folds s into a single value using fn, starting with initial.
func Reduce[T, R any](s []T, initial R, fn func(carry R, item T) R) R {
	carry := initial
	for _, v := range s {
		carry = fn(carry, v)
	}
	return carry
}

// Take returns the first n elements.
func Take[T any](s []T, n int) []T {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return nil
	}
	return s[:n]
}
