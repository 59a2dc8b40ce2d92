// Package precision provides the numeric backends the pursuit recurrence
// is evaluated in.
//
// Two backends implement [Backend]:
//
//   - [Native]: float64 arithmetic; fast, accumulates rounding error
//   - [Big]: math/big.Float with a caller chosen number of significant
//     decimal digits; slower per step, error stays negligible when the
//     digit count is generous
//
// Backends are stateless apart from their precision and may be shared by
// goroutines. Values produced by one backend should only be fed back into
// the same backend; use [Backend.Big] to move a value across backends.
//
// # Example
//
//	b, _ := precision.NewBig(60)
//	x, _ := b.Parse("1.01")
//	l := b.Ceil(b.Mul(x, b.FromFloat(100)))
//	fmt.Println(b.Text(l, 10))
package precision
