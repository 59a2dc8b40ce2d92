// Package pursuit implements one cycle of the hunter and rabbit pursuit
// (IMO 2017, problem 3) as a scalar recurrence on the separation D.
//
// In every cycle both parties advance by the cycle length L, chosen from the
// current separation by a rounding [Policy]:
//
//   - [Continuous]: L = a·D
//   - [Quantized]: L = ceil(a·D), the unit step variant of the olympiad rules
//
// and the separation at the end of the cycle is
//
//	D' = sqrt((sqrt(L²-1) - L + D)² + 1)
//
// [Stepper] evaluates the update in any [precision.Backend]. [Heading]
// follows the same geometric construction to recover the directions of both
// parties, and [Track] turns those directions into planar positions.
package pursuit
