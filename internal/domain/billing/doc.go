// Package billing holds the recurring-billing domain: the monthly invoice
// aggregate, the competência/period calendar rules and the invoice value
// composer.
//
// The two calculation entry points are pure and deterministic:
//   - ComputeCompetencia / ComputePeriod derive the billing period coming
//     due next and its coverage window, day-clamped to short months.
//   - ComposeAmounts resolves a contract's billing line items into the five
//     reporting buckets plus an itemized breakdown kept for audit.
//
// Everything stateful (bank registration, delivery) lives in the boleto
// domain and the application services.
package billing
