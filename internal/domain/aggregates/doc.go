// Package aggregates declares the dataset write boundaries: catalog edits,
// file ingestion and the review lifecycle. Each names its input and result
// types and the *Error codes its writes return. Implementations live in
// internal/data/aggregates.
package aggregates
