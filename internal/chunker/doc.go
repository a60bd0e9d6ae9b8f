// Package chunker splits material documents into field-weighted semantic
// chunks prior to embedding. Each chunk carries the denormalized document
// fields in its metadata so vector matches can be filtered and displayed
// without a document-store round trip.
package chunker
