// Package classifier labels free-text material queries (Thai, English or
// mixed) so the search pipeline can pick the right strategies.
//
// Classification is pure: the only inputs are the query text and the static
// keyword tables in keywords.go, and it never returns an error — anything
// the detectors don't recognize degrades to a low-confidence generic
// classification routed to broad semantic search.
//
// The detectors run in priority order:
//
//  1. Material code pattern (RM/RC prefix) -> exact_code, direct lookup
//  2. Quoted or capitalized phrases        -> name_search
//  3. Bilingual benefit keyword tables     -> property_search
//  4. Supplier keywords                    -> supplier_search
//  5. Fallback                             -> generic
package classifier
