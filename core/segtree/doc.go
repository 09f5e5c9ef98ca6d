// Package segtree implements the interval allocation table used by the
// tracker: K independent tracks over an inclusive minute range, each backed by
// a lazy segment tree supporting range assignment and range maximum queries.
//
// A stored value of zero means the minute is free. Any other value is the
// order number of the request occupying it, so values must never be negative.
package segtree
