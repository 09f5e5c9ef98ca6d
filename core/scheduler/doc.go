// Package scheduler partitions a ledger of booking requests into accepted
// and rejected sets. Three policies are provided: first-come-first-served,
// static priority and a simulated-annealing optimizer. Every run works on
// its own copy of the ledger and a fresh tracker.
package scheduler
