// Package beatstore applies one mutation at a time to the persisted beat table.
//
// Every operation runs the same sequence while holding the store's mutex:
//
//  1. load the scene list (fresh, never cached)
//  2. read and decode the beat table file (empty if absent)
//  3. validate and mutate in memory
//  4. rewrite the whole file atomically
//
// Validation failures return an *Error before step 4, so the file is either
// fully rewritten or left as it was. The mutex serializes callers inside one
// process only; two processes writing the same file can still lose updates.
//
// After a successful rewrite the operation is recorded in the optional
// journal and announced through the optional notifier. Failures there are
// logged and do not fail the operation.
package beatstore
