// Package submission delivers batches of review outcomes to the remote
// review store under partial-failure conditions. Reviews are merged with
// any offline backlog, chunked, and sent strictly in order; on the first
// failed chunk exactly the unacknowledged remainder is persisted to the
// offline queue so that no rating is ever lost or delivered twice.
package submission
