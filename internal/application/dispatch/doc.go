// Package dispatch hands commands from the views to the persistence worker.
//
// A Channel holds at most one pending command. Publishing replaces whatever
// is pending (last write wins) and wakes the worker; the worker takes a
// private copy, clears the slot and executes the copy against the Gateway.
// When nothing is published the worker still wakes once per poll interval.
//
//	view ──Submit──▶ Dispatcher ──Publish──▶ Channel ──TakeIfPresent──▶ Worker ──Execute──▶ Gateway
//
// Execution failures never travel back to the submitter. They go to the
// FailureReporter and to any registered ResultObserver.
package dispatch
