// Package concurrency provides a bounded parallel task runner with
// cooperative cancellation.
package concurrency
