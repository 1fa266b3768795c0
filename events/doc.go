// Package events delivers job progress to streaming clients.
//
// A Registry holds one unbounded FIFO queue per job, created on first use.
// Publishing never blocks. Each queued event is delivered to exactly one
// reader, so two clients streaming the same job split the events between
// them rather than each receiving a copy.
package events
