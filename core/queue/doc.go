// Package queue publishes create announcements to Kafka.
//
// The producer is the asynchronous variant of the action sink: every source
// path missing from the catalog is announced as a {"uri": path} message for a
// downstream materializer to consume. Delivery is at-least-once; consumers
// must treat re-creation of an existing catalog entry as a safe no-op.
package queue
