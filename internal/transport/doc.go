// Package transport drives the reliable transfer protocol over a single
// half-duplex serial channel.
//
// Each side runs as one sequential state machine: [Sender] announces a
// payload, streams it in paced chunks and repairs partial loss from
// ACK_MISSING reports; [Receiver] waits for the announcement, reads exactly
// the declared number of payload bytes and acknowledges what it got.
// All synchronization happens through the ACK exchange on the wire.
// Cancellation is timeout-driven only.
package transport
