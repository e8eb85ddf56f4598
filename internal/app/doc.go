// Package app wires the protocol core to its collaborators.
//
// [Server] is the camera-side dispatch loop: it reads command lines off
// the link, parses them, drives capture and storage, and hands payloads to
// the transport sender. [Client] is the fetching side: it issues commands
// and drives the transport receiver.
//
// One command is serviced at a time per link; the channel is half-duplex
// in effect and this layer never multiplexes.
package app
