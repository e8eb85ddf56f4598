// Package protocol implements the camlink wire protocol: the bracketed
// command grammar, the OK/BAD response lines, the ACK tokens, the binary
// frame envelope and the inter-chunk pacing policy.
//
// Everything in this package is pure: no I/O beyond the io.Reader consumed
// by the streaming Decoder, no timers, no logging. The transport package
// drives these pieces over a serial link.
package protocol
