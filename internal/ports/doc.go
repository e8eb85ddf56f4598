// Package ports defines the interfaces that connect the protocol core to
// infrastructure adapters.
//
// The transport and app layers depend only on these interfaces.
// Adapters (internal/adapters) implement them with concrete
// implementations: a serial port, a camera subprocess, an on-disk image
// store, zerolog. Tests implement them in memory.
//
//   - [Link]: one half-duplex serial channel
//   - [Camera]: the image capture collaborator
//   - [ImageStore]: the storage collaborator resolving the LAST sentinel
//   - [Logger]: structured logging abstraction
package ports
