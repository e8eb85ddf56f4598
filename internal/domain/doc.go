// Package domain contains the core entities and value objects for camlink.
//
// This package represents the innermost layer of the architecture. It has
// no dependencies on infrastructure concerns (serial ports, camera
// processes, logging) and contains only the protocol's business rules.
//
// # Entities
//
//   - [Command]: A parsed wire command (capture, send, or capture-and-send)
//   - [Frame]: The binary envelope carrying one transfer's payload
//   - [TransferSession]: Sender-side bookkeeping for one outgoing transfer
//   - [ReceiveBuffer]: Receiver-side byte store bounded by the declared length
//
// Entities are immutable after construction where practical and testable
// without mocks or external systems.
package domain
