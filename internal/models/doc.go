// Package models defines the domain records exchanged with the settlement
// engine's collaborators.
//
//   - Obligation: one persisted debt fact, produced upstream by expense-share
//     allocation and consumed by the engine as input.
//   - Settlement: one computed payment instruction, handed downstream for
//     display or recording.
//
// Amounts are shopspring decimals so fixed-point money survives the trip
// through storage and JSON without float drift. Participants are referenced
// by ID strings rather than pointers to avoid circular references.
package models
