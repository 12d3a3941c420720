// Package services provides domain services that span more than one aggregate.
//
// The package includes:
//   - ConflictDetector: decides whether a driver or vehicle is double-booked for a
//     time window, given the deliveries that currently hold either resource
//
// Services here are pure: they receive aggregates already loaded by the
// application layer and never touch storage.
package services
