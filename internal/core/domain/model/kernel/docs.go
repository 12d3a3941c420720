// Package kernel provides the shared value objects of the fleet domain.
//
// The package includes:
//   - UUID: identifier for deliveries, vehicles, samples and the actors that own them
//   - GeoPoint: a latitude/longitude pair checked against [-90,90] x [-180,180]
//   - Place: a human-readable address anchored to a GeoPoint
//   - TimeWindow: a closed time interval with the inclusive overlap predicate used
//     for double-booking detection
//   - Actor and Role: the already-authenticated caller every operation receives
//
// All values are immutable and safe to share between goroutines. Zero values are
// invalid; build them through their constructors and check Validate when they
// arrive from outside the domain (database rows, request payloads).
package kernel
