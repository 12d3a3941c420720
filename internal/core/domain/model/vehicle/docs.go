// Package vehicle models the fleet's vehicles and their coarse availability.
//
// A vehicle is available, in_use or under maintenance. The status is a ledger
// entry rather than a state machine: MarkInUse, MarkAvailable and MarkMaintenance
// are idempotent writes with no validation against delivery state, so an admin can
// pull a vehicle into maintenance mid-delivery. The delivery lifecycle drives the
// automatic moves (in_use on assignment, available when a delivery ends).
//
// The last known location is independent of status and is overwritten by every
// accepted position report (last writer wins).
package vehicle
