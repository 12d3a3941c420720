// Package tracking holds the immutable position samples reported for deliveries in transit.
//
// A Sample is an append-only fact: it is created once, with a server-assigned
// timestamp, and is only ever removed by the retention purge. Its published form,
// Payload, is consumed verbatim by other services and by live subscribers:
//
//	{"delivery_id": "...", "current_lat": 52.52, "current_lng": 13.40,
//	 "speed": 42.5, "heading": 270, "timestamp": "2025-01-01T10:15:00Z"}
//
// speed and heading are omitted when the device did not report them.
package tracking
