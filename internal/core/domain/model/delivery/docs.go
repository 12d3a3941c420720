// Package delivery contains the Delivery aggregate and its lifecycle state machine.
//
// # Lifecycle
//
//	pending ──> assigned ──> on_route ──> picked_up ──> delivered
//	   │           │            │             │
//	   └───────────┴────────────┴─────────────┴──────> cancelled
//
// delivered and cancelled are terminal. Any other requested move is rejected with
// an InvalidTransitionError naming the current and requested status, and the
// aggregate is left untouched.
//
// Side effects of entering a status:
//   - picked_up stamps the actual pickup time unless it is already set
//   - delivered stamps the actual delivery time unless it is already set
//   - delivered and cancelled release the assigned vehicle (see ReleasesVehicle);
//     the application layer performs the ledger write in the same transaction
//
// # Assignment
//
// Assign is separate from TransitionTo. It sets the driver and vehicle and forces
// the status to assigned; it is accepted from pending (first assignment) and from
// assigned (reassignment). Double-booking is checked by services.ConflictDetector
// before Assign is called.
//
// # Patching
//
// Callers never write arbitrary fields. Patch enumerates what may change after
// creation (addresses, schedule, package details, priority, requested vehicle type,
// route) and only while the delivery is pending or assigned. Status, driver and
// vehicle change only through the state machine and Assign.
//
// # Events
//
// Every mutation records a domain event (CreatedEvent, DriverAssignedEvent,
// StatusChangedEvent). The unit of work collects them from tracked aggregates and
// dispatches them after commit.
package delivery
