// Package http provides the HTTP handlers and middleware for the classroom
// reservation API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     The token is returned in the body and the `X-Session-Token` header.
//   - DELETE /sessions/current: revokes the current session token.
//   - GET /rooms, POST /rooms, GET/PUT/DELETE /rooms/{id}: room catalog
//     endpoints exchanging the `roomDTO` payload defined in room_handler.go.
//     Listing is open to any authenticated principal; mutations require the
//     admin role.
//   - GET /users, POST /users, PUT /users/{id}, DELETE /users/{id}:
//     administrator controlled account management.
//   - POST /bookings/check: availability pre-check; returns the expanded
//     candidate slots and any conflicting occurrences without writing.
//   - POST /bookings: creates a reservation, expanding recurring requests
//     into a group of occurrences. Conflicts yield 409 with details.
//   - GET /bookings: lists occurrences, filterable by room, group, status,
//     date range, and mine=true.
//   - GET /bookings/{id}: fetches a single occurrence.
//   - PUT /bookings/{id}: edits a single occurrence; 409 carries the first
//     blocking occurrence's date and time range.
//   - PATCH /bookings/{id}/status: admin approval or rejection; the body
//     carries {"status","scope"} and the response the affected count.
//   - DELETE /bookings/{id}?scope=single|group: removes one occurrence or
//     the whole group.
//   - GET /notifications?unread=true, POST /notifications/{id}/read: the
//     authenticated recipient's inbox.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
