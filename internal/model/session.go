package model

// StaffContext identifies the authenticated staff member behind a
// request.  It is built once by the JWT middleware from verified
// token claims and threaded explicitly to handlers instead of being
// read ambiently from global state.
//
// Fields:
//  Subject – stable staff identifier (the token's sub claim).
//  Name    – display name of the staff member, if the token carries one.
//  Role    – staff role (e.g. "HOST", "MANAGER").
type StaffContext struct {
	Subject string
	Name    string
	Role    string
}
