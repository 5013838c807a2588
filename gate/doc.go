/*
Package gate keeps an application behind a login form until the agent is signed in as the admin.

Each request walks a [Machine] through the gate:

	Pending -> SignedOut                      no session, or an anonymous one
	Pending -> Validating -> Validated        the session passes the admin check
	Pending -> Validating -> Denied -> SignedOut
	                                          the session fails the admin check and is signed out

Only Validated renders the application; [Gate.Provide] mounts the gate around it.

Logging in runs the admin credentials check before touching the identity provider,
then a [Plan]: an ordered list of identity provider calls, each with where to go on success and on failure.
*/
package gate
