/*
Package session manages the cookie session gatekeeper keeps for each browser.

A [Service] wraps a [sessions.Store], backed by cookies by default or by Redis when configured with [WithRedis].
The [Session] it returns carries flash messages between requests
and, for the local identity provider, the ID of the account a browser is signed in as.
*/
package session
