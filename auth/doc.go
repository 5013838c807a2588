/*
Package auth mints and verifies the bearer tokens the local identity provider accepts
from callers that cannot carry the session cookie.

A token is an HS256 JWT whose subject is the account ID,
presented either in an "Authorization: Bearer" header or in a "jwt" query param.
*/
package auth
