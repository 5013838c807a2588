/*
Package identity defines the identity provider gatekeeper delegates accounts and sessions to.

A [Provider] is consumed through four calls: getting the current session, signing in, signing up and signing out.
gatekeeper ships two: [local], which keeps accounts in postgres or memory and sessions in the gorilla session cookie,
and [remote], which talks to a Better Auth compatible service over HTTP.
*/
package identity
