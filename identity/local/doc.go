/*
Package local implements identity.Provider with accounts gatekeeper stores itself.

Accounts live in a gatekeeper.AccountStore: postgres in production, a MemoryStore otherwise.
Passwords are hashed with bcrypt.
The signed in account is remembered in the gorilla session managed by http/session.
*/
package local
