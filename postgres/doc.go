/*
Package postgres manages gatekeeper's database connection and the accounts the local identity provider
signs users in as.

As part of the connection process, Connect ensures all migrations have been run on the database.
When the database is simply a target for testing, Connect drops the public schema first.

Errors from the database are translated into gatekeeper's sentinel errors:
a unique violation is ErrExists, a missing record ErrNotExist.
*/
package postgres
