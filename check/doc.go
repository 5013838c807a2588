/*
Package check compares agents against the admin credentials.

Two checks exist:
  - Credentials compares a raw email and password before an account is created or signed in.
  - SessionChecker compares the email of an existing session.

A Handler exposes both as POST /validate-admin and POST /validate-admin/session.
Local and Client run them for the gate, in-process or over HTTP.
*/
package check
