/*
Package req parses and validates the payload of an HTTP request.

A [Parser] decodes posted forms, or JSON bodies whatever their Content-Type,
into a pointer to a struct, then checks the result against the struct's "validate" tags.
Broken rules come back as [FieldErrors], which wrap gatekeeper.ErrNotValid
and carry a message per field for the login form.
*/
package req
