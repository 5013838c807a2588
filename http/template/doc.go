/*
Package template parses the HTML templates gatekeeper renders.

A [Parser] looks templates up first in the filesystem it is given, then among the templates embedded under tmpl/:
the layout, the login form, the status page shown while a session is resolved, and the error page.
*/
package template
