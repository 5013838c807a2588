/*
Package logger provides logging functionality to a gatekeeper app by defining the required behavior in [Logger]
and providing an implementation of it with [StdLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
LogLevel is the type to use to represent those levels.
An implementation of Logger may be initialized at a certain [LogLevel]
and only emit messages at or above that level of importance.
For example, [StdLogger] accepts a [LogLevel],
and if initialized with [LogLevelWarn],
only [*StdLogger.Warn], [*StdLogger.Error], and [*StdLogger.Fatal] produce messages.

# StdLogger

Log messages emitted by [StdLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

Here's an example:

	2024/04/28 15:55:21 [WARN] check/handler.go:43 'session check failed' log_context: {"error":"no session","user":{"email":"ada@example.com"}}

The log context is a JSON-encoded [*LogContext].
It carries data inessential to the message proper,
but provides a fuller picture of the application state at the time of logging.
Passwords never reach the log context: request form and JSON values under "password" are masked.

# SentryLogger

When SENTRY_DSN is set, [New] wraps the [StdLogger] in a [SentryLogger],
which also ships errors logged at [LogLevelWarn] and above to Sentry.
*/
package logger
