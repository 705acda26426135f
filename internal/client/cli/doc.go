// Package cli provides the StreamForge command-line client.
//
// Each command dials the server's gRPC endpoint, runs one account flow and
// exits: register, login (password, then the emailed one-time code), verify,
// forgot, reset, me, logout and ping. A successful login stores the session
// token in a local file that later commands reuse.
//
// Passwords are read from the terminal without echo. When stdin is not a
// terminal they are read as a plain line, so the commands can be scripted.
package cli
