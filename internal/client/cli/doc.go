// Package cli provides the interactive files manager command-line client.
//
// It wires configuration, the HTTP API client and a REPL. A background
// watcher pings /health and shows whether the server is online in the
// prompt.
//
// Commands:
//   - register, login, logout, me
//   - mkdir, upload, ls, cd
//   - publish, unpublish
//   - get (works anonymously for public files)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
