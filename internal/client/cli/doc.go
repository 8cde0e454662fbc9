// Package cli provides the interactive starterkit command-line client.
//
// It wires configuration, the local sqlite store, the gRPC account client and
// an interactive REPL. A saved session is restored on start, and a background
// watcher keeps the online/offline indicator in the prompt current.
//
// Commands:
//   - register, verify <token>, login, logout
//   - forgot, reset <token>, email
//   - profile, status, avatar <path>
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
