// Package cli provides the interactive QueueVault command-line client.
//
// It wires configuration, the local encrypted store, the relay client, and an
// interactive REPL. Typical flow: register or log in (which derives the
// encryption key from the password), then submit event registrations that are
// stored sealed locally and forwarded through the signing relay.
//
// Key features:
//   - Register / Login / Logout
//   - Submit a registration for a catalog event
//   - List registrations and show aggregate stats
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
