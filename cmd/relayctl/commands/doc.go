// Package commands defines the relayctl CLI, a thin operator tool over the
// relay HTTP API.
//
// Commands
//
//   - status                          Probe the relay health endpoint
//   - profile set <id> <username>     Publish a profile
//   - profile get <id>                Print a stored profile
//   - send <to> <payload>             Buffer an already-encrypted payload
//   - poll <recipient> [--ack]        List pending envelopes, optionally acking them
//   - ack <recipient> <message-id>    Delete one envelope
//
// relayctl never encrypts anything; payloads are passed through as given.
package commands
