// Package apiclient is the HTTP client for the local text-generation backend.
//
// It contains:
//   - [Client] with [Client.Generate], [Client.CheckHealth], [Client.Logs] and [Client.Info]
//   - the [GenerationRequest] / [GenerationResult] wire types
//   - [GenerationError], the normalized error taxonomy every generation failure maps to
//
// The client performs no input validation; callers (see package session)
// decide what is worth sending.
package apiclient
