// Package server hosts the HTTP API on gin behind an h2c handler.
//
// The standard middleware stack (server/middleware) is recovery, request id,
// request logging, body size limit and a per-client token-bucket rate
// limit. The server implements component.Component so bootstrap starts it
// after the workspace and stops it first.
package server
