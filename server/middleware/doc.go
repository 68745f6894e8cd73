// Package middleware holds the gin middleware stack of the HTTP server.
package middleware
