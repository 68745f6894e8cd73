// Package api is the HTTP adapter over the render pipeline, the validator
// and the export service.
//
// Success bodies keep the editor's JSON shapes ({valid, error},
// {success, data, format, contentType}, ...). Failures use the
// errors.ErrorResponse envelope.
package api
