// Package api handles incoming HTTP requests, request validation and response
// formatting. Handlers translate JSON payloads into admission and care plan
// service calls; every failure leaves through HandleAPIError, which renders
// the {type, code, message} error body.
package api
