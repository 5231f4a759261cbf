// Package httpapi implements [goAuthClient.CredentialService] over the
// storefront's JSON auth API.
//
// Every response is a {success, data, message} envelope. A 4xx status maps
// to goAuthClient.ErrCredentialRejected; network errors, 5xx statuses and
// undecodable bodies map to goAuthClient.ErrTransportFailure. Requests are
// traced through otelhttp and bounded by a 10 second default timeout.
package httpapi
