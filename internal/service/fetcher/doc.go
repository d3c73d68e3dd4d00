// Package fetcher downloads release artifacts over HTTP(S).
//
// Every attempt is bounded by a timeout and the response body by a size cap.
// Retries are off by default and only cover transport errors and 5xx replies.
package fetcher
