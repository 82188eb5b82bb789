// Package request issues single-shot JSON requests on behalf of widget
// players and reports the outcome through a Node-style callback:
// cb(err, nil) on failure, cb(nil, response) on success.
//
// There are no retries, timeouts or cancellation. Callers that want to ignore
// a late response must track that themselves.
package request
