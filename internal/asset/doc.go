// Package asset defines the descriptors that make up a front-end asset
// manifest and the filter that decides which of them ship to a given scene.
//
// Two audiences matter: anonymous visitors, who receive the "lean" front end,
// and authenticated users, who also receive legacy assets tagged "always".
// Filtering is a pure function over the registration-ordered descriptor list
// and is safe to call concurrently.
package asset
