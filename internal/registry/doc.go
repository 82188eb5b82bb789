// Package registry provides the base asset registry: the ordered list of
// assets pushed by modules and configuration, and the store of browser calls
// (JavaScript statements emitted into the page for an audience).
//
// The registry applies no audience policy of its own beyond defaults. The
// lean front-end policy is layered on top by the push package, which wraps a
// Registry rather than replacing its methods.
package registry
