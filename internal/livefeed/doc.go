// Package livefeed subscribes to a socket.io namespace that pushes rendered
// fragments and swaps them into the document, then asks the dispatcher to
// play any widgets the fragment brought with it.
package livefeed
