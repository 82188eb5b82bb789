// Package player enhances server-rendered widgets exactly once each.
//
// A widget is an element carrying a data-apos-widget marker, a JSON "data"
// attribute of the form {"type": ..., ...} and an optional JSON
// "data-options" attribute. The Dispatcher scans a document (or a freshly
// injected subtree), hands every widget it has not seen before to the Player
// registered for its type, and remembers it so later scans skip it.
//
// Dispatch follows a cooperative, single-threaded model: scans and player
// invocations run to completion on a Loop, and asynchronous work started by a
// player (see the request package) completes as a separate callback posted
// back onto the same Loop.
package player
