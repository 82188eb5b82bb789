// Package app wires configuration, the asset registry and the front-end
// module into a runnable application. It serves manifests over HTTP, prints
// a single manifest, or enhances an HTML document, independent of any
// specific entrypoint like a CLI.
package app
