// Package config defines the format-agnostic configuration model for the
// application: the assets and browser calls a site configures, plus the
// options of the lean front-end module. Concrete loaders, such as the HCL
// one, live in separate packages.
package config
