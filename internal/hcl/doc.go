// Package hcl provides the concrete HCL implementation of config.Loader. It
// parses files, decodes the top-level blocks with gohcl and converts
// attribute values through cty, so that "was this attribute written at all"
// stays distinguishable from "was it written as an empty value".
package hcl
