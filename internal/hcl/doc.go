// Package hcl is the HCL frontend for the configuration model. It discovers
// and parses .hcl files, decodes them through the raw schema structs, and
// translates the result into the format-agnostic config model. The rest of
// the application never touches HCL types directly, except for the opaque
// hook argument expressions the Decoder evaluates on demand.
package hcl
