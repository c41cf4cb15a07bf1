// Package config defines the format-agnostic configuration model for an
// experiment grid: typed experiment records, trainer settings, hook blocks,
// and the Loader/Decoder interfaces a format-specific frontend (HCL) must
// implement.
//
// The model replaces the implicit environment channel of the legacy shell
// launcher. Every value the downstream trainer receives is a typed field
// here, validated at load time, and passed explicitly to the command
// assembler.
package config
