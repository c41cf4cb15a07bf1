package config

// TriState models an optional boolean configuration value. The legacy shell
// launcher could not tell an explicit `relation_only=False` apart from an
// unset variable; the typed model keeps the distinction at parse time even
// though both states omit the trainer switch.
type TriState uint8

const (
	TriUnset TriState = iota
	TriFalse
	TriTrue
)

// TriFromBool converts an optional decoded boolean into a TriState. A nil
// pointer means the attribute was absent from the configuration.
func TriFromBool(b *bool) TriState {
	switch {
	case b == nil:
		return TriUnset
	case *b:
		return TriTrue
	default:
		return TriFalse
	}
}

// Enabled reports whether the value was explicitly set to true. Only an
// enabled tri-state emits its switch token on the trainer command line.
func (t TriState) Enabled() bool {
	return t == TriTrue
}

func (t TriState) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unset"
	}
}
