package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific configuration loader. It
// reads every config file under the given paths, translates the blocks into
// the format-agnostic model, and returns a matching Decoder.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, Decoder, error)
}

// Decoder binds raw, unevaluated hook arguments to a registered handler's
// Go input struct. It is the bridge between the configuration format and
// the hook modules' native types.
type Decoder interface {
	DecodeArgs(ctx context.Context, target any, args map[string]hcl.Expression) error
}
