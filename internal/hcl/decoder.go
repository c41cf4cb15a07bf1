package hcl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/expgridgo/internal/ctxlog"
)

// Decoder is the HCL implementation of config.Decoder. It evaluates hook
// argument expressions and populates the registered handler's input struct
// using reflection, so hook modules declare plain Go structs with hcl tags
// and never see the configuration format.
type Decoder struct{}

// NewDecoder creates a new HCL decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// DecodeArgs populates target (a non-nil struct pointer) from the raw
// argument expressions. Fields without a matching argument keep their zero
// value; arguments without a matching field are rejected so typos in hook
// blocks fail loudly.
func (d *Decoder) DecodeArgs(ctx context.Context, target any, args map[string]hcl.Expression) error {
	logger := ctxlog.FromContext(ctx)

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	structVal = structVal.Elem()
	if structVal.Kind() != reflect.Struct {
		return fmt.Errorf("decode target must point to a struct, got %T", target)
	}
	structType := structVal.Type()

	fieldsByName := make(map[string]reflect.Value, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("hcl"); tag != "" {
			name = strings.Split(tag, ",")[0]
		}
		fieldsByName[name] = fieldVal
	}

	for name, expr := range args {
		fieldVal, ok := fieldsByName[name]
		if !ok {
			return fmt.Errorf("unknown argument %q for %s", name, structType.String())
		}

		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("failed to evaluate argument %q: %w", name, diags)
		}

		targetPtr := fieldVal.Addr().Interface()
		impliedType, err := gocty.ImpliedType(fieldVal.Interface())
		if err != nil {
			logger.Debug("Could not imply cty type, decoding directly.", "argument", name, "error", err)
			if err := gocty.FromCtyValue(val, targetPtr); err != nil {
				return fmt.Errorf("failed to decode argument %q: %w", name, err)
			}
			continue
		}

		converted, err := convert.Convert(val, impliedType)
		if err != nil {
			return fmt.Errorf("argument %q: cannot convert %s to %s: %w",
				name, val.Type().FriendlyName(), impliedType.FriendlyName(), err)
		}
		if err := gocty.FromCtyValue(converted, targetPtr); err != nil {
			return fmt.Errorf("failed to decode argument %q: %w", name, err)
		}
	}

	return nil
}
