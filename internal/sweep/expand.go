// Package sweep expands an experiment's matrix block into concrete runs:
// one run per element of the cross product of every matrix attribute, each
// with its own copy of the typed parameter record.
package sweep

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/expgridgo/internal/config"
)

// Run is a single concrete trainer invocation derived from an experiment.
type Run struct {
	ID         string
	Name       string
	Experiment *config.Experiment
	Params     *config.Params
	Overrides  map[string]string // rendered matrix values, keyed by attribute
}

// Expand produces the runs for one experiment. Without a matrix it yields a
// single run named after the experiment. With a matrix it yields the full
// cross product, each run named `experiment[k=v,...]` with keys in sorted
// order so expansion is deterministic.
func Expand(exp *config.Experiment) ([]*Run, error) {
	if len(exp.Matrix) == 0 {
		return []*Run{newRun(exp.Name, exp, *exp.Params, nil)}, nil
	}

	keys := make([]string, 0, len(exp.Matrix))
	for key := range exp.Matrix {
		if _, ok := paramSetters[key]; !ok {
			return nil, fmt.Errorf("experiment %q: matrix key %q does not name a sweepable parameter", exp.Name, key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var runs []*Run
	indices := make([]int, len(keys))
	for {
		params := *exp.Params
		overrides := make(map[string]string, len(keys))
		labels := make([]string, 0, len(keys))

		for i, key := range keys {
			val := exp.Matrix[key][indices[i]]
			if err := paramSetters[key](&params, val); err != nil {
				return nil, fmt.Errorf("experiment %q: matrix key %q: %w", exp.Name, key, err)
			}
			rendered, err := renderValue(val)
			if err != nil {
				return nil, fmt.Errorf("experiment %q: matrix key %q: %w", exp.Name, key, err)
			}
			overrides[key] = rendered
			labels = append(labels, key+"="+rendered)
		}

		name := fmt.Sprintf("%s[%s]", exp.Name, strings.Join(labels, ","))
		runs = append(runs, newRun(name, exp, params, overrides))

		// Odometer increment over the matrix dimensions.
		i := len(indices) - 1
		for ; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(exp.Matrix[keys[i]]) {
				break
			}
			indices[i] = 0
		}
		if i < 0 {
			break
		}
	}

	return runs, nil
}

func newRun(name string, exp *config.Experiment, params config.Params, overrides map[string]string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		Name:       name,
		Experiment: exp,
		Params:     &params,
		Overrides:  overrides,
	}
}

// renderValue produces the compact textual form of a matrix value used in
// run names and the ledger.
func renderValue(val cty.Value) (string, error) {
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot render %s as a string", val.Type().FriendlyName())
	}
	return converted.AsString(), nil
}
