package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/fsutil"
	"github.com/vk/expgridgo/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .hcl file under the given paths, decodes the experiment
// blocks, and translates them into the unified model. A missing path or a
// parse failure is a hard error: nothing downstream of configuration may
// run against a partial model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Decoder, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, nil, fmt.Errorf("config path %q is not readable: %w", path, err)
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan config path %q: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .hcl config files found under %v", paths)
	}
	logger.Debug("Found HCL config files.", "files", files)

	model := &config.Model{}
	parser := hclparse.NewParser()
	seen := make(map[string]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}

		var root schema.Root
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}

		for _, raw := range root.Experiments {
			if prev, dup := seen[raw.Name]; dup {
				return nil, nil, fmt.Errorf("duplicate experiment %q in %s (first defined in %s)", raw.Name, file, prev)
			}
			seen[raw.Name] = file

			exp, err := l.translateExperiment(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("in %s: %w", file, err)
			}
			if err := exp.Validate(); err != nil {
				return nil, nil, fmt.Errorf("invalid config in %s: %w", file, err)
			}
			model.Experiments = append(model.Experiments, exp)
		}
		logger.Debug("Loaded experiment definitions from file.", "file", file)
	}

	logger.Debug("Configuration loaded and translated into unified model.", "experiments", len(model.Experiments))
	return model, NewDecoder(), nil
}
