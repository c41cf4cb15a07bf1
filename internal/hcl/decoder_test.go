package hcl

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseArgs turns an HCL attribute body into the raw expression map a hook
// block would carry.
func parseArgs(t *testing.T, src string) map[string]hcl.Expression {
	t.Helper()

	file, diags := hclparse.NewParser().ParseHCL([]byte(src), "args.hcl")
	require.False(t, diags.HasErrors(), diags.Error())

	attrs, diags := file.Body.JustAttributes()
	require.False(t, diags.HasErrors(), diags.Error())

	args := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		args[name] = attr.Expr
	}
	return args
}

type decodeTarget struct {
	URL     string            `hcl:"url,optional"`
	Retries int               `hcl:"retries,optional"`
	Rate    float64           `hcl:"rate,optional"`
	Verbose bool              `hcl:"verbose,optional"`
	Names   []string          `hcl:"names,optional"`
	Headers map[string]string `hcl:"headers,optional"`
}

func TestDecodeArgs_AllFieldTypes(t *testing.T) {
	t.Parallel()

	args := parseArgs(t, `
url     = "http://localhost:9090/hook"
retries = 3
rate    = 0.25
verbose = true
names   = ["PATH", "HOME"]
headers = {
	"X-Token" = "abc"
}
`)

	var target decodeTarget
	require.NoError(t, NewDecoder().DecodeArgs(context.Background(), &target, args))

	assert.Equal(t, "http://localhost:9090/hook", target.URL)
	assert.Equal(t, 3, target.Retries)
	assert.Equal(t, 0.25, target.Rate)
	assert.True(t, target.Verbose)
	assert.Equal(t, []string{"PATH", "HOME"}, target.Names)
	assert.Equal(t, map[string]string{"X-Token": "abc"}, target.Headers)
}

func TestDecodeArgs_MissingArgsKeepZeroValues(t *testing.T) {
	t.Parallel()

	args := parseArgs(t, `url = "http://example.com"`)

	var target decodeTarget
	require.NoError(t, NewDecoder().DecodeArgs(context.Background(), &target, args))

	assert.Equal(t, "http://example.com", target.URL)
	assert.Zero(t, target.Retries)
	assert.False(t, target.Verbose)
}

func TestDecodeArgs_UnknownArgument(t *testing.T) {
	t.Parallel()

	args := parseArgs(t, `no_such_field = 1`)

	var target decodeTarget
	err := NewDecoder().DecodeArgs(context.Background(), &target, args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown argument "no_such_field"`)
}

func TestDecodeArgs_TypeConversion(t *testing.T) {
	t.Parallel()

	// A numeric literal converts into a string field.
	args := parseArgs(t, `url = 8080`)

	var target decodeTarget
	require.NoError(t, NewDecoder().DecodeArgs(context.Background(), &target, args))
	assert.Equal(t, "8080", target.URL)
}

func TestDecodeArgs_BadTarget(t *testing.T) {
	t.Parallel()

	d := NewDecoder()
	require.Error(t, d.DecodeArgs(context.Background(), nil, nil))

	var notAStruct int
	require.Error(t, d.DecodeArgs(context.Background(), &notAStruct, nil))
}
