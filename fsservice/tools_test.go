package fsservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/mcp-filesystem/server"
)

type argsWithRequiredField struct {
	Path string `json:"path" required:"true"`
}

func TestInstrument_RejectsMissingRequiredArgument(t *testing.T) {
	svc := New([]string{t.TempDir()})
	called := false

	handler := func(ctx *server.Context, args argsWithRequiredField) (interface{}, error) {
		called = true
		return "ok", nil
	}

	wrapped := instrument("some_tool", svc, handler).(func(*server.Context, argsWithRequiredField) (interface{}, error))

	result, err := wrapped(nil, argsWithRequiredField{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.False(t, called, "handler must not run when required validation fails")
	assert.Contains(t, err.Error(), "some_tool")
}

func TestInstrument_PassesThroughValidArgument(t *testing.T) {
	svc := New([]string{t.TempDir()})

	handler := func(ctx *server.Context, args argsWithRequiredField) (interface{}, error) {
		return args.Path, nil
	}

	wrapped := instrument("some_tool", svc, handler).(func(*server.Context, argsWithRequiredField) (interface{}, error))

	result, err := wrapped(nil, argsWithRequiredField{Path: "/tmp/x"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", result)
}

func TestIsTextFormat(t *testing.T) {
	assert.True(t, isTextFormat("text"))
	assert.False(t, isTextFormat("json"))
	assert.False(t, isTextFormat(""))
}

// TestInstrument_AllowsOptionalEnumFieldUnset guards against the
// required/enum interaction regressing: rootPathArgs, findEmptyDirectoriesArgs,
// and findDuplicateFilesArgs all carry an optional OutputFormat enum field,
// and calling those tools without output_format (the documented default) must
// not be rejected by the same validation pass that enforces required fields.
func TestInstrument_AllowsOptionalEnumFieldUnset(t *testing.T) {
	svc := New([]string{t.TempDir()})
	called := false

	handler := func(ctx *server.Context, args rootPathArgs) (interface{}, error) {
		called = true
		return nil, nil
	}

	wrapped := instrument("calculate_directory_size", svc, handler).(func(*server.Context, rootPathArgs) (interface{}, error))

	_, err := wrapped(nil, rootPathArgs{RootPath: "/tmp/x"})
	require.NoError(t, err)
	assert.True(t, called, "handler must run when only the optional enum field is left unset")
}
