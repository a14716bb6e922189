package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalTemplate = `AWSTemplateFormatVersion: '2010-09-09'
Transform: AWS::Serverless-2016-10-31
Resources:
  Fn:
    Type: AWS::Serverless::Function
    Properties:
      Handler: app.handler
      Runtime: python3.12
      CodeUri: src
`

func newWorkspace(t *testing.T) (string, *Registry) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.yaml"), []byte(minimalTemplate), 0o644))

	reg, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = reg.Close()
	})
	return dir, reg
}

func TestRegistry_Resolve_Relative(t *testing.T) {
	dir, reg := newWorkspace(t)

	abs, err := reg.Resolve("./template.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "template.yaml"), abs)
}

func TestRegistry_Resolve_Absolute(t *testing.T) {
	dir, reg := newWorkspace(t)

	abs, err := reg.Resolve(filepath.Join(dir, "template.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "template.yaml"), abs)
}

func TestRegistry_Resolve_OutsideWorkspace(t *testing.T) {
	_, reg := newWorkspace(t)

	outside := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(outside, []byte(minimalTemplate), 0o644))

	_, err := reg.Resolve(outside)
	var notInWorkspace *TemplateNotInWorkspaceError
	assert.True(t, errors.As(err, &notInWorkspace))
}

func TestRegistry_Resolve_Missing(t *testing.T) {
	_, reg := newWorkspace(t)

	_, err := reg.Resolve("./nope.yaml")
	var notInWorkspace *TemplateNotInWorkspaceError
	require.True(t, errors.As(err, &notInWorkspace))
	assert.Equal(t, "./nope.yaml", notInWorkspace.Path)
}

func TestRegistry_Load_Caches(t *testing.T) {
	_, reg := newWorkspace(t)

	first, err := reg.Load("./template.yaml")
	require.NoError(t, err)
	second, err := reg.Load("./template.yaml")
	require.NoError(t, err)

	// Same parsed model instance until invalidated.
	assert.Same(t, first, second)

	reg.Invalidate(first.Path)
	third, err := reg.Load("./template.yaml")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestRegistry_Close_DropsCache(t *testing.T) {
	_, reg := newWorkspace(t)

	first, err := reg.Load("./template.yaml")
	require.NoError(t, err)
	require.NoError(t, reg.Close())

	second, err := reg.Load("./template.yaml")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestIsTemplateFile(t *testing.T) {
	assert.True(t, isTemplateFile("a/template.yaml"))
	assert.True(t, isTemplateFile("a/template.YML"))
	assert.True(t, isTemplateFile("a/template.json"))
	assert.False(t, isTemplateFile("a/main.go"))
}
