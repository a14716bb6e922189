package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/cfn"
	"github.com/lex00/samlaunch-go/internal/resolve"
)

func baseConfig(buildDir string) *resolve.NormalizedConfig {
	return &resolve.NormalizedConfig{
		Name:             "test",
		Kind:             samlaunch.TargetCode,
		CodeRoot:         "/work/app",
		HandlerName:      "app.handler",
		LogicalID:        "app.handler",
		Runtime:          "python3.13",
		BuildDirOverride: buildDir,
	}
}

func TestWriter_Write_EnvVars(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Environment = map[string]string{"A": "1", "B": "2"}

	w := &Writer{}
	res, err := w.Write(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, res.BaseBuildDir)
	require.NotEmpty(t, res.EnvFile)

	data, err := os.ReadFile(res.EnvFile)
	require.NoError(t, err)
	var got map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]map[string]string{
		"app.handler": {"A": "1", "B": "2"},
	}, got)
}

func TestWriter_Write_NoEnvNoFile(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{}
	res, err := w.Write(baseConfig(dir), nil)
	require.NoError(t, err)

	assert.Empty(t, res.EnvFile)
	assert.Empty(t, res.EventPayloadFile)
	assert.Empty(t, res.ContainerEnvFile)
}

func TestWriter_Write_InlineEvent(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Payload = samlaunch.Payload{JSON: map[string]any{"key": "value"}}

	w := &Writer{}
	res, err := w.Write(cfg, nil)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "event.json"), res.EventPayloadFile)
	data, err := os.ReadFile(res.EventPayloadFile)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{"key": "value"}, got)
}

func TestWriter_Write_EventFromFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "input-event.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"from":"file"}`), 0o644))

	cfg := baseConfig(dir)
	cfg.Payload = samlaunch.Payload{Path: src}

	w := &Writer{}
	res, err := w.Write(cfg, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(res.EventPayloadFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"file"}`, string(data))
}

func TestWriter_Write_EventFileMissing(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Payload = samlaunch.Payload{Path: filepath.Join(dir, "nope.json")}

	w := &Writer{}
	_, err := w.Write(cfg, nil)

	var writeErr *ArtifactWriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Contains(t, writeErr.Path, "nope.json")
}

func TestWriter_Write_ContainerEnv(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{}
	res, err := w.Write(baseConfig(dir), map[string]string{
		"_JAVA_OPTIONS": "-agentlib:jdwp",
	})
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "container-env-vars.json"), res.ContainerEnvFile)
	data, err := os.ReadFile(res.ContainerEnvFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_JAVA_OPTIONS":"-agentlib:jdwp"}`, string(data))
}

func TestWriter_Write_SyntheticTemplate(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Synthetic = true
	cfg.Template = &cfn.Template{
		Resources: map[string]cfn.Resource{
			"app.handler": {
				LogicalID: "app.handler",
				Type:      "AWS::Serverless::Function",
				Properties: map[string]any{
					"Handler": "app.handler",
					"CodeUri": "/work/app",
					"Runtime": "python3.13",
				},
			},
		},
	}

	w := &Writer{}
	res, err := w.Write(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, SyntheticTemplateName), res.TemplatePath)

	data, err := os.ReadFile(res.TemplatePath)
	require.NoError(t, err)
	var doc struct {
		Transform string `yaml:"Transform"`
		Resources map[string]struct {
			Type       string         `yaml:"Type"`
			Properties map[string]any `yaml:"Properties"`
		} `yaml:"Resources"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "AWS::Serverless-2016-10-31", doc.Transform)
	require.Contains(t, doc.Resources, "app.handler")
	assert.Equal(t, "app.handler", doc.Resources["app.handler"].Properties["Handler"])
}

func TestWriter_Write_TemplateTargetKeepsOriginalPath(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Kind = samlaunch.TargetTemplate
	cfg.TemplatePath = "/work/template.yaml"

	w := &Writer{}
	res, err := w.Write(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "/work/template.yaml", res.TemplatePath)
}

func TestWriter_Write_GeneratedBuildDir(t *testing.T) {
	root := t.TempDir()
	cfg := baseConfig("")

	w := &Writer{Root: root}
	res, err := w.Write(cfg, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.BaseBuildDir, filepath.Join(root, "samlaunch-build-")))
	info, err := os.Stat(res.BaseBuildDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// A second write lands in a distinct directory.
	res2, err := w.Write(cfg, nil)
	require.NoError(t, err)
	assert.NotEqual(t, res.BaseBuildDir, res2.BaseBuildDir)
}

type failingFS struct {
	samlaunch.OSFS
}

func (failingFS) WriteFile(string, []byte) error {
	return fmt.Errorf("disk full")
}

func TestWriter_Write_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Environment = map[string]string{"A": "1"}

	w := &Writer{FS: failingFS{}}
	_, err := w.Write(cfg, nil)

	var writeErr *ArtifactWriteError
	require.True(t, errors.As(err, &writeErr))
	assert.ErrorContains(t, err, "disk full")
}
