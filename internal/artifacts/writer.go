// Package artifacts materializes the side-effect files the external SAM
// build/run step consumes: env-vars.json, event.json, container-env-vars.json,
// and the synthetic input template for code targets.
//
// Write failures are fatal; partial writes are left for the external launcher
// to clean up along with the build directory.
package artifacts

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/cfn"
	"github.com/lex00/samlaunch-go/internal/resolve"
)

// SyntheticTemplateName matches the input template filename the original
// tooling generates for code-target invocations.
const SyntheticTemplateName = "app___vsctk___template.yaml"

// ArtifactWriteError is a filesystem failure during side-effect generation.
type ArtifactWriteError struct {
	Path string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("writing artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error { return e.Err }

// Result lists what was written. Paths are empty when the corresponding data
// was empty and the file was skipped.
type Result struct {
	BaseBuildDir     string
	EnvFile          string
	EventPayloadFile string
	ContainerEnvFile string
	// TemplatePath is the input template the SAM CLI should build: the
	// synthetic template for code targets, the original otherwise.
	TemplatePath string
}

// Writer writes invocation artifacts under a fresh base build directory.
type Writer struct {
	FS samlaunch.FS
	// Root is the parent for generated build directories. Defaults to the
	// OS temp directory.
	Root string
}

func (w *Writer) fs() samlaunch.FS {
	if w.FS == nil {
		return samlaunch.OSFS{}
	}
	return w.FS
}

// Write materializes the artifacts for a resolved config. containerEnv is
// the image-debug environment, already stripped for noDebug runs.
func (w *Writer) Write(cfg *resolve.NormalizedConfig, containerEnv map[string]string) (*Result, error) {
	base := cfg.BuildDirOverride
	if base == "" {
		base = filepath.Join(w.root(), "samlaunch-build-"+randomSuffix())
	}
	if err := w.fs().MkdirAll(base); err != nil {
		return nil, &ArtifactWriteError{Path: base, Err: err}
	}

	res := &Result{BaseBuildDir: base, TemplatePath: cfg.TemplatePath}

	if len(cfg.Environment) > 0 {
		path := filepath.Join(base, "env-vars.json")
		payload := map[string]map[string]string{cfg.LogicalID: cfg.Environment}
		if err := w.writeJSON(path, payload); err != nil {
			return nil, err
		}
		res.EnvFile = path
	}

	eventFile, err := w.writeEvent(base, cfg.Payload)
	if err != nil {
		return nil, err
	}
	res.EventPayloadFile = eventFile

	if len(containerEnv) > 0 {
		path := filepath.Join(base, "container-env-vars.json")
		if err := w.writeJSON(path, containerEnv); err != nil {
			return nil, err
		}
		res.ContainerEnvFile = path
	}

	if cfg.Synthetic {
		path := filepath.Join(base, SyntheticTemplateName)
		if err := w.writeTemplate(path, cfg.Template); err != nil {
			return nil, err
		}
		res.TemplatePath = path
	}

	return res, nil
}

func (w *Writer) root() string {
	if w.Root != "" {
		return w.Root
	}
	return os.TempDir()
}

func (w *Writer) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &ArtifactWriteError{Path: path, Err: err}
	}
	if err := w.fs().WriteFile(path, data); err != nil {
		return &ArtifactWriteError{Path: path, Err: err}
	}
	return nil
}

// writeEvent writes event.json from the inline payload or the payload file.
// No payload, no file.
func (w *Writer) writeEvent(base string, payload samlaunch.Payload) (string, error) {
	path := filepath.Join(base, "event.json")

	switch {
	case payload.Path != "":
		data, err := w.fs().ReadFile(payload.Path)
		if err != nil {
			return "", &ArtifactWriteError{Path: payload.Path, Err: err}
		}
		if err := w.fs().WriteFile(path, data); err != nil {
			return "", &ArtifactWriteError{Path: path, Err: err}
		}
		return path, nil
	case payload.JSON != nil:
		if err := w.writeJSON(path, payload.JSON); err != nil {
			return "", err
		}
		return path, nil
	default:
		return "", nil
	}
}

// templateDoc is the yaml shape of the synthetic single-resource template.
type templateDoc struct {
	AWSTemplateFormatVersion string                 `yaml:"AWSTemplateFormatVersion"`
	Transform                string                 `yaml:"Transform"`
	Resources                map[string]resourceDoc `yaml:"Resources"`
}

type resourceDoc struct {
	Type       string         `yaml:"Type"`
	Properties map[string]any `yaml:"Properties"`
}

func (w *Writer) writeTemplate(path string, tmpl *cfn.Template) error {
	doc := templateDoc{
		AWSTemplateFormatVersion: "2010-09-09",
		Transform:                "AWS::Serverless-2016-10-31",
		Resources:                make(map[string]resourceDoc, len(tmpl.Resources)),
	}
	for id, res := range tmpl.Resources {
		doc.Resources[id] = resourceDoc{Type: res.Type, Properties: res.Properties}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return &ArtifactWriteError{Path: path, Err: err}
	}
	if err := w.fs().WriteFile(path, data); err != nil {
		return &ArtifactWriteError{Path: path, Err: err}
	}
	return nil
}

// randomSuffix names a fresh build dir. Collision resistance comes from the
// random read; no coordination with other invocations is needed.
func randomSuffix() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
