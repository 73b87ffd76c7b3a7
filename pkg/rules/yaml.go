package rules

import (
	"context"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/marclink/pkg/errors"
)

// ruleFile is the on-disk shape of a rule table file.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// FileSource serves every tenant from a single YAML rule file. It backs the
// CLI and local development; service deployments implement Source against
// their settings store instead.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource reading the given YAML file.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Rules implements Source by parsing the file on every call; the Cache in
// front of it decides how long the result lives.
func (s *FileSource) Rules(_ context.Context, _ string) ([]Rule, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewValidationError("rules", s.Path, err.Error())
	}
	return f.Rules, nil
}
