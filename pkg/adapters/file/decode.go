package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/topicflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ReadProject loads a standalone project document from disk.
// Files ending in .json are decoded as JSON, everything else as YAML.
func ReadProject(path string) (domain.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Project{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeProject(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// DecodeProject parses a project document. Unknown JSON fields are rejected.
func DecodeProject(data []byte, isJSON bool) (domain.Project, error) {
	var p domain.Project
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return domain.Project{}, fmt.Errorf("invalid project JSON: %w", err)
		}
		return p, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return domain.Project{}, fmt.Errorf("invalid project YAML: %w", err)
	}
	return p, nil
}
