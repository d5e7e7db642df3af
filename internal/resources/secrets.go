package resources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opmodel/converge/internal/component"
	cerrors "github.com/opmodel/converge/internal/errors"
)

// SecretsType publishes secret values to the rest of the environment.
var SecretsType = component.Type{
	Name:        "secrets",
	Description: "publishes secret values under the \"secrets\" hook",
	New:         decoded[Secrets](),
}

// Secrets publishes a string map under the secrets hook. Values come from a
// YAML file relative to the definition directory, overlaid with inline
// values. Only one secrets component should exist per environment.
type Secrets struct {
	component.Base

	File   string            `attr:"file"`
	Values map[string]string `attr:"values"`
}

func (s *Secrets) Configure() error {
	values := make(map[string]string)
	if s.File != "" {
		path := s.DefPath(s.File)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading secrets: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return cerrors.NewValidationError(
				fmt.Sprintf("secrets file is not a string map: %v", err), path, "file", "")
		}
	}
	for k, v := range s.Values {
		values[k] = v
	}
	s.Publish(component.SecretsHook, values)
	return nil
}
