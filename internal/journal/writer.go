package journal

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Write writes a journal to a YAML file
func Write(j *Journal, path string) error {
	data, err := yaml.Marshal(j)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read reads a journal from a YAML file
func Read(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var j Journal
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, err
	}

	return &j, nil
}
