package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nlsql/internal/engine"
)

// Scenario is one question with its expected outcome.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Dataset     string `yaml:"dataset"`
	Question    string `yaml:"question"`
	Expect      Expect `yaml:"expect"`
}

// Expect lists the checks for a scenario. Zero-valued fields are skipped,
// except Status which is required.
type Expect struct {
	Status         string   `yaml:"status"`
	SQL            string   `yaml:"sql,omitempty"`
	Answer         string   `yaml:"answer,omitempty"`
	AnswerContains []string `yaml:"answer_contains,omitempty"`
	Attempts       int      `yaml:"attempts,omitempty"`
	RowCount       *int     `yaml:"row_count,omitempty"`
}

// LoadScenario reads a scenario file. Unknown fields are rejected so a
// misspelled expectation fails loudly instead of being skipped.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, path)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if s.Question == "" {
		return fmt.Errorf("question is required")
	}

	switch engine.Status(s.Expect.Status) {
	case engine.StatusOK, engine.StatusUnsupported, engine.StatusFailed:
	case "":
		return fmt.Errorf("expect.status is required")
	default:
		return fmt.Errorf("expect.status: unknown status %q", s.Expect.Status)
	}

	if s.Expect.Attempts < 0 || s.Expect.Attempts > engine.MaxAttempts {
		return fmt.Errorf("expect.attempts must be between 1 and %d", engine.MaxAttempts)
	}
	if s.Expect.RowCount != nil && *s.Expect.RowCount < 0 {
		return fmt.Errorf("expect.row_count must not be negative")
	}
	return nil
}
