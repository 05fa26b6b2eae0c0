package exercises

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed catalog.yaml
	catalogYAML []byte

	ErrUnknownExercise = errors.New("unknown exercise")

	loadCatalog = sync.OnceValues(func() (*Catalog, error) {
		return ParseCatalog(catalogYAML)
	})
)

type (
	Catalog struct {
		Exercises []Entry `yaml:"exercises" validate:"required,min=1,dive"`
	}

	Entry struct {
		Name  string `yaml:"name" validate:"required"`
		Title string `yaml:"title" validate:"required"`
		// Plot is set when the exercise renders a chart
		Plot bool `yaml:"plot"`
		// Inputs maps the name an exercise uses for a dataset to its path in
		// the data store
		Inputs map[string]string `yaml:"inputs" validate:"required,min=1,dive,required"`
	}
)

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("error in yaml.Unmarshal: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	seen := map[string]bool{}
	for _, e := range c.Exercises {
		if seen[e.Name] {
			return nil, fmt.Errorf("invalid catalog: duplicate exercise %q", e.Name)
		}
		seen[e.Name] = true
	}
	return &c, nil
}

// GetCatalog returns the embedded catalog.
func GetCatalog() (*Catalog, error) {
	return loadCatalog()
}

func (c *Catalog) Get(name string) (Entry, error) {
	for _, e := range c.Exercises {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownExercise, name)
}
