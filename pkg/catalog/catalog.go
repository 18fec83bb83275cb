package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type ViewKind string

const (
	ViewNormal ViewKind = "normal"
	ViewCross  ViewKind = "cross"
)

var (
	ErrInvalidCatalog = errors.New("invalid catalog")

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

type Catalog struct {
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`

	// CrossSection requests a second, cut-open view for every item.
	CrossSection bool `yaml:"cross_section"`

	Items []MenuItem `yaml:"items"`
}

type MenuItem struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	Prompt      string `yaml:"prompt"`
	CrossPrompt string `yaml:"cross_prompt"`
}

// Default returns the built-in menu.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)

	if err != nil {
		panic(err)
	}

	return c
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	var names []string

	for _, category := range c.Categories {
		if category.Name == "" {
			return fmt.Errorf("%w: category without name", ErrInvalidCatalog)
		}

		if slices.Contains(names, category.Name) {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, category.Name)
		}

		names = append(names, category.Name)

		var ids []string

		for _, item := range category.Items {
			if !slugPattern.MatchString(item.ID) {
				return fmt.Errorf("%w: invalid item id %q in %s", ErrInvalidCatalog, item.ID, category.Name)
			}

			if item.Name == "" {
				return fmt.Errorf("%w: item %q in %s has no name", ErrInvalidCatalog, item.ID, category.Name)
			}

			if slices.Contains(ids, item.ID) {
				return fmt.Errorf("%w: duplicate item %q in %s", ErrInvalidCatalog, item.ID, category.Name)
			}

			ids = append(ids, item.ID)
		}
	}

	return nil
}

// Filter returns a catalog restricted to the named categories, in catalog order.
func (c *Catalog) Filter(names ...string) (*Catalog, error) {
	if len(names) == 0 {
		return c, nil
	}

	for _, name := range names {
		if !slices.ContainsFunc(c.Categories, func(category Category) bool { return category.Name == name }) {
			return nil, errors.New("category not found: " + name)
		}
	}

	result := &Catalog{}

	for _, category := range c.Categories {
		if slices.Contains(names, category.Name) {
			result.Categories = append(result.Categories, category)
		}
	}

	return result, nil
}

// Views lists the view kinds requested for every item of the category.
func (c Category) Views() []ViewKind {
	if c.CrossSection {
		return []ViewKind{ViewNormal, ViewCross}
	}

	return []ViewKind{ViewNormal}
}

func (c Category) dir() string {
	if c.Dir != "" {
		return c.Dir
	}

	return c.Name
}

// ViewCount is the number of images a full traversal requests.
func (c *Catalog) ViewCount() int {
	var count int

	for _, category := range c.Categories {
		count += len(category.Items) * len(category.Views())
	}

	return count
}

// OutputPath is fully determined by category, item and view.
func OutputPath(root string, category Category, item MenuItem, view ViewKind) string {
	name := item.ID

	if view == ViewCross {
		name += "-cross"
	}

	return filepath.Join(root, category.dir(), name+".jpg")
}
