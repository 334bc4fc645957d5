package metrics

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// ErrInvalidCatalog wraps every catalog loading failure.
var ErrInvalidCatalog = errors.New("invalid achievement catalog")

// Predicate decides whether stats satisfy an achievement.
type Predicate func(stats domain.AggregateStats) bool

// Catalog is the closed, ordered set of achievements with their predicates.
type Catalog struct {
	definitions []domain.AchievementDefinition
	predicates  map[string]Predicate
	byID        map[string]domain.AchievementDefinition
}

type catalogFile struct {
	Achievements []domain.AchievementDefinition `yaml:"achievements"`
}

// DefaultCatalog parses the embedded catalog. It panics on a broken build,
// since the catalog ships with the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML, builtinPredicates())
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog decodes YAML definitions and pairs them with predicates.
func ParseCatalog(data []byte, predicates map[string]Predicate) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return NewCatalog(file.Achievements, predicates)
}

// NewCatalog validates definitions against predicates. Ids and titles
// (case-insensitive) must be unique, and every definition needs a predicate
// and vice versa.
func NewCatalog(definitions []domain.AchievementDefinition, predicates map[string]Predicate) (*Catalog, error) {
	byID := make(map[string]domain.AchievementDefinition, len(definitions))
	titles := make(map[string]string, len(definitions))

	for _, def := range definitions {
		if def.ID == "" || def.Title == "" {
			return nil, fmt.Errorf("%w: definition without id or title", ErrInvalidCatalog)
		}
		if !def.Category.IsValid() {
			return nil, fmt.Errorf("%w: %s has unknown category %q", ErrInvalidCatalog, def.ID, def.Category)
		}
		if _, dup := byID[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidCatalog, def.ID)
		}
		key := strings.ToLower(strings.TrimSpace(def.Title))
		if other, dup := titles[key]; dup {
			return nil, fmt.Errorf("%w: %s and %s share title %q", ErrInvalidCatalog, other, def.ID, def.Title)
		}
		if _, ok := predicates[def.ID]; !ok {
			return nil, fmt.Errorf("%w: no predicate for %s", ErrInvalidCatalog, def.ID)
		}
		byID[def.ID] = def
		titles[key] = def.ID
	}
	for id := range predicates {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: predicate %s has no definition", ErrInvalidCatalog, id)
		}
	}

	return &Catalog{
		definitions: append([]domain.AchievementDefinition(nil), definitions...),
		predicates:  predicates,
		byID:        byID,
	}, nil
}

// Definitions returns the catalog in display order.
func (c *Catalog) Definitions() []domain.AchievementDefinition {
	return append([]domain.AchievementDefinition(nil), c.definitions...)
}

// Definition looks up an entry by id.
func (c *Catalog) Definition(id string) (domain.AchievementDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Len returns the number of achievements.
func (c *Catalog) Len() int {
	return len(c.definitions)
}
