package store

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidDirectory = errors.New("invalid store directory")

//go:embed locations.yaml
var defaultLocationsRaw []byte

// Directory maps normalized location names to their records. It is built once
// and never mutated, so it can be shared across calls without locking.
type Directory struct {
	byKey map[string]LocationRecord
	names []string
}

type directoryFile struct {
	Locations []LocationRecord `yaml:"locations"`
}

// New builds a Directory from records in the order given.
func New(records ...LocationRecord) (*Directory, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no locations", ErrInvalidDirectory)
	}

	d := &Directory{
		byKey: make(map[string]LocationRecord, len(records)),
		names: make([]string, 0, len(records)),
	}
	for i, rec := range records {
		rec.ID = strings.TrimSpace(rec.ID)
		rec.Name = strings.TrimSpace(rec.Name)
		if err := validateRecord(rec); err != nil {
			return nil, fmt.Errorf("%w: location %d: %v", ErrInvalidDirectory, i, err)
		}
		key := normalize(rec.Name)
		if _, dup := d.byKey[key]; dup {
			return nil, fmt.Errorf("%w: duplicate location %q", ErrInvalidDirectory, rec.Name)
		}
		d.byKey[key] = rec.clone()
		d.names = append(d.names, rec.Name)
	}
	return d, nil
}

// Load parses a YAML document with a top-level `locations` list.
func Load(data []byte) (*Directory, error) {
	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidDirectory, err)
	}
	return New(file.Locations...)
}

func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read store directory %s: %w", path, err)
	}
	return Load(data)
}

// Default returns the directory of the three Builder's Hub locations.
func Default() *Directory {
	d, err := Load(defaultLocationsRaw)
	if err != nil {
		panic(err)
	}
	return d
}

// Get resolves a caller-supplied location name. Matching ignores case and
// surrounding whitespace; anything else is simply not found.
func (d *Directory) Get(name string) (LocationRecord, bool) {
	if d == nil {
		return LocationRecord{}, false
	}
	rec, ok := d.byKey[normalize(name)]
	if !ok {
		return LocationRecord{}, false
	}
	return rec.clone(), true
}

// Names returns display names in declaration order.
func (d *Directory) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// NamesSentence renders the names the way they are read out: "A, B, or C".
func (d *Directory) NamesSentence() string {
	names := d.Names()
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
	}
}

// Records returns every location in declaration order.
func (d *Directory) Records() []LocationRecord {
	if d == nil {
		return nil
	}
	out := make([]LocationRecord, 0, len(d.names))
	for _, name := range d.names {
		out = append(out, d.byKey[normalize(name)].clone())
	}
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validateRecord(rec LocationRecord) error {
	if rec.ID == "" {
		return errors.New("id is required")
	}
	if rec.Name == "" {
		return errors.New("name is required")
	}
	if len(rec.Hours) == 0 {
		return fmt.Errorf("%s: hours are required", rec.Name)
	}
	for _, line := range rec.Hours {
		if strings.TrimSpace(line.Days) == "" || strings.TrimSpace(line.Open) == "" {
			return fmt.Errorf("%s: hours line needs days and open", rec.Name)
		}
	}
	if len(rec.Departments) == 0 {
		return fmt.Errorf("%s: departments are required", rec.Name)
	}
	return nil
}
