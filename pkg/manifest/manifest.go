// Package manifest declares area routes in YAML.
//
// A manifest is the declarative form of route markers:
//
//	flags:
//	  logged-in: false
//	areas:
//	  - name: main
//	    default: not-found
//	    routes:
//	      - when: public-page
//	        tag: public-page
//	      - when: protected-page
//	        tag: protected-page
//	        guard: logged-in
//	      - when: reports
//	        lazy: reports
//	      - when: about
//	        template: "<p>About us</p>"
//	        exact: true
//	      - when: terms
//	        s3: pages/terms.html
//
// Each route names exactly one component source. Guards name flags; a
// leading "!" negates a flag and a comma-separated list requires all of
// them.
package manifest

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/area/internal/errors"
)

// ErrInvalid is returned for manifests that fail validation.
var ErrInvalid = errors.New("A062")

// Manifest is a set of area declarations.
type Manifest struct {
	// Flags declares named boolean flags and their initial values.
	Flags map[string]bool `yaml:"flags,omitempty"`

	Areas []AreaSpec `yaml:"areas"`
}

// AreaSpec declares one area.
type AreaSpec struct {
	Name string `yaml:"name"`

	// Default is the tag mounted when a route key matches nothing.
	Default string `yaml:"default,omitempty"`

	Routes []RouteSpec `yaml:"routes"`
}

// RouteSpec declares one route. Exactly one of Tag, Template, Lazy and
// S3 is set.
type RouteSpec struct {
	When string `yaml:"when"`

	// Tag is a registered component tag.
	Tag string `yaml:"tag,omitempty"`

	// Template is inline HTML.
	Template string `yaml:"template,omitempty"`

	// Lazy names a lazy component binding.
	Lazy string `yaml:"lazy,omitempty"`

	// S3 is the object key of a remote template.
	S3 string `yaml:"s3,omitempty"`

	Exact bool   `yaml:"exact,omitempty"`
	Guard string `yaml:"guard,omitempty"`
}

// Source returns the name of the component source set on the route.
func (r RouteSpec) Source() string {
	switch {
	case r.Tag != "":
		return "tag"
	case r.Template != "":
		return "template"
	case r.Lazy != "":
		return "lazy"
	case r.S3 != "":
		return "s3"
	default:
		return ""
	}
}

func (r RouteSpec) sources() int {
	n := 0
	for _, s := range []string{r.Tag, r.Template, r.Lazy, r.S3} {
		if s != "" {
			n++
		}
	}
	return n
}

// Parse decodes and validates a manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New("A062").WithDetail("decode").Wrap(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// Validate checks area names, route keys, component sources and guard
// references.
func (m *Manifest) Validate() error {
	var problems []string
	areas := make(map[string]bool)

	for i, a := range m.Areas {
		if a.Name == "" {
			problems = append(problems, fmt.Sprintf("areas[%d]: name is required", i))
			continue
		}
		if areas[a.Name] {
			problems = append(problems, fmt.Sprintf("area %q declared twice", a.Name))
		}
		areas[a.Name] = true

		whens := make(map[string]bool)
		for j, r := range a.Routes {
			where := fmt.Sprintf("area %q routes[%d]", a.Name, j)
			if r.When == "" {
				problems = append(problems, where+": when is required")
			} else if whens[r.When] {
				problems = append(problems, fmt.Sprintf("%s: duplicate when %q", where, r.When))
			}
			whens[r.When] = true

			switch r.sources() {
			case 0:
				problems = append(problems, where+": one of tag, template, lazy or s3 is required")
			case 1:
			default:
				problems = append(problems, where+": only one of tag, template, lazy or s3 may be set")
			}

			for _, name := range guardNames(r.Guard) {
				if name == "" {
					problems = append(problems, where+": empty guard name")
				}
			}
		}
	}

	if len(problems) > 0 {
		return errors.New("A062").WithDetail(strings.Join(problems, "; "))
	}
	return nil
}

// guardNames splits a guard expression into flag names, keeping any
// leading "!".
func guardNames(expr string) []string {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	parts := strings.Split(expr, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if strings.HasPrefix(parts[i], "!") {
			parts[i] = "!" + strings.TrimSpace(parts[i][1:])
			if parts[i] == "!" {
				parts[i] = ""
			}
		}
	}
	return parts
}
