package component

import (
	"context"
	"io"

	"github.com/vango-dev/area/internal/errors"
)

// ErrUnknownTag is returned by Mount for tags missing from the registry.
var ErrUnknownTag = errors.New("A010")

// ErrInvalid is returned for descriptors without their payload.
var ErrInvalid = errors.New("A011")

// ErrLoad is returned when a lazy component fails to load.
var ErrLoad = errors.New("A030")

// Prepare makes d mountable without blocking. For lazy descriptors it waits
// for the load; every other kind is ready immediately.
func Prepare(ctx context.Context, d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Kind != KindLazy {
		return nil
	}
	if _, ok := d.Lazy.Get(); ok {
		return nil
	}
	if _, err := d.Lazy.Load(ctx); err != nil {
		return errors.New("A030").WithDetailf("component %s", d).Wrap(err)
	}
	return nil
}

// Mount turns d into an element.
func Mount(ctx context.Context, d Descriptor, reg *Registry, params map[string]string) (Element, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	switch d.Kind {
	case KindTag:
		if reg == nil {
			return nil, errors.New("A010").WithDetailf("tag %q (no registry)", d.Name)
		}
		ctor, ok := reg.Lookup(d.Name)
		if !ok {
			return nil, errors.New("A010").WithDetailf("tag %q", d.Name)
		}
		return ctor(params), nil

	case KindConstructor:
		return d.New(params), nil

	case KindInstance:
		return d.Element, nil

	case KindTemplate:
		return &TemplateElement{Name: d.Name, Template: d.Template}, nil

	case KindLazy:
		ctor, ok := d.Lazy.Get()
		if !ok {
			if err := Prepare(ctx, d); err != nil {
				return nil, err
			}
			ctor, _ = d.Lazy.Get()
		}
		if ctor == nil {
			return nil, errors.New("A011").WithDetail("lazy component loaded a nil constructor")
		}
		return ctor(params), nil
	}

	return nil, errors.New("A011").WithDetailf("kind %d", d.Kind)
}

// TemplateElement is the element produced by mounting a template.
type TemplateElement struct {
	Name     string
	Template Template
}

// TagName implements Element.
func (t *TemplateElement) TagName() string {
	if t.Name != "" {
		return t.Name
	}
	return "template"
}

// Render renders the template.
func (t *TemplateElement) Render(w io.Writer) error {
	return t.Template.Render(w)
}
