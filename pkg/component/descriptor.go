package component

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/vango-dev/area/internal/errors"
)

// Kind discriminates the Descriptor union.
type Kind uint8

const (
	// KindNone is the zero Descriptor.
	KindNone Kind = iota
	// KindTag is a tag name resolved through a Registry.
	KindTag
	// KindConstructor is a constructor invoked on mount.
	KindConstructor
	// KindInstance is an element reused as-is.
	KindInstance
	// KindTemplate is a template rendered inline.
	KindTemplate
	// KindLazy is a constructor loaded on first use.
	KindLazy
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindConstructor:
		return "constructor"
	case KindInstance:
		return "instance"
	case KindTemplate:
		return "template"
	case KindLazy:
		return "lazy"
	default:
		return "none"
	}
}

// Element is a mounted component.
type Element interface {
	// TagName returns the element's tag name.
	TagName() string
}

// Constructor creates an element. params are the route parameters of the
// navigation that mounted it.
type Constructor func(params map[string]string) Element

// Template is content rendered inline without a constructor.
type Template interface {
	Render(w io.Writer) error
}

// TemplateFunc adapts a function to Template.
type TemplateFunc func(w io.Writer) error

// Render implements Template.
func (f TemplateFunc) Render(w io.Writer) error {
	return f(w)
}

// LazyConstructor is a constructor whose code is fetched on first use.
// *lazy.Loader[Constructor] implements it.
type LazyConstructor interface {
	// Load returns the constructor, loading it if needed.
	Load(ctx context.Context) (Constructor, error)

	// Get returns the constructor if it is already loaded.
	Get() (Constructor, bool)

	// Preload starts loading without waiting.
	Preload()
}

// Descriptor says what to mount. Exactly one payload field is set,
// according to Kind.
type Descriptor struct {
	Kind Kind

	// Name is the tag name for KindTag, and an optional label otherwise.
	Name string

	// New is set for KindConstructor.
	New Constructor

	// Element is set for KindInstance.
	Element Element

	// Template is set for KindTemplate.
	Template Template

	// Lazy is set for KindLazy.
	Lazy LazyConstructor
}

// Tag describes a component by tag name.
func Tag(name string) Descriptor {
	return Descriptor{Kind: KindTag, Name: name}
}

// Ctor describes a component by constructor. name labels it in snapshots.
func Ctor(name string, fn Constructor) Descriptor {
	return Descriptor{Kind: KindConstructor, Name: name, New: fn}
}

// Instance describes an existing element that is mounted as-is.
func Instance(el Element) Descriptor {
	d := Descriptor{Kind: KindInstance, Element: el}
	if el != nil {
		d.Name = el.TagName()
	}
	return d
}

// Inline describes a template rendered inline.
func Inline(t Template) Descriptor {
	return Descriptor{Kind: KindTemplate, Template: t}
}

// FromLazy describes a lazily loaded constructor.
func FromLazy(l LazyConstructor) Descriptor {
	return Descriptor{Kind: KindLazy, Lazy: l}
}

// Named returns a copy of d labelled name.
func (d Descriptor) Named(name string) Descriptor {
	d.Name = name
	return d
}

// IsZero reports whether d describes nothing.
func (d Descriptor) IsZero() bool {
	return d.Kind == KindNone
}

// Validate reports whether the payload matching Kind is present.
func (d Descriptor) Validate() error {
	var ok bool
	switch d.Kind {
	case KindTag:
		ok = d.Name != ""
	case KindConstructor:
		ok = d.New != nil
	case KindInstance:
		ok = d.Element != nil
	case KindTemplate:
		ok = d.Template != nil
	case KindLazy:
		ok = d.Lazy != nil
	}
	if !ok {
		return errors.New("A011").WithDetailf("%s descriptor without payload", d.Kind)
	}
	return nil
}

// Key returns an identity string for d. Two descriptors with the same key
// mount the same thing.
func (d Descriptor) Key() string {
	switch d.Kind {
	case KindTag:
		return "tag:" + d.Name
	case KindConstructor:
		return fmt.Sprintf("ctor:%s@%x", d.Name, funcPointer(d.New))
	case KindInstance:
		return fmt.Sprintf("instance:%s@%p", d.Name, d.Element)
	case KindTemplate:
		return fmt.Sprintf("template:%s@%s", d.Name, identity(d.Template))
	case KindLazy:
		return fmt.Sprintf("lazy:%s@%s", d.Name, identity(d.Lazy))
	default:
		return ""
	}
}

// Equal reports whether a and b mount the same thing.
func Equal(a, b Descriptor) bool {
	return a.Kind == b.Kind && a.Key() == b.Key()
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	if d.Name != "" {
		return d.Kind.String() + "(" + d.Name + ")"
	}
	return d.Kind.String()
}

func funcPointer(fn Constructor) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// identity returns a stable identity for pointer-like values and a printed
// form for plain values.
func identity(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Slice, reflect.UnsafePointer:
		return fmt.Sprintf("%x", rv.Pointer())
	default:
		return fmt.Sprintf("%v", v)
	}
}
