// Package s3loader provides lazy components whose content lives in S3.
//
// A remote fragment is fetched on first navigation and served from memory
// afterwards:
//
//	client := s3.NewFromConfig(cfg)
//	help := s3loader.Template(client, "ui-fragments", "help/index.html")
//	router.Define("main", route.Definition{When: "help", Component: component.FromLazy(help)})
package s3loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/area/pkg/component"
	"github.com/vango-dev/area/pkg/lazy"
)

// DefaultMaxSize caps fetched objects (1 MiB).
const DefaultMaxSize = 1 << 20

// ObjectGetter is the subset of *s3.Client used by the loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config configures a remote template.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string

	// Key is the object key.
	Key string

	// Name is the element tag name. Defaults to the key's base name
	// without extension.
	Name string

	// MaxSize is the maximum object size in bytes (0 = DefaultMaxSize).
	MaxSize int64
}

// Template returns a lazy component rendering the object at bucket/key.
func Template(client ObjectGetter, bucket, key string, opts ...lazy.Option) *lazy.Loader[component.Constructor] {
	return TemplateWithConfig(client, Config{Bucket: bucket, Key: key}, opts...)
}

// TemplateWithConfig is Template with full configuration.
func TemplateWithConfig(client ObjectGetter, cfg Config, opts ...lazy.Option) *lazy.Loader[component.Constructor] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.Name == "" {
		base := path.Base(cfg.Key)
		cfg.Name = strings.TrimSuffix(base, path.Ext(base))
	}

	opts = append([]lazy.Option{lazy.WithName("s3://" + cfg.Bucket + "/" + cfg.Key)}, opts...)
	return lazy.Component(func(ctx context.Context) (component.Constructor, error) {
		body, err := fetch(ctx, client, cfg)
		if err != nil {
			return nil, err
		}
		tmpl := Fragment(body)
		return func(map[string]string) component.Element {
			return &component.TemplateElement{Name: cfg.Name, Template: tmpl}
		}, nil
	}, opts...)
}

// fetch downloads the object, enforcing the size limit.
func fetch(ctx context.Context, client ObjectGetter, cfg Config) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(cfg.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", cfg.Bucket, cfg.Key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > cfg.MaxSize {
		return nil, fmt.Errorf("s3 object %s/%s is %d bytes, limit %d", cfg.Bucket, cfg.Key, *out.ContentLength, cfg.MaxSize)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(out.Body, cfg.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("s3 read %s/%s: %w", cfg.Bucket, cfg.Key, err)
	}
	if n > cfg.MaxSize {
		return nil, fmt.Errorf("s3 object %s/%s exceeds limit %d", cfg.Bucket, cfg.Key, cfg.MaxSize)
	}
	return buf.Bytes(), nil
}

// Fragment is a pre-rendered template.
type Fragment []byte

// Render implements component.Template.
func (f Fragment) Render(w io.Writer) error {
	_, err := w.Write(f)
	return err
}
