package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
categories:
  - id: 1
    name: Roti
  - id: 2
    name: Kue
items:
  - id: A
    categoryId: 1
    name: Roti Susu
    description: Roti lembut isi susu
    price: 15000
    imageRef: roti-susu.png
    rating: 4.5
  - id: B
    categoryId: 2
    name: Bolu Pandan
    price: 30000
`

func writeSeed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	var data []byte
	if strings.HasSuffix(name, ".gz") {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, err := gz.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		data = buf.Bytes()
	} else {
		data = []byte(content)
	}

	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(seedYAML), "seed.yaml")
	require.NoError(t, err)

	require.Len(t, c.Categories, 2)
	require.Len(t, c.Items, 2)
	assert.Equal(t, model.MenuItem{
		ID: "A", CategoryID: 1, Name: "Roti Susu", Description: "Roti lembut isi susu",
		Price: 15000, ImageRef: "roti-susu.png", Rating: 4.5,
	}, c.Items[0])
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		errorMsg string
	}{
		{name: "Unknown field", content: "categories: []\nproducts: []\n", errorMsg: "failed to decode"},
		{name: "Unknown category", content: "categories: [{id: 1, name: Roti}]\nitems: [{id: A, categoryId: 9, name: X, price: 1}]\n", errorMsg: "unknown category 9"},
		{name: "Negative price", content: "categories: [{id: 1, name: Roti}]\nitems: [{id: A, categoryId: 1, name: X, price: -5}]\n", errorMsg: "negative price"},
		{name: "Duplicate item", content: "categories: [{id: 1, name: Roti}]\nitems: [{id: A, categoryId: 1, name: X}, {id: A, categoryId: 1, name: Y}]\n", errorMsg: "duplicate id"},
		{name: "Nameless category", content: "categories: [{id: 1}]\n", errorMsg: "id and name are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.content), "seed.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	c, err := Decode(strings.NewReader(""), "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestFileLoader_Load(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	ctx := context.Background()

	for _, name := range []string{"seed.yaml", "seed.yaml.gz"} {
		t.Run(name, func(t *testing.T) {
			c, err := loader.Load(ctx, writeSeed(t, name, seedYAML))
			require.NoError(t, err)
			assert.Len(t, c.Items, 2)
		})
	}

	_, err := loader.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open catalog file")

	_, err = loader.Load(ctx, writeSeed(t, "plain.gz", "not gzip"))
	assert.Error(t, err)
}

func TestMerge_LaterWins(t *testing.T) {
	a := &model.Catalog{
		Categories: []model.Category{{ID: 1, Name: "Roti"}},
		Items:      []model.MenuItem{{ID: "A", CategoryID: 1, Name: "Roti Susu", Price: 15000}},
	}
	b := &model.Catalog{
		Categories: []model.Category{{ID: 1, Name: "Roti & Pastry"}, {ID: 2, Name: "Kue"}},
		Items:      []model.MenuItem{{ID: "A", CategoryID: 1, Name: "Roti Susu", Price: 16000}, {ID: "B", CategoryID: 2, Name: "Bolu", Price: 30000}},
	}

	merged := Merge(a, nil, b)

	require.Len(t, merged.Categories, 2)
	assert.Equal(t, "Roti & Pastry", merged.Categories[0].Name)
	require.Len(t, merged.Items, 2)
	assert.Equal(t, int64(16000), merged.Items[0].Price)
}

// mockLoader is a function-backed Loader.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) (*model.Catalog, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) (*model.Catalog, error) {
	return m.loadFunc(ctx, path)
}

func TestLoadAll(t *testing.T) {
	loader := &mockLoader{loadFunc: func(_ context.Context, path string) (*model.Catalog, error) {
		switch path {
		case "base.yaml":
			return &model.Catalog{
				Categories: []model.Category{{ID: 1, Name: "Roti"}},
				Items:      []model.MenuItem{{ID: "A", CategoryID: 1, Name: "Roti Susu", Price: 15000}},
			}, nil
		case "promo.yaml":
			return &model.Catalog{
				Items: []model.MenuItem{{ID: "A", CategoryID: 1, Name: "Roti Susu", Price: 12000}},
			}, nil
		}
		return nil, errors.New("not found")
	}}

	merged, err := LoadAll(context.Background(), loader, []string{"base.yaml", "promo.yaml"})
	require.NoError(t, err)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, int64(12000), merged.Items[0].Price)

	_, err = LoadAll(context.Background(), loader, []string{"base.yaml", "missing.yaml"})
	assert.ErrorContains(t, err, "missing.yaml")

	_, err = LoadAll(context.Background(), loader, []string{"promo.yaml"})
	assert.ErrorContains(t, err, "unknown category")
}

func TestFallbackLoader(t *testing.T) {
	local := &model.Catalog{Items: []model.MenuItem{{ID: "local"}}}
	remote := &model.Catalog{Items: []model.MenuItem{{ID: "remote"}}}

	tests := []struct {
		name      string
		s3Enabled bool
		s3Err     error
		expected  string
	}{
		{name: "S3 success", s3Enabled: true, expected: "remote"},
		{name: "S3 failure falls back", s3Enabled: true, s3Err: errors.New("denied"), expected: "local"},
		{name: "S3 disabled", s3Enabled: false, expected: "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remoteLoader := &mockLoader{loadFunc: func(_ context.Context, path string) (*model.Catalog, error) {
				assert.Equal(t, "catalog/seed.yaml", path)
				if tt.s3Err != nil {
					return nil, tt.s3Err
				}
				return remote, nil
			}}
			file := &mockLoader{loadFunc: func(_ context.Context, path string) (*model.Catalog, error) {
				assert.Equal(t, "seed.yaml", path)
				return local, nil
			}}

			c, err := NewFallbackLoader(remoteLoader, file, "catalog/", tt.s3Enabled, zerolog.Nop()).Load(context.Background(), "seed.yaml")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.Items[0].ID)
		})
	}
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Loader_Load(t *testing.T) {
	var gzipped bytes.Buffer
	gz := gzip.NewWriter(&gzipped)
	_, err := gz.Write([]byte(seedYAML))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	client := &fakeS3{objects: map[string][]byte{
		"menu-bucket/catalog/seed.yaml":    []byte(seedYAML),
		"menu-bucket/catalog/seed.yaml.gz": gzipped.Bytes(),
	}}
	loader := NewS3LoaderWithClient(client, "menu-bucket", zerolog.Nop())

	for _, key := range []string{"catalog/seed.yaml", "catalog/seed.yaml.gz"} {
		c, err := loader.Load(context.Background(), key)
		require.NoError(t, err, key)
		assert.Len(t, c.Items, 2)
	}

	_, err = loader.Load(context.Background(), "catalog/absent.yaml")
	assert.ErrorContains(t, err, "bucket=menu-bucket")
}
