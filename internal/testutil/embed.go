package testutil

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/KimNorgaard/go-yamlcompose/internal/fixture"
)

// TestdataFS holds the embedded token-stream fixtures.
//
//go:embed testdata
var TestdataFS embed.FS

// ReadTestData reads and returns the content of an embedded test file.
func ReadTestData(name string) ([]byte, error) {
	p := fmt.Sprintf("testdata/%s", name)
	data, err := fs.ReadFile(TestdataFS, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read test data file '%s': %w", name, err)
	}
	return data, nil
}

// Fixtures returns the names of all embedded fixture files.
func Fixtures() ([]string, error) {
	matches, err := fs.Glob(TestdataFS, "testdata/*.yaml")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = path.Base(m)
	}
	return names, nil
}

// LoadFixture reads and decodes an embedded fixture file.
func LoadFixture(name string) (*fixture.File, error) {
	data, err := ReadTestData(name)
	if err != nil {
		return nil, err
	}
	f, err := fixture.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fixture '%s': %w", name, err)
	}
	return f, nil
}
