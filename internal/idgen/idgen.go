// Package idgen derives sequential per-country scholarship identifiers of
// the form <COUNTRY_CODE>-<NN> (NL-01, NL-02, ...). The numeric suffix is
// monotonically increasing per country and never reused after deletion.
package idgen

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownCountry = errors.New("unknown country name")

	// ErrExhaustedRetries is returned by GenerateUnique when every attempt
	// lost the race against a concurrent creator.
	ErrExhaustedRetries = errors.New("id generation retries exhausted")
)

//go:embed countries.yaml
var countriesYAML embed.FS

type countryEntry struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type countryTable struct {
	Countries []countryEntry `yaml:"countries"`
}

var codeByName = func() map[string]string {
	data, err := countriesYAML.ReadFile("countries.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded country table unreadable: %v", err))
	}

	var table countryTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		panic(fmt.Sprintf("embedded country table malformed: %v", err))
	}

	m := make(map[string]string, len(table.Countries))
	for _, c := range table.Countries {
		m[strings.ToLower(c.Name)] = c.Code
	}
	return m
}()

// CountryCode resolves a country name from the fixed table.
func CountryCode(name string) (string, error) {
	code, ok := codeByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, name)
	}
	return code, nil
}

// SequenceStore supplies the current maximum identifier for a country
// prefix. An empty string means no record exists for that prefix yet.
type SequenceStore interface {
	MaxIDForPrefix(ctx context.Context, prefix string) (string, error)
}

type Generator struct {
	store SequenceStore
}

func NewGenerator(store SequenceStore) *Generator {
	return &Generator{store: store}
}

// Generate computes the next identifier for countryName. It is a pure
// read-then-compute: nothing is reserved, so the caller must be prepared
// for a duplicate-key conflict if another operator creates concurrently.
func (g *Generator) Generate(ctx context.Context, countryName string) (string, error) {
	code, err := CountryCode(countryName)
	if err != nil {
		return "", err
	}

	lastID, err := g.store.MaxIDForPrefix(ctx, code+"-")
	if err != nil {
		return "", fmt.Errorf("reading current max id: %w", err)
	}

	next := 1
	if lastID != "" {
		suffix := lastID[strings.Index(lastID, "-")+1:]
		n, err := strconv.Atoi(suffix)
		if err != nil {
			return "", fmt.Errorf("malformed id %q in store: %w", lastID, err)
		}
		next = n + 1
	}

	return FormatID(code, next), nil
}

// FormatID zero-pads the suffix to at least two digits. Padding only pads
// up: suffix 123 renders as "123", never truncated.
func FormatID(code string, n int) string {
	return fmt.Sprintf("%s-%02d", code, n)
}

// GenerateUnique runs create with a freshly generated id, regenerating and
// retrying when the store reports a duplicate id. This closes the
// read-then-write race without a store-side sequence.
func (g *Generator) GenerateUnique(ctx context.Context, countryName string, isDuplicate func(error) bool, create func(id string) error) (string, error) {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := g.Generate(ctx, countryName)
		if err != nil {
			return "", err
		}

		err = create(id)
		if err == nil {
			return id, nil
		}
		if !isDuplicate(err) {
			return "", err
		}
	}

	return "", ErrExhaustedRetries
}
