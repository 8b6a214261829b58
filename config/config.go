package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	gqlgenconfig "github.com/99designs/gqlgen/codegen/config"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/Yamashou/gqlhint/introspection"
)

const sourceHelp = "Use schema to load SDL files, introspection to load a payload file, endpoint to load from a remote server"

// DefaultFilenames are searched by FindConfigFile when no config is given.
var DefaultFilenames = []string{".gqlhint.yml", "gqlhint.yml", ".gqlhint.yaml", "gqlhint.yaml"}

var errConfigNotFound = errors.New("unable to find config")

// Config represents the config file.
type Config struct {
	Schema        gqlgenconfig.StringList `yaml:"schema,omitempty"`
	Introspection string                  `yaml:"introspection,omitempty"`
	Endpoint      *EndPointConfig         `yaml:"endpoint,omitempty"`
	Query         gqlgenconfig.StringList `yaml:"query"`
	Debug         bool                    `yaml:"debug,omitempty"`

	// Sources and QuerySources hold the contents of the files Schema and Query matched.
	Sources                 []*ast.Source        `yaml:"-"`
	QuerySources            []*ast.Source        `yaml:"-"`
	GraphQLSchema           *ast.Schema          `yaml:"-"`
	OperationQueryDocuments []*ast.QueryDocument `yaml:"-"`
}

// EndPointConfig are the allowed options for the 'endpoint' config.
type EndPointConfig struct {
	Headers http.Header  `yaml:"headers,omitempty"`
	URL     string       `yaml:"url"`
	Client  *http.Client `yaml:"-"`
}

// LoadConfig loads and parses the config file. Relative paths are resolved against the
// directory of the file.
func LoadConfig(configFilename string) (*Config, error) {
	configContent, err := os.ReadFile(configFilename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var c Config

	yamlDecoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(configContent)))), yaml.DisallowUnknownField())
	if err := yamlDecoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	if err := c.check(); err != nil {
		return nil, err
	}

	dir := filepath.Dir(configFilename)

	if len(c.Schema) > 0 {
		schemaFilenames, sources, err := expandFiles(dir, c.Schema)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		if len(schemaFilenames) == 0 {
			return nil, fmt.Errorf("no schema files match %v", []string(c.Schema))
		}
		c.Schema = schemaFilenames
		c.Sources = sources
	}

	if c.Introspection != "" && !filepath.IsAbs(c.Introspection) {
		c.Introspection = filepath.Join(dir, c.Introspection)
	}

	queryFilenames, querySources, err := expandFiles(dir, c.Query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	c.Query = queryFilenames
	c.QuerySources = querySources

	return &c, nil
}

func (c *Config) check() error {
	sources := 0
	if len(c.Schema) > 0 {
		sources++
	}
	if c.Introspection != "" {
		sources++
	}
	if c.Endpoint != nil {
		sources++
	}

	switch {
	case sources == 0:
		return errors.New("none of 'schema', 'introspection' and 'endpoint' specified. " + sourceHelp)
	case sources > 1:
		return errors.New("only one of 'schema', 'introspection' and 'endpoint' may be specified. " + sourceHelp)
	}

	if c.Endpoint != nil && c.Endpoint.URL == "" {
		return errors.New("endpoint: url is required")
	}

	if len(c.Query) == 0 {
		return errors.New("'query' is required")
	}

	return nil
}

// FindConfigFile searches dir and its parents for the first of names.
func FindConfigFile(dir string, names []string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", dir, err)
	}

	for {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: none of %s", errConfigNotFound, strings.Join(names, ", "))
		}
		dir = parent
	}
}

// LoadSchema loads GraphQLSchema from the configured source.
func (c *Config) LoadSchema(ctx context.Context) error {
	switch {
	case len(c.Schema) > 0:
		schema, err := gqlparser.LoadSchema(c.Sources...)
		if err != nil {
			return fmt.Errorf("load local schema failed: %w", err)
		}
		c.GraphQLSchema = schema
	case c.Introspection != "":
		data, err := os.ReadFile(c.Introspection)
		if err != nil {
			return fmt.Errorf("unable to open introspection: %w", err)
		}
		schema, err := introspection.LoadSchema(c.Introspection, data)
		if err != nil {
			return fmt.Errorf("load introspection failed: %w", err)
		}
		c.GraphQLSchema = schema
	case c.Endpoint != nil:
		httpClient := c.Endpoint.Client
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		schema, err := introspectionSchema(ctx, httpClient, c.Endpoint.URL, c.Endpoint.Headers)
		if err != nil {
			return fmt.Errorf("introspect schema failed: %w", err)
		}
		c.GraphQLSchema = schema
	default:
		return errors.New("none of 'schema', 'introspection' and 'endpoint' specified. " + sourceHelp)
	}

	return nil
}

// expandFiles expands patterns relative to dir the way gqlgen expands its schema option, "**"
// included, and reads every matched file.
func expandFiles(dir string, patterns []string) (gqlgenconfig.StringList, []*ast.Source, error) {
	cfg := gqlgenconfig.DefaultConfig()
	cfg.SchemaFilename = make(gqlgenconfig.StringList, 0, len(patterns))
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}
		cfg.SchemaFilename = append(cfg.SchemaFilename, pattern)
	}

	if err := gqlgenconfig.CompleteConfig(cfg); err != nil {
		return nil, nil, err
	}

	return cfg.SchemaFilename, cfg.Sources, nil
}
