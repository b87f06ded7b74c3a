// Package config holds the project configuration for one generation run.
//
// A project is described by dispatchgen.yaml:
//
//	grammar: grammar.llx        # grammar description file
//	interface: ParserInterface  # dispatch interface each marker satisfies
//	parser: CalcParser          # generated parser wrapper type name
//	package: calc               # package name of the generated unit
//	output: calc_parser.go      # output file, relative to the config file
//	cache: true                 # consult the generation cache
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/varlund/dispatchgen/internal/token"
)

// Project is the parsed dispatchgen.yaml.
type Project struct {
	// Grammar is the path to the grammar description file.
	Grammar string `yaml:"grammar"`

	// Interface is the name of the dispatch interface every marker type
	// must satisfy. Taken literally; never resolved by the generator.
	Interface string `yaml:"interface"`

	// Parser is the type name of the generated parser wrapper.
	Parser string `yaml:"parser"`

	// Package is the package name of the generated unit.
	Package string `yaml:"package"`

	// Output is the generated file path. Defaults to the grammar file
	// name with a _parser.go suffix.
	Output string `yaml:"output,omitempty"`

	// Cache enables the generation cache. Defaults to true.
	Cache *bool `yaml:"cache,omitempty"`

	// Dir is the directory containing the config file; relative paths
	// resolve against it. Not part of the yaml surface.
	Dir string `yaml:"-"`
}

// Load reads and validates a dispatchgen.yaml.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	p.Dir = filepath.Dir(path)
	p.ApplyDefaults()

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// ApplyDefaults fills derivable fields.
func (p *Project) ApplyDefaults() {
	if p.Output == "" && p.Grammar != "" {
		base := strings.TrimSuffix(p.Grammar, filepath.Ext(p.Grammar))
		p.Output = base + "_parser.go"
	}
	if p.Cache == nil {
		on := true
		p.Cache = &on
	}
}

// Validate checks the configuration for the errors a run could not recover
// from. Identifier checks are syntactic only: whether the interface name
// resolves is left to the compiler of the generated unit.
func (p *Project) Validate() error {
	if p.Grammar == "" {
		return fmt.Errorf("grammar is required")
	}
	if p.Interface == "" {
		return fmt.Errorf("interface is required")
	}
	if !IsIdentifier(p.Interface) {
		return fmt.Errorf("interface %q is not a valid identifier", p.Interface)
	}
	if p.Parser == "" {
		return fmt.Errorf("parser is required")
	}
	if !IsIdentifier(p.Parser) {
		return fmt.Errorf("parser %q is not a valid identifier", p.Parser)
	}
	if p.Package == "" {
		return fmt.Errorf("package is required")
	}
	if !IsIdentifier(p.Package) || token.IsKeyword(p.Package) {
		return fmt.Errorf("package %q is not a valid package name", p.Package)
	}
	return nil
}

// GrammarPath returns the grammar path resolved against the config dir.
func (p *Project) GrammarPath() string {
	return p.resolve(p.Grammar)
}

// OutputPath returns the output path resolved against the config dir.
func (p *Project) OutputPath() string {
	return p.resolve(p.Output)
}

func (p *Project) resolve(path string) string {
	if p.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}

// CacheEnabled reports whether the generation cache should be consulted.
func (p *Project) CacheEnabled() bool {
	return p.Cache == nil || *p.Cache
}

// Fingerprint returns the configuration fields that affect the artifact,
// in a stable textual form for cache keying.
func (p *Project) Fingerprint() string {
	return strings.Join([]string{p.Interface, p.Parser, p.Package}, "\x00")
}

// IsIdentifier reports whether s is a valid Go identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
