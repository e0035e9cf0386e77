package parser

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed grammar.yaml
var defaultGrammar []byte

// grammarFile mirrors grammar.yaml.
type grammarFile struct {
	Version   int                 `yaml:"version"`
	Operators map[string][]string `yaml:"operators"`
	Postfix   map[string][]string `yaml:"postfix"`
	Functions map[string][]string `yaml:"functions"`
	Prefix    map[string][]string `yaml:"prefix"`
	Constants map[string][]string `yaml:"constants"`
}

type kind int

const (
	kindCall kind = iota
	kindPrefix
	kindOpen
	kindConstant
)

type glyph struct {
	text string
	name string
	kind kind
}

// glyphSet is kept sorted longest text first so that matching is greedy.
type glyphSet []glyph

func (gs glyphSet) match(s string) (glyph, bool) {
	for _, g := range gs {
		if strings.HasPrefix(s, g.text) {
			return g, true
		}
	}
	return glyph{}, false
}

func (gs glyphSet) sorted() glyphSet {
	slices.SortStableFunc(gs, func(a, b glyph) int {
		return len(b.text) - len(a.text)
	})
	return gs
}

var requiredOperators = []string{"plus", "minus", "multiply", "divide", "open", "close"}

var knownOperators = map[string]struct{}{
	"plus": {}, "minus": {}, "multiply": {}, "divide": {},
	"power": {}, "root": {}, "open": {}, "close": {},
}

var knownPostfix = map[string]struct{}{
	"factorial": {}, "percent": {}, "square": {}, "cube": {}, "reciprocal": {},
}

// compile validates a grammar document and builds the glyph tables.
func compile(src []byte) (*Parser, error) {
	var gf grammarFile
	if err := yaml.Unmarshal(src, &gf); err != nil {
		return nil, fmt.Errorf("decode grammar: %w", err)
	}
	if gf.Version <= 0 {
		return nil, fmt.Errorf("grammar version must be positive, got %d", gf.Version)
	}

	for _, name := range requiredOperators {
		if len(gf.Operators[name]) == 0 {
			return nil, fmt.Errorf("grammar: operator %q has no glyphs", name)
		}
	}

	p := &Parser{version: gf.Version}
	seen := make(map[string]string)

	add := func(set *glyphSet, class, name string, texts []string, k kind) error {
		for _, t := range texts {
			if t == "" {
				return fmt.Errorf("grammar: empty glyph for %s %q", class, name)
			}
			key := class + "\x00" + t
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("grammar: glyph %q bound to both %q and %q", t, prev, name)
			}
			seen[key] = name
			*set = append(*set, glyph{text: t, name: name, kind: k})
		}
		return nil
	}

	for name, texts := range gf.Operators {
		if _, ok := knownOperators[name]; !ok {
			return nil, fmt.Errorf("grammar: unknown operator %q", name)
		}
		var err error
		switch name {
		case "plus", "minus":
			err = add(&p.additive, "infix", name, texts, 0)
		case "multiply", "divide":
			err = add(&p.multiplicative, "infix", name, texts, 0)
		case "power", "root":
			err = add(&p.exponent, "infix", name, texts, 0)
		case "open":
			err = add(&p.primary, "primary", name, texts, kindOpen)
		case "close":
			err = add(&p.close, "close", name, texts, 0)
		}
		if err != nil {
			return nil, err
		}
	}

	for name, texts := range gf.Postfix {
		if _, ok := knownPostfix[name]; !ok {
			return nil, fmt.Errorf("grammar: unknown postfix operator %q", name)
		}
		if err := add(&p.postfix, "postfix", name, texts, 0); err != nil {
			return nil, err
		}
	}

	for name, texts := range gf.Functions {
		if _, ok := builtins[name]; !ok {
			return nil, fmt.Errorf("grammar: unknown function %q", name)
		}
		if err := add(&p.primary, "primary", name, texts, kindCall); err != nil {
			return nil, err
		}
	}

	for name, texts := range gf.Prefix {
		if _, ok := builtins[name]; !ok {
			return nil, fmt.Errorf("grammar: unknown prefix function %q", name)
		}
		if err := add(&p.primary, "primary", name, texts, kindPrefix); err != nil {
			return nil, err
		}
	}

	for name, texts := range gf.Constants {
		if _, ok := constants[name]; !ok {
			return nil, fmt.Errorf("grammar: unknown constant %q", name)
		}
		if err := add(&p.primary, "primary", name, texts, kindConstant); err != nil {
			return nil, err
		}
	}

	p.additive = p.additive.sorted()
	p.multiplicative = p.multiplicative.sorted()
	p.exponent = p.exponent.sorted()
	p.postfix = p.postfix.sorted()
	p.primary = p.primary.sorted()
	p.close = p.close.sorted()

	return p, nil
}
