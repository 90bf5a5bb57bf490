package grammar

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dhamidi/pgen/token"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"
)

var log = commonlog.GetLogger("pgen.grammar")

type tablesFile struct {
	SyntaxTypes []string       `yaml:"syntax_types"`
	Reserved    []reservedYAML `yaml:"reserved"`
	Rules       []ruleYAML     `yaml:"rules"`
}

type reservedYAML struct {
	Value string `yaml:"value"`
	Soft  bool   `yaml:"soft"`
}

type ruleYAML struct {
	Name   string      `yaml:"name"`
	States []stateYAML `yaml:"states"`
}

type stateYAML struct {
	Final bool      `yaml:"final"`
	Arcs  []arcYAML `yaml:"arcs"`
}

type arcYAML struct {
	Type     string   `yaml:"type"`
	Reserved *string  `yaml:"reserved"`
	Next     int      `yaml:"next"`
	Push     []string `yaml:"push"`
}

// Load reads YAML tables from path.
func Load(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tables: %w", err)
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load tables %q: %w", path, err)
	}
	return g, nil
}

// Decode reads YAML tables. Arc order in the document is the arc
// registration order. Pushed states are written as "rule:index".
func Decode(r io.Reader) (*Grammar, error) {
	var doc tablesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}

	b := NewBuilder()
	for _, t := range doc.SyntaxTypes {
		b.SyntaxTypes(token.Type(t))
	}
	for _, rs := range doc.Reserved {
		b.Reserve(rs.Value, rs.Soft)
	}

	for _, rule := range doc.Rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("rule without name")
		}
		if b.Lookup(rule.Name, 0) != nil {
			return nil, fmt.Errorf("rule %q defined twice", rule.Name)
		}
		for _, st := range rule.States {
			b.State(rule.Name, st.Final)
		}
	}

	for _, rule := range doc.Rules {
		for i, st := range rule.States {
			from := b.Lookup(rule.Name, i)
			for j, arc := range st.Arcs {
				key, err := arc.key()
				if err != nil {
					return nil, fmt.Errorf("%s arc #%d: %w", from, j, err)
				}
				next := b.Lookup(rule.Name, arc.Next)
				if next == nil {
					return nil, fmt.Errorf("%s arc #%d: next state %d out of range", from, j, arc.Next)
				}
				pushes := make([]*DFAState, 0, len(arc.Push))
				for _, ref := range arc.Push {
					p, err := resolveRef(b, ref)
					if err != nil {
						return nil, fmt.Errorf("%s arc #%d: %w", from, j, err)
					}
					pushes = append(pushes, p)
				}
				b.Arc(from, key, next, pushes...)
			}
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	log.Debugf("decoded %d rules, %d reserved strings", len(g.Rules()), len(doc.Reserved))
	return g, nil
}

func (a arcYAML) key() (Key, error) {
	switch {
	case a.Reserved != nil && a.Type != "":
		return Key{}, fmt.Errorf("arc sets both type %q and reserved %q", a.Type, *a.Reserved)
	case a.Reserved != nil:
		return ReservedKey(*a.Reserved), nil
	case a.Type != "":
		return TypeKey(token.Type(a.Type)), nil
	}
	return Key{}, fmt.Errorf("arc without type or reserved string")
}

func resolveRef(b *Builder, ref string) (*DFAState, error) {
	i := strings.LastIndexByte(ref, ':')
	if i <= 0 {
		return nil, fmt.Errorf("invalid state reference %q (want rule:index)", ref)
	}
	index, err := strconv.Atoi(ref[i+1:])
	if err != nil {
		return nil, fmt.Errorf("invalid state reference %q: %w", ref, err)
	}
	s := b.Lookup(ref[:i], index)
	if s == nil {
		return nil, fmt.Errorf("unknown state %q", ref)
	}
	return s, nil
}
