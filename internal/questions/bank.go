// Package questions loads the Domain → Tier → questions catalog.
//
// The bank file is JSON, but it is decoded through yaml.v3 nodes: YAML is a
// superset of JSON and its node tree keeps mapping keys in file order, which
// is the order domains and tiers are offered in.
package questions

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"taicc-readiness/internal/model"
)

var (
	ErrEmptyBank     = errors.New("question bank is empty")
	ErrNoTiers       = errors.New("first domain has no tiers")
	ErrUnknownDomain = errors.New("unknown domain")
	ErrUnknownTier   = errors.New("unknown tier")
)

type tier struct {
	name      string
	questions []string
}

type domain struct {
	name  string
	tiers []tier
}

// Bank is read-only after Load.
type Bank struct {
	domains []domain
}

// LoadFile reads and validates the bank at path.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("question bank %s: %w", path, err)
	}
	bank, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("question bank %s: %w", path, err)
	}
	return bank, nil
}

// Parse decodes and validates a bank document.
func Parse(data []byte) (*Bank, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed question bank: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, ErrEmptyBank
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("malformed question bank: top level must be an object of domains")
	}
	if len(root.Content) == 0 {
		return nil, ErrEmptyBank
	}

	bank := &Bank{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		tiersNode := root.Content[i+1]
		if tiersNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("malformed question bank: domain %q must be an object of tiers", name)
		}
		d := domain{name: name}
		for j := 0; j+1 < len(tiersNode.Content); j += 2 {
			tierName := tiersNode.Content[j].Value
			var qs []string
			if err := tiersNode.Content[j+1].Decode(&qs); err != nil {
				return nil, fmt.Errorf("malformed question bank: %s/%s must be a list of strings: %w", name, tierName, err)
			}
			d.tiers = append(d.tiers, tier{name: tierName, questions: qs})
		}
		bank.domains = append(bank.domains, d)
	}

	if err := bank.validate(); err != nil {
		return nil, err
	}
	return bank, nil
}

func (b *Bank) validate() error {
	if len(b.domains) == 0 {
		return ErrEmptyBank
	}
	first := b.domains[0]
	if len(first.tiers) == 0 {
		return ErrNoTiers
	}
	for _, d := range b.domains {
		if len(d.tiers) != len(first.tiers) {
			return fmt.Errorf("domain %q has %d tiers, expected %d", d.name, len(d.tiers), len(first.tiers))
		}
		for i, t := range d.tiers {
			if t.name != first.tiers[i].name {
				return fmt.Errorf("domain %q tier %d is %q, expected %q", d.name, i, t.name, first.tiers[i].name)
			}
			if len(t.questions) == 0 {
				return fmt.Errorf("domain %q tier %q has no questions", d.name, t.name)
			}
		}
	}
	return nil
}

// Domains lists domains in file order.
func (b *Bank) Domains() []string {
	out := make([]string, len(b.domains))
	for i, d := range b.domains {
		out[i] = d.name
	}
	return out
}

// Tiers lists the tier keys shared by every domain, in file order.
func (b *Bank) Tiers() []string {
	first := b.domains[0]
	out := make([]string, len(first.tiers))
	for i, t := range first.tiers {
		out[i] = t.name
	}
	return out
}

// Questions returns the ordered questions of domain/tier with their ids.
func (b *Bank) Questions(domainName, tierName string) ([]model.Question, error) {
	for _, d := range b.domains {
		if d.name != domainName {
			continue
		}
		for _, t := range d.tiers {
			if t.name != tierName {
				continue
			}
			out := make([]model.Question, len(t.questions))
			for i, q := range t.questions {
				out[i] = model.Question{ID: model.QuestionID(i, q), Index: i, Text: q}
			}
			return out, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tierName)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domainName)
}

// Has reports whether domain/tier exists.
func (b *Bank) Has(domainName, tierName string) bool {
	_, err := b.Questions(domainName, tierName)
	return err == nil
}
