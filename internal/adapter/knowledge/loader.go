// Package knowledge loads the portfolio knowledge base from YAML and serves
// immutable snapshots of it to the assistant.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"folio-assistant/internal/domain"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in knowledge base.
func Default() (*domain.KnowledgeBase, error) {
	return Parse(defaultYAML)
}

// LoadFile reads and validates a knowledge base from a YAML file.
func LoadFile(path string) (*domain.KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDomainError("Knowledge.LoadFile", domain.ErrKnowledgeLoad, err.Error())
	}
	kb, err := Parse(data)
	if err != nil {
		return nil, domain.WrapOp(path, err)
	}
	return kb, nil
}

// Parse decodes YAML into a knowledge base and validates it.
func Parse(data []byte) (*domain.KnowledgeBase, error) {
	var kb domain.KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, domain.NewDomainError("Knowledge.Parse", domain.ErrKnowledgeLoad, err.Error())
	}
	if err := Validate(&kb); err != nil {
		return nil, domain.NewDomainError("Knowledge.Parse", domain.ErrKnowledgeLoad, err.Error())
	}
	return &kb, nil
}

// Validate checks the fields the assistant relies on. All problems are
// reported together.
func Validate(kb *domain.KnowledgeBase) error {
	var errs []error
	if strings.TrimSpace(kb.Site.Author) == "" && strings.TrimSpace(kb.Site.Title) == "" {
		errs = append(errs, errors.New("site: author or title is required"))
	}
	if strings.HasSuffix(kb.Site.SiteURL, "/") {
		errs = append(errs, fmt.Errorf("site.site_url: must not end with '/' (got %q)", kb.Site.SiteURL))
	}
	if kb.Site.ResumeFile == "" {
		errs = append(errs, errors.New("site.resume_file: required"))
	}
	for i, p := range kb.Projects {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("projects[%d].name: required", i))
		}
		if strings.TrimSpace(p.Category) == "" {
			errs = append(errs, fmt.Errorf("projects[%d].category: required", i))
		}
	}
	for i, g := range kb.Skills {
		if strings.TrimSpace(g.Section) == "" {
			errs = append(errs, fmt.Errorf("skills[%d].section: required", i))
		}
	}
	for i, e := range kb.Experience {
		if strings.TrimSpace(e.Title) == "" {
			errs = append(errs, fmt.Errorf("experience[%d].title: required", i))
		}
	}
	return errors.Join(errs...)
}
