// Package sites holds the declarative extraction profiles for every supported listing page.
package sites

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
)

// TrimRule names a positional adjustment applied to the collected post elements.
type TrimRule string

const (
	// TrimNone keeps every collected post.
	TrimNone TrimRule = "none"
	// TrimTrailingItem drops the last collected post; some listings append a
	// non-article element (e.g. a "more news" link) to the list.
	TrimTrailingItem TrimRule = "trailing_item"
)

// PostSelector identifies repeating post elements by tag and attribute value.
type PostSelector struct {
	Tag   string `json:"tag" yaml:"tag"`
	Attr  string `json:"attr" yaml:"attr"`
	Value string `json:"value" yaml:"value"`
}

// CSS renders the selector. The class attribute is matched as one token of a
// whitespace-separated list, any other attribute by exact value.
func (p PostSelector) CSS() string {
	tag := strings.TrimSpace(p.Tag)
	attr := strings.TrimSpace(p.Attr)
	if attr == "" {
		return tag
	}
	op := "="
	if strings.EqualFold(attr, "class") {
		op = "~="
	}
	return fmt.Sprintf(`%s[%s%s%q]`, tag, attr, op, p.Value)
}

func (p PostSelector) empty() bool {
	return strings.TrimSpace(p.Tag) == "" && strings.TrimSpace(p.Attr) == ""
}

// Profile is the structural extraction rule set for one site.
type Profile struct {
	ID         string
	Name       string
	ListingURL string
	Container  string
	Posts      PostSelector
	Heading    string
	Descr      DescrRule
	Link       LinkRule
	Tags       TagsRule
	Trim       TrimRule
	Headers    map[string]string
}

// clone returns a copy that shares no mutable state with p.
func (p Profile) clone() Profile {
	if p.Headers != nil {
		p.Headers = maps.Clone(p.Headers)
	}
	return p
}

func sanitizeProfile(p Profile) Profile {
	p.ID = normalizeID(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.ListingURL = strings.TrimSpace(p.ListingURL)
	p.Container = strings.TrimSpace(p.Container)
	p.Heading = strings.TrimSpace(p.Heading)
	if p.Trim == "" {
		p.Trim = TrimNone
	}
	return p
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required for site %q", p.ID)
	}
	if p.ListingURL == "" {
		return fmt.Errorf("listing_url is required for site %q", p.ID)
	}
	u, err := url.Parse(p.ListingURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("listing_url %q is not an absolute url for site %q", p.ListingURL, p.ID)
	}
	if p.Container == "" {
		return fmt.Errorf("container is required for site %q", p.ID)
	}
	if p.Posts.empty() {
		return fmt.Errorf("posts selector is required for site %q", p.ID)
	}
	if p.Heading == "" {
		return fmt.Errorf("heading is required for site %q", p.ID)
	}
	if p.Descr == nil {
		return fmt.Errorf("descr rule is required for site %q", p.ID)
	}
	if p.Link == nil {
		return fmt.Errorf("link rule is required for site %q", p.ID)
	}
	if p.Tags == nil {
		return fmt.Errorf("tags rule is required for site %q", p.ID)
	}
	checks := []struct {
		field    string
		selector string
	}{
		{"container", p.Container},
		{"posts", p.Posts.CSS()},
		{"heading", p.Heading},
	}
	for _, c := range checks {
		if err := compileSelector(c.selector); err != nil {
			return fmt.Errorf("%s of site %q: %w", c.field, p.ID, err)
		}
	}
	if err := validateRule(p.Descr); err != nil {
		return fmt.Errorf("descr rule of site %q: %w", p.ID, err)
	}
	if err := validateRule(p.Link); err != nil {
		return fmt.Errorf("link rule of site %q: %w", p.ID, err)
	}
	if err := validateRule(p.Tags); err != nil {
		return fmt.Errorf("tags rule of site %q: %w", p.ID, err)
	}
	switch p.Trim {
	case TrimNone, TrimTrailingItem:
	default:
		return fmt.Errorf("unknown trim rule %q for site %q", p.Trim, p.ID)
	}
	return nil
}

// compileSelector rejects CSS that goquery would otherwise treat as matching nothing.
func compileSelector(sel string) error {
	if strings.TrimSpace(sel) == "" {
		return errors.New("selector is empty")
	}
	if _, err := cascadia.Compile(sel); err != nil {
		return fmt.Errorf("invalid selector %q: %w", sel, err)
	}
	return nil
}

func validateRule(rule any) error {
	switch r := rule.(type) {
	case SelectorText:
		return compileSelector(r.Selector)
	case SelectorTags:
		return compileSelector(r.Selector)
	case PairedMeta:
		if err := compileSelector(r.Container); err != nil {
			return err
		}
		return compileSelector(r.Item.CSS())
	case PrefixedAttr:
		return validateBase(r.Base)
	}
	return nil
}

// validateBase requires an absolute base ending in "/" so relative hrefs keep every base path segment.
func validateBase(base string) error {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base %q is not an absolute url", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		return fmt.Errorf("base %q must end with \"/\"", base)
	}
	return nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
