package sites

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule kinds accepted in a sites file.
const (
	KindSelector     = "selector"
	KindPlaceholder  = "placeholder"
	KindParentAttr   = "parent_attr"
	KindHeadingAttr  = "heading_attr"
	KindPrefixedAttr = "prefixed_attr"
	KindNone         = "none"
	KindFixed        = "fixed"
	KindPaired       = "paired"
)

type sitesFile struct {
	Sites []siteEntry `json:"sites" yaml:"sites"`
}

type siteEntry struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	ListingURL string            `json:"listing_url" yaml:"listing_url"`
	Container  string            `json:"container" yaml:"container"`
	Posts      PostSelector      `json:"posts" yaml:"posts"`
	Heading    string            `json:"heading" yaml:"heading"`
	Descr      ruleSpec          `json:"descr" yaml:"descr"`
	Link       ruleSpec          `json:"link" yaml:"link"`
	Tags       ruleSpec          `json:"tags" yaml:"tags"`
	Trim       string            `json:"trim" yaml:"trim"`
	Headers    map[string]string `json:"headers" yaml:"headers"`
}

// ruleSpec is the serialized form of any field derivation rule; Kind picks
// the strategy and the remaining fields are read as that strategy needs.
type ruleSpec struct {
	Kind      string       `json:"kind" yaml:"kind"`
	Selector  string       `json:"selector" yaml:"selector"`
	Text      string       `json:"text" yaml:"text"`
	Attr      string       `json:"attr" yaml:"attr"`
	Base      string       `json:"base" yaml:"base"`
	Label     string       `json:"label" yaml:"label"`
	Container string       `json:"container" yaml:"container"`
	Item      PostSelector `json:"item" yaml:"item"`
	Prefixes  []string     `json:"prefixes" yaml:"prefixes"`
}

// LoadRegistry reads a YAML or JSON sites file and builds a registry from it.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sites file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sites file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}

	parsed, err := parseSitesFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Sites) == 0 {
		return nil, errors.New("sites file contains no sites entries")
	}

	profiles := make([]Profile, 0, len(parsed.Sites))
	for i, entry := range parsed.Sites {
		p, err := entry.compile()
		if err != nil {
			return nil, fmt.Errorf("sites[%d]: %w", i, err)
		}
		profiles = append(profiles, p)
	}
	return NewRegistry(profiles...)
}

type unmarshalFn func([]byte, any) error

func parseSitesFile(data []byte, ext string) (sitesFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out sitesFile
		if err := d.fn(data, &out); err != nil {
			errs = append(errs, fmt.Errorf("decode %s sites: %w", d.name, err))
			continue
		}
		return out, nil
	}
	if len(errs) == 0 {
		return sitesFile{}, fmt.Errorf("sites file extension %q not recognized (expected YAML or JSON)", ext)
	}
	return sitesFile{}, errors.Join(errs...)
}

func (e siteEntry) compile() (Profile, error) {
	descr, err := e.Descr.descrRule()
	if err != nil {
		return Profile{}, fmt.Errorf("site %q descr: %w", e.ID, err)
	}
	link, err := e.Link.linkRule()
	if err != nil {
		return Profile{}, fmt.Errorf("site %q link: %w", e.ID, err)
	}
	tags, err := e.Tags.tagsRule()
	if err != nil {
		return Profile{}, fmt.Errorf("site %q tags: %w", e.ID, err)
	}
	trim := TrimRule(strings.ToLower(strings.TrimSpace(e.Trim)))

	return Profile{
		ID:         e.ID,
		Name:       e.Name,
		ListingURL: e.ListingURL,
		Container:  e.Container,
		Posts:      e.Posts,
		Heading:    e.Heading,
		Descr:      descr,
		Link:       link,
		Tags:       tags,
		Trim:       trim,
		Headers:    e.Headers,
	}, nil
}

func (s ruleSpec) kind() string {
	return strings.ToLower(strings.TrimSpace(s.Kind))
}

func (s ruleSpec) descrRule() (DescrRule, error) {
	switch s.kind() {
	case KindSelector:
		if strings.TrimSpace(s.Selector) == "" {
			return nil, errors.New("selector is required")
		}
		if err := compileSelector(s.Selector); err != nil {
			return nil, err
		}
		return SelectorText{Selector: s.Selector}, nil
	case KindPlaceholder:
		return Placeholder{Text: s.Text}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", s.Kind)
	}
}

func (s ruleSpec) linkRule() (LinkRule, error) {
	switch s.kind() {
	case KindParentAttr:
		return ParentAttr{Attr: s.Attr}, nil
	case KindHeadingAttr:
		return HeadingAttr{Attr: s.Attr}, nil
	case KindPrefixedAttr:
		if strings.TrimSpace(s.Base) == "" {
			return nil, errors.New("base is required")
		}
		if err := validateBase(s.Base); err != nil {
			return nil, err
		}
		return PrefixedAttr{Base: strings.TrimSpace(s.Base), Attr: s.Attr}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", s.Kind)
	}
}

func (s ruleSpec) tagsRule() (TagsRule, error) {
	switch s.kind() {
	case "", KindNone:
		return NoTags{}, nil
	case KindFixed:
		if strings.TrimSpace(s.Label) == "" {
			return nil, errors.New("label is required")
		}
		return FixedTag{Label: s.Label}, nil
	case KindSelector:
		if strings.TrimSpace(s.Selector) == "" {
			return nil, errors.New("selector is required")
		}
		if err := compileSelector(s.Selector); err != nil {
			return nil, err
		}
		return SelectorTags{Selector: s.Selector}, nil
	case KindPaired:
		if strings.TrimSpace(s.Container) == "" || s.Item.empty() {
			return nil, errors.New("container and item are required")
		}
		if len(s.Prefixes) != 2 {
			return nil, fmt.Errorf("exactly 2 prefixes required, got %d", len(s.Prefixes))
		}
		return PairedMeta{
			Container: s.Container,
			Item:      s.Item,
			Prefixes:  [2]string{s.Prefixes[0], s.Prefixes[1]},
		}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", s.Kind)
	}
}
