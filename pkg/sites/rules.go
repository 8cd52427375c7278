package sites

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DescrRule derives an article description from a post element.
type DescrRule interface {
	Descr(post *goquery.Selection) (string, error)
}

// LinkRule derives an absolute article link from the post heading.
// listingURL is the page the heading came from.
type LinkRule interface {
	Link(heading *goquery.Selection, listingURL string) (string, error)
}

// TagsRule derives the ordered tag labels of a post element.
type TagsRule interface {
	Tags(post *goquery.Selection) ([]string, error)
}

// SelectorText takes the trimmed text of the first element matching Selector.
type SelectorText struct {
	Selector string
}

func (r SelectorText) Descr(post *goquery.Selection) (string, error) {
	node := post.Find(r.Selector).First()
	if node.Length() == 0 {
		return "", fmt.Errorf("no element matches %q", r.Selector)
	}
	return strings.TrimSpace(node.Text()), nil
}

// Placeholder is used for sources without an inline summary.
type Placeholder struct {
	Text string
}

func (r Placeholder) Descr(*goquery.Selection) (string, error) { return r.Text, nil }

// ParentAttr reads Attr from the heading's parent element.
type ParentAttr struct {
	Attr string
}

func (r ParentAttr) Link(heading *goquery.Selection, listingURL string) (string, error) {
	return attrLink(heading.Parent(), r.Attr, listingURL, "heading parent")
}

// HeadingAttr reads Attr from the heading element itself.
type HeadingAttr struct {
	Attr string
}

func (r HeadingAttr) Link(heading *goquery.Selection, listingURL string) (string, error) {
	return attrLink(heading, r.Attr, listingURL, "heading")
}

// PrefixedAttr reads Attr from the heading and resolves it against Base.
// Base must end in "/"; relative hrefs replace nothing after it.
type PrefixedAttr struct {
	Base string
	Attr string
}

func (r PrefixedAttr) Link(heading *goquery.Selection, _ string) (string, error) {
	return attrLink(heading, r.Attr, r.Base, "heading")
}

func attrLink(node *goquery.Selection, attr, base, where string) (string, error) {
	if attr == "" {
		attr = "href"
	}
	if node.Length() == 0 {
		return "", fmt.Errorf("%s element is missing", where)
	}
	raw, ok := node.Attr(attr)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%s has no %q attribute", where, attr)
	}
	return resolveURL(raw, base)
}

// resolveURL returns ref unchanged when absolute, otherwise ref resolved against base.
func resolveURL(ref, base string) (string, error) {
	ref = strings.TrimSpace(ref)
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", ref, err)
	}
	if refURL.IsAbs() {
		return ref, nil
	}
	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || !baseURL.IsAbs() {
		return "", fmt.Errorf("cannot resolve relative link %q against %q", ref, base)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// NoTags yields an empty tag list.
type NoTags struct{}

func (NoTags) Tags(*goquery.Selection) ([]string, error) { return []string{}, nil }

// FixedTag yields a single synthesized label.
type FixedTag struct {
	Label string
}

func (r FixedTag) Tags(*goquery.Selection) ([]string, error) { return []string{r.Label}, nil }

// SelectorTags collects the trimmed text of every element matching Selector.
type SelectorTags struct {
	Selector string
}

func (r SelectorTags) Tags(post *goquery.Selection) ([]string, error) {
	tags := []string{}
	post.Find(r.Selector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			tags = append(tags, text)
		}
	})
	return tags, nil
}

// PairedMeta relabels the first two Item elements inside Container with fixed prefixes.
type PairedMeta struct {
	Container string
	Item      PostSelector
	Prefixes  [2]string
}

func (r PairedMeta) Tags(post *goquery.Selection) ([]string, error) {
	box := post.Find(r.Container).First()
	if box.Length() == 0 {
		return nil, fmt.Errorf("no element matches %q", r.Container)
	}
	items := box.Find(r.Item.CSS())
	if items.Length() < 2 {
		return nil, fmt.Errorf("expected 2 %q elements, found %d", r.Item.CSS(), items.Length())
	}
	return []string{
		r.Prefixes[0] + strings.TrimSpace(items.Eq(0).Text()),
		r.Prefixes[1] + strings.TrimSpace(items.Eq(1).Text()),
	}, nil
}
