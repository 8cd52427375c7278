// Package extractor turns a parsed listing page into article records using a site profile.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/news-snapshotter/internal/domain"
	"github.com/samvad-hq/news-snapshotter/pkg/sites"
)

// Extract locates the profile's container and posts in doc and derives one
// article per post. It returns either every article or an error; never a partial list.
func Extract(doc *goquery.Document, p sites.Profile) ([]domain.Article, error) {
	if doc == nil || doc.Selection == nil {
		return nil, fmt.Errorf("%w: site %s: no document", domain.ErrStructureChanged, p.ID)
	}

	container := doc.Find(p.Container).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: site %s: container %q not found", domain.ErrStructureChanged, p.ID, p.Container)
	}

	posts := container.Find(p.Posts.CSS())
	if posts.Length() == 0 {
		return nil, fmt.Errorf("%w: site %s: no %q posts inside %q", domain.ErrStructureChanged, p.ID, p.Posts.CSS(), p.Container)
	}
	posts = trim(posts, p.Trim)

	articles := make([]domain.Article, 0, posts.Length())
	for i := range posts.Length() {
		article, err := extractPost(posts.Eq(i), i, p)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func trim(posts *goquery.Selection, rule sites.TrimRule) *goquery.Selection {
	switch rule {
	case sites.TrimTrailingItem:
		if n := posts.Length(); n > 0 {
			return posts.Slice(0, n-1)
		}
	}
	return posts
}

func extractPost(post *goquery.Selection, idx int, p sites.Profile) (domain.Article, error) {
	postErr := func(field, reason string) error {
		return &domain.PostError{SiteID: p.ID, Index: idx, Field: field, Reason: reason}
	}

	heading := post.Find(p.Heading).First()
	if heading.Length() == 0 {
		return domain.Article{}, postErr("title", fmt.Sprintf("heading %q not found", p.Heading))
	}
	title := normalizeSpace(heading.Text())
	if title == "" {
		return domain.Article{}, postErr("title", "heading text is empty")
	}

	descr, err := p.Descr.Descr(post)
	if err != nil {
		return domain.Article{}, postErr("descr", err.Error())
	}

	link, err := p.Link.Link(heading, p.ListingURL)
	if err != nil {
		return domain.Article{}, postErr("link", err.Error())
	}

	tags, err := p.Tags.Tags(post)
	if err != nil {
		return domain.Article{}, postErr("tags", err.Error())
	}
	if tags == nil {
		tags = []string{}
	}

	return domain.Article{
		Title: title,
		Descr: descr,
		Link:  link,
		Tags:  tags,
	}, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
