package sites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "sites.yaml", `
sites:
  - id: mailru
    name: Новости Mail.RU
    listing_url: https://news.mail.ru/economics/
    container: .paging__content
    posts: {tag: div, attr: class, value: newsitem}
    heading: .cell .newsitem__title
    descr: {kind: selector, selector: .cell .newsitem__text}
    link: {kind: prefixed_attr, base: "https://news.mail.ru/", attr: href}
    tags:
      kind: paired
      container: .newsitem__params
      item: {tag: span, attr: class, value: newsitem__param}
      prefixes: ["Актуальность: ", "Источник: "]
    headers:
      User-Agent: custom
  - id: nnru
    name: Новости NN.RU
    listing_url: https://www.nn.ru/news/
    container: .rn-info__list
    posts: {tag: li, attr: class, value: rn-info__item}
    heading: .rn-info__announce-text
    descr: {kind: placeholder, text: Описание внутри статьи.}
    link: {kind: parent_attr}
    tags: {kind: fixed, label: НОВОСТИ}
    trim: trailing_item
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	mailru, err := reg.Resolve("mailru")
	require.NoError(t, err)
	assert.Equal(t, PrefixedAttr{Base: "https://news.mail.ru/", Attr: "href"}, mailru.Link)
	assert.Equal(t, PairedMeta{
		Container: ".newsitem__params",
		Item:      PostSelector{Tag: "span", Attr: "class", Value: "newsitem__param"},
		Prefixes:  [2]string{"Актуальность: ", "Источник: "},
	}, mailru.Tags)
	assert.Equal(t, TrimNone, mailru.Trim)
	assert.Equal(t, "custom", mailru.Headers["User-Agent"])

	nnru, err := reg.Resolve("nnru")
	require.NoError(t, err)
	assert.Equal(t, Placeholder{Text: "Описание внутри статьи."}, nnru.Descr)
	assert.Equal(t, FixedTag{Label: "НОВОСТИ"}, nnru.Tags)
	assert.Equal(t, TrimTrailingItem, nnru.Trim)
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "sites.json", `{"sites":[{
		"id":"sitea","name":"Site A","listing_url":"http://x/list",
		"container":".list","posts":{"tag":"li","attr":"class","value":"item"},
		"heading":".h","descr":{"kind":"selector","selector":".d"},
		"link":{"kind":"heading_attr","attr":"data-url"},"tags":{"kind":"selector","selector":".tag"}
	}]}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	p, err := reg.Resolve("sitea")
	require.NoError(t, err)
	assert.Equal(t, HeadingAttr{Attr: "data-url"}, p.Link)
	assert.Equal(t, SelectorTags{Selector: ".tag"}, p.Tags)
}

func TestLoadRegistryRejectsUnknownRuleKind(t *testing.T) {
	path := writeFile(t, "sites.yaml", `
sites:
  - id: a
    name: A
    listing_url: https://a.example/
    container: .c
    posts: {tag: div}
    heading: .h
    descr: {kind: summary}
    link: {kind: parent_attr}
`)

	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule kind")
}

func TestLoadRegistryRejectsInvalidSelector(t *testing.T) {
	path := writeFile(t, "sites.yaml", `
sites:
  - id: a
    name: A
    listing_url: https://a.example/
    container: ".list["
    posts: {tag: div}
    heading: .h
    descr: {kind: placeholder, text: "-"}
    link: {kind: parent_attr}
`)

	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid selector")
}

func TestLoadRegistryRejectsBaseWithoutSlash(t *testing.T) {
	path := writeFile(t, "sites.yaml", `
sites:
  - id: a
    name: A
    listing_url: https://a.example/
    container: .c
    posts: {tag: div}
    heading: .h
    descr: {kind: placeholder, text: "-"}
    link: {kind: prefixed_attr, base: "https://a.example/news"}
`)

	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must end with")
}

func TestLoadRegistryRejectsEmptyFile(t *testing.T) {
	path := writeFile(t, "sites.yaml", "sites: []\n")

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	entry := `
  - id: dup
    name: Dup
    listing_url: https://a.example/
    container: .c
    posts: {tag: div}
    heading: .h
    descr: {kind: placeholder, text: x}
    link: {kind: heading_attr}
`
	path := writeFile(t, "sites.yml", "sites:"+entry+entry)

	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
