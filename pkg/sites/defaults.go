package sites

// DefaultProfiles returns the built-in profiles for the supported listing pages.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			ID:         "lifehacker",
			Name:       "Лайфхакер",
			ListingURL: "https://lifehacker.ru/topics/news",
			Container:  ".flow .flow__posts",
			Posts:      PostSelector{Tag: "div", Attr: "class", Value: "flow-post"},
			Heading:    ".flow-post__title",
			Descr:      SelectorText{Selector: ".flow-post__excerpt"},
			Link:       ParentAttr{Attr: "href"},
			Tags:       SelectorTags{Selector: `.meta-mark span[class^="meta-info"]`},
			Trim:       TrimNone,
		},
		{
			ID:         "mailru",
			Name:       "Новости Mail.RU",
			ListingURL: "https://news.mail.ru/economics/",
			Container:  ".paging__content",
			Posts:      PostSelector{Tag: "div", Attr: "class", Value: "newsitem"},
			Heading:    ".cell .newsitem__title",
			Descr:      SelectorText{Selector: ".cell .newsitem__text"},
			Link:       PrefixedAttr{Base: "https://news.mail.ru/", Attr: "href"},
			Tags: PairedMeta{
				Container: ".newsitem__params",
				Item:      PostSelector{Tag: "span", Attr: "class", Value: "newsitem__param"},
				Prefixes:  [2]string{"Актуальность: ", "Источник: "},
			},
			Trim: TrimNone,
		},
		{
			ID:         "nnru",
			Name:       "Новости NN.RU",
			ListingURL: "https://www.nn.ru/news/",
			Container:  ".rn-section_lenta-on-main .rn-info__list",
			Posts:      PostSelector{Tag: "li", Attr: "class", Value: "rn-info__item"},
			Heading:    ".rn-info__announce .rn-info__announce-text",
			Descr:      Placeholder{Text: "Описание внутри статьи."},
			Link:       ParentAttr{Attr: "href"},
			Tags:       FixedTag{Label: "НОВОСТИ НИЖНЕГО НОВГОРОДА"},
			Trim:       TrimTrailingItem,
		},
	}
}
