package source

import "github.com/fwojciec/mangaingest"

// Sites returns the built-in site table.
func Sites() []Site {
	return []Site{
		Asheq(),
		Ares(),
		Azora(),
		Hijala(),
		Rocks(),
		Lekmanga(),
	}
}

// Asheq is 3asq.org, a Madara theme site. Chapter URLs are usually
// zero-padded below ten, but older series use the raw number.
func Asheq() Site {
	item := ".post-content .post-content_item .summary-content"
	return Site{
		Platform:       mangaingest.PlatformAsheq,
		BaseURL:        "https://3asq.org",
		SeriesPath:     "/manga/{slug}/",
		ChapterPath:    "/manga/{slug}/{chapter}/",
		ChapterFormats: []ChapterFormat{FormatPadded, FormatRaw},
		SeriesFields: []mangaingest.FieldSpec{
			text(FieldTitle, true, css(".post-title h1", ".post-title h3", ".entry-title")...),
			list(FieldAltTitles, ",", nth(item, 3)),
			text(FieldDescription, false, css(".manga-excerpt p", ".summary__content p", ".description-summary")...),
			cover(".summary_image a img", ".summary_image img"),
			list(FieldAuthors, ",", css(".author-content a", ".author-content")...),
			list(FieldArtists, ",", css(".artist-content a", ".artist-content")...),
			list(FieldGenres, ",", mangaingest.Strategy{Selector: ".genres-content a"}, nth(item, 6)),
			text(FieldType, false, nth(item, 7)),
			text(FieldStatus, false, nth(".post-status .summary-content", 2)),
			date(FieldReleaseDate, nth(".post-status .summary-content", 1)),
		},
		ChapterFields: madaraChapterFields(),
	}
}

// Ares is fl-ares.com, a MangaThemesia site. Its info table is positional
// and its status labels are English.
func Ares() Site {
	info := ".tsinfo .imptdt i"
	return Site{
		Platform:       mangaingest.PlatformAres,
		BaseURL:        "https://fl-ares.com",
		SeriesPath:     "/series/{slug}/",
		ChapterPath:    "/{slug}-chapter-{chapter}/",
		ChapterFormats: []ChapterFormat{FormatRaw, FormatPadded},
		SeriesFields: []mangaingest.FieldSpec{
			text(FieldTitle, true, css(".entry-title", ".infox h1")...),
			list(FieldAltTitles, ",", css(".alternative", ".wd-full span.alternative")...),
			text(FieldDescription, false, css(".entry-content.entry-content-single p", ".entry-content.entry-content-single")...),
			cover(".thumb img"),
			text(FieldStatus, false, nth(info, 1)),
			text(FieldType, false, nth(info, 2)),
			list(FieldAuthors, ",", nth(info, 4)),
			list(FieldArtists, ",", nth(info, 5)),
			list(FieldGenres, ",", css(".mgen a", ".genxed a")...),
			date(FieldReleaseDate,
				attr(`time[itemprop="datePublished"]`, "datetime"),
				attr("li[datetime]", "datetime"),
			),
		},
		ChapterFields: themesiaChapterFields(),
		StatusLabels: map[string]string{
			"completed": "مكتملة",
			"ongoing":   "مستمرة",
			"canceled":  "ملغية",
			"cancelled": "ملغية",
		},
	}
}

// Azora is azoramoon.com. It never lists a status, so every series is
// stored as updating.
func Azora() Site {
	return Site{
		Platform:       mangaingest.PlatformAzora,
		BaseURL:        "https://azoramoon.com",
		SeriesPath:     "/series/{slug}/",
		ChapterPath:    "/series/{slug}/chapter-{chapter}/",
		ChapterFormats: []ChapterFormat{FormatRaw, FormatPadded},
		SeriesFields: []mangaingest.FieldSpec{
			text(FieldTitle, true, css(".post-title h1", ".entry-title")...),
			list(FieldAltTitles, ",", css(`.post-content_item:contains("Alternative") .summary-content`)...),
			text(FieldDescription, false, css(".manga-summary p", ".summary__content p")...),
			cover(".summary_image img"),
			listIgnoring(FieldAuthors, []string{"Updating"}, css(".manga-authors a", ".manga-authors", ".author-content a")...),
			list(FieldArtists, ",", css(".artist-content a")...),
			list(FieldGenres, ",", css(".genres-content a")...),
		},
		ChapterFields: madaraChapterFields(),
		DefaultType:   "Manga",
		DefaultStatus: "Updating",
	}
}

// Hijala is hijala.com. Series pages live at the site root and the info
// rows are labelled in Arabic.
func Hijala() Site {
	return Site{
		Platform:       mangaingest.PlatformHijala,
		BaseURL:        "https://hijala.com",
		SeriesPath:     "/{slug}/",
		ChapterPath:    "/{slug}/{chapter}/",
		ChapterFormats: []ChapterFormat{FormatRaw, FormatPadded},
		SeriesFields: []mangaingest.FieldSpec{
			text(FieldTitle, true, css(".entry-title")...),
			list(FieldAltTitles, "|", css(".alternative")...),
			text(FieldDescription, false, css(`.entry-content[itemprop="description"] p`, ".entry-content p")...),
			cover(".info-left img.wp-post-image", ".thumb img"),
			list(FieldAuthors, ",", css(`.imptdt:contains("المؤلف") i`, `.imptdt:contains("Author") i`)...),
			list(FieldArtists, ",", css(`.imptdt:contains("الرسام") i`, `.imptdt:contains("Artist") i`)...),
			text(FieldStatus, false, css(`.imptdt:contains("الحالة") i`, `.imptdt:contains("Status") i`)...),
			list(FieldGenres, ",", css(".mgen a", ".genxed a")...),
			date(FieldReleaseDate, attr("time[datetime]", "datetime")),
		},
		ChapterFields: append(madaraChapterFields(), mangaingest.FieldSpec{
			Name:       FieldChapterDate,
			Kind:       mangaingest.FieldDate,
			Strategies: css(".eph-num .chapterdate"),
		}),
		DefaultType: "مانهوا",
	}
}

// Rocks is rocksmanga.com. Its metadata block uses Arabic labels and only
// publishes a release year.
func Rocks() Site {
	return Site{
		Platform:       mangaingest.PlatformRocks,
		BaseURL:        "https://rocksmanga.com",
		SeriesPath:     "/manga/{slug}/",
		ChapterPath:    "/manga/{slug}/{chapter}/",
		ChapterFormats: []ChapterFormat{FormatRaw, FormatPadded},
		SeriesFields: []mangaingest.FieldSpec{
			text(FieldTitle, true, css(".info h1")...),
			list(FieldAltTitles, "|", css(".info h6")...),
			text(FieldDescription, false, css(".description")...),
			cover(".poster img"),
			list(FieldAuthors, ",", css(`.meta div:contains("المؤلف") a`)...),
			list(FieldArtists, ",", css(`.meta div:contains("الرسام") a`)...),
			list(FieldGenres, ",", css(`.meta div:contains("التصنيفات") a`)...),
			text(FieldType, false, css(`.meta div:contains("النوع") a`)...),
			text(FieldStatus, false, nth(".info p", 1)),
			date(FieldReleaseDate, css(`.meta div:contains("سنة الصدور") a`)...),
		},
		ChapterFields: []mangaingest.FieldSpec{
			pages(css(".chapter-content img", ".reading-content img")...),
			text(FieldChapterTitle, false, css(".chapter-title", ".info h1")...),
		},
		DefaultType: "مانجا",
	}
}

// Lekmanga is lekmanga.net. It sits behind a Cloudflare challenge, so every
// page is loaded in a browser session, and it lazy-loads chapter images.
func Lekmanga() Site {
	return Site{
		Platform:       mangaingest.PlatformLekmanga,
		BaseURL:        "https://lekmanga.net",
		Browser:        true,
		SeriesPath:     "/manga/{slug}/",
		ChapterPath:    "/manga/{slug}/{chapter}/",
		ChapterFormats: []ChapterFormat{FormatRaw, FormatPadded},
		SeriesFields: []mangaingest.FieldSpec{
			text(FieldTitle, true, css(".post-title h1", ".entry-title", ".manga-title", "h1")...),
			list(FieldAltTitles, ",", css(`.post-content_item:contains("Alternative") .summary-content`, ".alternative")...),
			text(FieldDescription, false, css(".summary__content p", ".manga-excerpt p", ".description-summary", ".entry-content p")...),
			cover(".summary_image img", ".thumb img", ".manga-poster img"),
			list(FieldAuthors, ",", css(".author-content a", ".author-content", `.imptdt:contains("Author") i`)...),
			list(FieldArtists, ",", css(".artist-content a", ".artist-content")...),
			list(FieldGenres, ",", css(".genres-content a", ".mgen a")...),
			text(FieldType, false, css(`.post-content_item:contains("Type") .summary-content`)...),
			text(FieldStatus, false, css(`.post-status .post-content_item:contains("Status") .summary-content`, ".post-status .summary-content")...),
			date(FieldReleaseDate, css(`.post-status .post-content_item:contains("Release") .summary-content`)...),
		},
		ChapterFields: []mangaingest.FieldSpec{
			pages(css(
				".reading-content img",
				"img.wp-manga-chapter-img",
				".page-break img",
				"#readerarea img",
				".chapter-content img",
				"#chapter_imgs img",
				".chapter-images img",
				".chapter img",
				".entry-content img",
			)...),
			text(FieldChapterTitle, false, css("ol.breadcrumb li.active", "#chapter-heading", ".chapter-title")...),
		},
		DefaultGenres:      []string{"Unknown"},
		ArtistsFromAuthors: true,
	}
}

func madaraChapterFields() []mangaingest.FieldSpec {
	return []mangaingest.FieldSpec{
		pages(css(
			".reading-content img",
			"img.wp-manga-chapter-img",
			".chapter-content img",
			".page-break img",
			"#chapter_imgs img",
			".chapter-images img",
			".chapter img",
		)...),
		text(FieldChapterTitle, false, css("ol.breadcrumb li.active", ".chapter-title", "#chapter-heading", ".entry-title")...),
	}
}

func themesiaChapterFields() []mangaingest.FieldSpec {
	return []mangaingest.FieldSpec{
		pages(css("#readerarea img", ".rdminimal img", ".reading-content img")...),
		text(FieldChapterTitle, false, css(".headpost h1", ".entry-title")...),
	}
}

func css(selectors ...string) []mangaingest.Strategy {
	out := make([]mangaingest.Strategy, len(selectors))
	for i, s := range selectors {
		out[i] = mangaingest.Strategy{Selector: s}
	}
	return out
}

func nth(selector string, position int) mangaingest.Strategy {
	return mangaingest.Strategy{Selector: selector, Position: position}
}

func attr(selector string, attrs ...string) mangaingest.Strategy {
	return mangaingest.Strategy{Selector: selector, Attrs: attrs}
}

func text(name string, required bool, strategies ...mangaingest.Strategy) mangaingest.FieldSpec {
	return mangaingest.FieldSpec{Name: name, Kind: mangaingest.FieldText, Required: required, Strategies: strategies}
}

func list(name, delimiter string, strategies ...mangaingest.Strategy) mangaingest.FieldSpec {
	return mangaingest.FieldSpec{Name: name, Kind: mangaingest.FieldList, Delimiter: delimiter, Strategies: strategies}
}

func listIgnoring(name string, ignore []string, strategies ...mangaingest.Strategy) mangaingest.FieldSpec {
	spec := list(name, ",", strategies...)
	spec.Ignore = ignore
	return spec
}

func date(name string, strategies ...mangaingest.Strategy) mangaingest.FieldSpec {
	return mangaingest.FieldSpec{Name: name, Kind: mangaingest.FieldDate, Strategies: strategies}
}

func cover(selectors ...string) mangaingest.FieldSpec {
	strategies := make([]mangaingest.Strategy, len(selectors))
	for i, s := range selectors {
		strategies[i] = attr(s, "data-src", "data-lazy-src", "src")
	}
	return mangaingest.FieldSpec{Name: FieldCover, Kind: mangaingest.FieldURL, Required: true, Strategies: strategies}
}

func pages(strategies ...mangaingest.Strategy) mangaingest.FieldSpec {
	return mangaingest.FieldSpec{Name: FieldPages, Kind: mangaingest.FieldImages, Required: true, Strategies: strategies}
}
