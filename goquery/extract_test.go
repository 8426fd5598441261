package goquery_test

import (
	"testing"
	"time"

	"github.com/fwojciec/mangaingest"
	"github.com/fwojciec/mangaingest/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newExtractor() *goquery.Extractor {
	return goquery.NewExtractor(goquery.WithClock(func() time.Time { return fixedNow }))
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("takes the first strategy that yields text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="entry-title">  Solo
			Leveling </div></body></html>`
		specs := []mangaingest.FieldSpec{{
			Name: "title",
			Kind: mangaingest.FieldText,
			Strategies: []mangaingest.Strategy{
				{Selector: ".post-title h1"},
				{Selector: ".entry-title"},
			},
		}}

		fields, err := newExtractor().Extract(html, "https://example.com/manga/solo/", specs)

		require.NoError(t, err)
		assert.Equal(t, "Solo Leveling", fields.Text("title"))
	})

	t.Run("whitespace-only match falls through to next strategy", func(t *testing.T) {
		t.Parallel()

		html := `<h1 class="a">   </h1><h1 class="b">Real</h1>`
		specs := []mangaingest.FieldSpec{{
			Name:       "title",
			Kind:       mangaingest.FieldText,
			Strategies: []mangaingest.Strategy{{Selector: ".a"}, {Selector: ".b"}},
		}}

		fields, err := newExtractor().Extract(html, "https://example.com", specs)

		require.NoError(t, err)
		assert.Equal(t, "Real", fields.Text("title"))
	})

	t.Run("position selects one match", func(t *testing.T) {
		t.Parallel()

		html := `<div class="item">Ongoing</div><div class="item">Manhwa</div>`
		specs := []mangaingest.FieldSpec{{
			Name:       "type",
			Kind:       mangaingest.FieldText,
			Strategies: []mangaingest.Strategy{{Selector: ".item", Position: 2}},
		}}

		fields, err := newExtractor().Extract(html, "https://example.com", specs)

		require.NoError(t, err)
		assert.Equal(t, "Manhwa", fields.Text("type"))
	})

	t.Run("list fields split, trim and drop empty or duplicate tokens", func(t *testing.T) {
		t.Parallel()

		html := `<div class="author-content"><a>Oda, </a><a>Eiichiro Oda ,, oda</a></div>`
		specs := []mangaingest.FieldSpec{{
			Name:       "authors",
			Kind:       mangaingest.FieldList,
			Strategies: []mangaingest.Strategy{{Selector: ".author-content a"}},
		}}

		fields, err := newExtractor().Extract(html, "https://example.com", specs)

		require.NoError(t, err)
		assert.Equal(t, []string{"Oda", "Eiichiro Oda"}, fields.List("authors"))
	})

	t.Run("custom delimiter and ignore list", func(t *testing.T) {
		t.Parallel()

		html := `<span class="alternative">One Piece | ワンピース | N/A</span>`
		specs := []mangaingest.FieldSpec{{
			Name:       "altTitles",
			Kind:       mangaingest.FieldList,
			Delimiter:  "|",
			Ignore:     []string{"n/a"},
			Strategies: []mangaingest.Strategy{{Selector: ".alternative"}},
		}}

		fields, err := newExtractor().Extract(html, "https://example.com", specs)

		require.NoError(t, err)
		assert.Equal(t, []string{"One Piece", "ワンピース"}, fields.List("altTitles"))
	})

	t.Run("ignored text counts as missing", func(t *testing.T) {
		t.Parallel()

		html := `<div class="status">Updating</div>`
		specs := []mangaingest.FieldSpec{{
			Name:       "status",
			Kind:       mangaingest.FieldText,
			Ignore:     []string{"updating"},
			Strategies: []mangaingest.Strategy{{Selector: ".status"}},
		}}

		fields, err := newExtractor().Extract(html, "https://example.com", specs)

		require.NoError(t, err)
		assert.False(t, fields.Has("status"))
	})

	t.Run("missing optional field degrades instead of failing", func(t *testing.T) {
		t.Parallel()

		html := `<h1 class="title">Title</h1>`
		specs := []mangaingest.FieldSpec{
			{Name: "title", Kind: mangaingest.FieldText, Required: true, Strategies: []mangaingest.Strategy{{Selector: ".title"}}},
			{Name: "genres", Kind: mangaingest.FieldList, Strategies: []mangaingest.Strategy{{Selector: ".genres a"}}},
		}

		fields, err := newExtractor().Extract(html, "https://example.com", specs)

		require.NoError(t, err)
		assert.Empty(t, fields.List("genres"))
	})

	t.Run("missing required field fails with extraction error", func(t *testing.T) {
		t.Parallel()

		specs := []mangaingest.FieldSpec{{
			Name:       "title",
			Kind:       mangaingest.FieldText,
			Required:   true,
			Strategies: []mangaingest.Strategy{{Selector: ".post-title h1"}, {Selector: ".entry-title"}},
		}}

		_, err := newExtractor().Extract(`<html><body></body></html>`, "https://example.com/x", specs)

		require.Error(t, err)
		assert.Equal(t, mangaingest.EEXTRACTION, mangaingest.ErrorCode(err))
		assert.Contains(t, mangaingest.ErrorMessage(err), "https://example.com/x")
	})

	t.Run("invalid selector yields nothing", func(t *testing.T) {
		t.Parallel()

		specs := []mangaingest.FieldSpec{{
			Name:       "title",
			Kind:       mangaingest.FieldText,
			Strategies: []mangaingest.Strategy{{Selector: "[[["}, {Selector: "h1"}},
		}}

		fields, err := newExtractor().Extract(`<h1>Ok</h1>`, "https://example.com", specs)

		require.NoError(t, err)
		assert.Equal(t, "Ok", fields.Text("title"))
	})
}

func TestExtractor_Dates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want time.Time
	}{
		{
			name: "datetime attribute",
			html: `<time datetime="2023-05-04T10:00:00Z">May 4</time>`,
			want: time.Date(2023, 5, 4, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "bare year",
			html: `<time>2019</time>`,
			want: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "unparseable falls back to clock",
			html: `<time>منذ يومين</time>`,
			want: fixedNow,
		},
		{
			name: "missing falls back to clock",
			html: `<p>nothing</p>`,
			want: fixedNow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			specs := []mangaingest.FieldSpec{{
				Name:       "releaseDate",
				Kind:       mangaingest.FieldDate,
				Strategies: []mangaingest.Strategy{{Selector: "time", Attrs: []string{"datetime"}}, {Selector: "time"}},
			}}

			fields, err := newExtractor().Extract(tt.html, "https://example.com", specs)

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(fields.Date("releaseDate")), "got %v", fields.Date("releaseDate"))
		})
	}
}

func TestExtractor_URLs(t *testing.T) {
	t.Parallel()

	html := `<div class="summary_image"><a><img src="
		/wp-content/uploads/cover.jpg	"></a></div>`
	specs := []mangaingest.FieldSpec{{
		Name:       "cover",
		Kind:       mangaingest.FieldURL,
		Required:   true,
		Strategies: []mangaingest.Strategy{{Selector: ".summary_image img", Attrs: []string{"data-src", "src"}}},
	}}

	fields, err := newExtractor().Extract(html, "https://3asq.org/manga/one-piece/", specs)

	require.NoError(t, err)
	assert.Equal(t, "https://3asq.org/wp-content/uploads/cover.jpg", fields.Text("cover"))
}

func TestExtractor_Images(t *testing.T) {
	t.Parallel()

	html := `<div class="reading-content">
		<img src="https://cdn.example.com/loading.gif" data-src="https://cdn.example.com/p/001.jpg">
		<img src="/p/002.webp">
		<img data-lazy-src="//cdn.example.com/p/003.png">
		<img src="data:image/gif;base64,R0lGOD" data-original="https://cdn.example.com/p/004.jpeg?v=2">
		<img src="https://cdn.example.com/p/001.jpg">
		<img src="https://cdn.example.com/ads/banner.html">
		<img src="https://cdn.example.com/placeholder.png">
	</div>`
	specs := []mangaingest.FieldSpec{{
		Name:       "pages",
		Kind:       mangaingest.FieldImages,
		Required:   true,
		Strategies: []mangaingest.Strategy{{Selector: ".reading-content img"}},
	}}

	fields, err := newExtractor().Extract(html, "https://cdn.example.com/manga/x/1/", specs)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.com/p/001.jpg",
		"https://cdn.example.com/p/002.webp",
		"https://cdn.example.com/p/003.png",
		"https://cdn.example.com/p/004.jpeg?v=2",
	}, fields.List("pages"))
}

func TestExtractor_ImagesFallThroughSelectors(t *testing.T) {
	t.Parallel()

	html := `<div class="page-break"><img src="https://cdn.example.com/1.jpg"></div>`
	specs := []mangaingest.FieldSpec{{
		Name:     "pages",
		Kind:     mangaingest.FieldImages,
		Required: true,
		Strategies: []mangaingest.Strategy{
			{Selector: ".reading-content img"},
			{Selector: ".page-break img"},
		},
	}}

	fields, err := newExtractor().Extract(html, "https://example.com", specs)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/1.jpg"}, fields.List("pages"))
}
