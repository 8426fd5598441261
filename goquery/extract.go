// Package goquery implements field extraction and challenge detection on top
// of the goquery HTML library.
package goquery

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/fwojciec/mangaingest"
)

// Ensure Extractor implements mangaingest.Extractor at compile time.
var _ mangaingest.Extractor = (*Extractor)(nil)

// DefaultImageAttrs are tried in order when an images strategy names no
// attributes. Lazy-loading themes keep the real URL out of src.
var DefaultImageAttrs = []string{"data-src", "data-lazy-src", "data-lazy", "data-original", "src"}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".avif": true,
}

var placeholderMarkers = []string{"placeholder", "loading", "blank", "lazy."}

var yearOnly = regexp.MustCompile(`^\d{4}$`)

// Extractor evaluates ordered selector strategies against HTML documents.
// Extractor is safe for concurrent use.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used for date fallbacks.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract applies each field spec in order. A field whose strategies all come up
// empty is left unset unless it is required, in which case extraction fails
// with EEXTRACTION. Date fields always receive a value.
func (e *Extractor) Extract(html, pageURL string, specs []mangaingest.FieldSpec) (*mangaingest.Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, mangaingest.Errorf(mangaingest.EEXTRACTION, "failed to parse HTML from %s: %v", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	fields := mangaingest.NewFields()
	for _, spec := range specs {
		values := e.extractField(doc, base, spec)
		if len(values) > 0 {
			fields.Set(spec.Name, values...)
		}
		if spec.Kind == mangaingest.FieldDate {
			fields.SetDate(spec.Name, e.parseDate(values))
		}
		if spec.Required && len(values) == 0 {
			return nil, mangaingest.Errorf(mangaingest.EEXTRACTION, "required field %q not found at %s", spec.Name, pageURL)
		}
	}
	return fields, nil
}

// extractField returns the values of the first strategy that yields any.
func (e *Extractor) extractField(doc *goquery.Document, base *url.URL, spec mangaingest.FieldSpec) []string {
	for _, st := range spec.Strategies {
		sel := doc.Find(st.Selector)
		if st.Position > 0 {
			sel = sel.Eq(st.Position - 1)
		}
		if sel.Length() == 0 {
			continue
		}

		var values []string
		switch spec.Kind {
		case mangaingest.FieldText:
			values = textValues(sel, st.Attrs, spec.Ignore)
		case mangaingest.FieldList:
			values = listValues(sel, st.Attrs, spec)
		case mangaingest.FieldDate:
			values = firstValue(sel, st.Attrs, spec.Ignore)
		case mangaingest.FieldURL:
			values = urlValue(sel, st.Attrs, base)
		case mangaingest.FieldImages:
			values = imageValues(sel, st.Attrs, base)
		}
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func (e *Extractor) parseDate(values []string) time.Time {
	if len(values) == 0 {
		return e.now().UTC()
	}
	v := values[0]
	if yearOnly.MatchString(v) {
		year, _ := strconv.Atoi(v)
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	t, err := dateparse.ParseAny(v)
	if err != nil {
		return e.now().UTC()
	}
	return t.UTC()
}

func textValues(sel *goquery.Selection, attrs, ignore []string) []string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		v := value(s, attrs)
		if v == "" || ignored(v, ignore) {
			return
		}
		parts = append(parts, v)
	})
	if len(parts) == 0 {
		return nil
	}
	return []string{strings.Join(parts, "\n")}
}

func listValues(sel *goquery.Selection, attrs []string, spec mangaingest.FieldSpec) []string {
	delim := spec.Delimiter
	if delim == "" {
		delim = ","
	}
	seen := make(map[string]bool)
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		for _, token := range strings.Split(value(s, attrs), delim) {
			token = strings.TrimSpace(token)
			if token == "" || ignored(token, spec.Ignore) {
				continue
			}
			key := strings.ToLower(token)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, token)
		}
	})
	return out
}

func firstValue(sel *goquery.Selection, attrs, ignore []string) []string {
	var out []string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v := value(s, attrs)
		if v == "" || ignored(v, ignore) {
			return true
		}
		out = []string{v}
		return false
	})
	return out
}

func urlValue(sel *goquery.Selection, attrs []string, base *url.URL) []string {
	var out []string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		resolved := resolveURL(base, value(s, attrs))
		if resolved == "" {
			return true
		}
		out = []string{resolved}
		return false
	})
	return out
}

func imageValues(sel *goquery.Selection, attrs []string, base *url.URL) []string {
	if len(attrs) == 0 {
		attrs = DefaultImageAttrs
	}
	seen := make(map[string]bool)
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		for _, attr := range attrs {
			raw, ok := s.Attr(attr)
			if !ok {
				continue
			}
			resolved := resolveURL(base, raw)
			if resolved == "" || !isPageImage(resolved) {
				continue
			}
			if !seen[resolved] {
				seen[resolved] = true
				out = append(out, resolved)
			}
			return
		}
	})
	return out
}

// value reads the first non-empty attribute in attrs, or the normalized
// element text when attrs is empty.
func value(s *goquery.Selection, attrs []string) string {
	if len(attrs) == 0 {
		return normalizeSpace(s.Text())
	}
	for _, attr := range attrs {
		if v, ok := s.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func ignored(v string, ignore []string) bool {
	for _, i := range ignore {
		if strings.EqualFold(v, i) {
			return true
		}
	}
	return false
}

// resolveURL strips embedded whitespace and resolves raw against base.
func resolveURL(base *url.URL, raw string) string {
	raw = strings.NewReplacer("\n", "", "\t", "", "\r", "").Replace(raw)
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "javascript:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

func isPageImage(u string) bool {
	lower := strings.ToLower(u)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	if ext == "" {
		return true
	}
	return imageExtensions[ext]
}
