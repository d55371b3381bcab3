package web

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

const (
	// MaxPageSize bounds how much of a page is parsed
	MaxPageSize = 10 * 1024 * 1024
	// ExcerptLength is the excerpt limit in runes
	ExcerptLength = 300
)

var ErrEmptyPage = errors.New("empty page")

// PageInfo describes a web page shown in a tab
type PageInfo struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	Charset     string `json:"charset"`
}

var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// detectCharset prefers a declared or BOM charset, then valid UTF-8, and
// falls back to statistical detection
func detectCharset(data []byte, contentType string) string {
	if _, name, certain := charset.DetermineEncoding(data, contentType); certain || name != "windows-1252" {
		return strings.ToLower(name)
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// toUTF8 decodes data using the detected charset
func toUTF8(data []byte, name string) []byte {
	if name == "utf-8" || name == "ascii" {
		return data
	}
	r, err := charset.NewReader(bytes.NewReader(data), "text/html; charset="+name)
	if err != nil {
		return data
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return data
	}
	return buf.Bytes()
}

// Parse extracts page metadata from raw HTML served at pageURL
func Parse(pageURL string, data []byte, contentType string) (PageInfo, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return PageInfo{}, ErrEmptyPage
	}
	if len(data) > MaxPageSize {
		data = data[:MaxPageSize]
	}

	info := PageInfo{URL: pageURL, Charset: detectCharset(data, contentType)}
	body := toUTF8(data, info.Charset)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageInfo{}, fmt.Errorf("parse html: %w", err)
	}

	info.Title = collapse(doc.Find("title").First().Text())
	if info.Title == "" {
		info.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	if info.Title == "" {
		info.Title = pageURL
	}
	info.Description = metaContent(doc, `meta[name="description"]`)
	if info.Description == "" {
		info.Description = metaContent(doc, `meta[property="og:description"]`)
	}

	info.Favicon = favicon(pageURL, body)

	if bodyHTML, err := doc.Find("body").Html(); err == nil {
		info.Excerpt = excerpt(bodyHTML)
	}
	return info, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return collapse(v)
}

// favicon finds the icon link by XPath, defaulting to /favicon.ico
func favicon(pageURL string, body []byte) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	href := ""
	if root, err := htmlquery.Parse(bytes.NewReader(body)); err == nil {
		if node := htmlquery.FindOne(root, "//link[contains(@rel,'icon')][@href]"); node != nil {
			href = htmlquery.SelectAttr(node, "href")
		}
	}
	if href == "" {
		if base.Host == "" {
			return ""
		}
		href = "/favicon.ico"
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// excerpt strips all markup and truncates to ExcerptLength runes
func excerpt(bodyHTML string) string {
	text := collapse(html.UnescapeString(strict.Sanitize(bodyHTML)))
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "…"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
