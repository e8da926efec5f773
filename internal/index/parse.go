package index

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parse extracts the entries of an Apache-style autoindex page.
// Column sort links, the parent directory link and links leaving the
// directory are skipped. Hrefs are unescaped; a trailing slash marks a
// directory.
func Parse(body string) ([]Entry, error) {
	z := html.NewTokenizer(strings.NewReader(body))
	seen := make(map[string]struct{})
	var entries []Entry
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return entries, err
			}
			return entries, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			entry, ok := entryFromHref(hrefOf(z))
			if !ok {
				continue
			}
			if _, dup := seen[entry.Name]; dup {
				continue
			}
			seen[entry.Name] = struct{}{}
			entries = append(entries, entry)
		}
	}
}

func hrefOf(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "href" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}

func entryFromHref(href string) (Entry, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") {
		return Entry{}, false
	}
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return Entry{}, false
	}
	// Apache prefixes names containing a colon with "./".
	path := strings.TrimPrefix(u.Path, "./")
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "..") {
		return Entry{}, false
	}

	dir := strings.HasSuffix(path, "/")
	name := strings.TrimSuffix(path, "/")
	if name == "" || name == "." || strings.Contains(name, "/") {
		return Entry{}, false
	}
	return Entry{Name: name, Dir: dir}, true
}
