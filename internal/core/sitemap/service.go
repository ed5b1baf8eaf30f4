package sitemap

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"askweb/internal/logger"

	"github.com/beevik/etree"
)

// DefaultIncludePrefixes classifies documentation-style sites out of the box.
var DefaultIncludePrefixes = []string{"/api/", "/examples/", "/guide/"}

// imageNamespaceURI is the Google image sitemap extension. Documents may bind
// it to any prefix; matching goes through the URI, never the literal prefix.
const imageNamespaceURI = "http://www.google.com/schemas/sitemap-image/1.1"

// Image is one image annotation attached to a sitemap entry.
type Image struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// Entry is one URL record extracted from a sitemap. ContentType is the
// matched include prefix stripped of slashes; entries that match no prefix
// are never constructed.
type Entry struct {
	URL         string  `json:"url"`
	ContentType string  `json:"type"`
	Path        string  `json:"path"`
	Source      string  `json:"source"`
	Images      []Image `json:"images"`
}

type Service struct {
	log    *logger.Logger
	client *http.Client
}

func NewService() *Service {
	return &Service{
		log:    logger.New("SitemapService"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewServiceWithClient lets tests substitute the HTTP client.
func NewServiceWithClient(client *http.Client) *Service {
	s := NewService()
	if client != nil {
		s.client = client
	}
	return s
}

// Extract fetches and parses a sitemap, returning entries whose path matches
// one of the include prefixes (first match wins, declaration order breaks
// ties). It never fails to the caller: fetch or parse problems are logged
// and yield zero entries.
func (s *Service) Extract(ctx context.Context, sitemapURL string, includePrefixes []string) []Entry {
	if len(includePrefixes) == 0 {
		includePrefixes = DefaultIncludePrefixes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		s.log.LogErrorf("sitemap request %s: %v", sitemapURL, err)
		return nil
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.LogErrorf("sitemap fetch %s: %v", sitemapURL, err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.log.LogWarnf("sitemap fetch %s: HTTP %d", sitemapURL, resp.StatusCode)
		return nil
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		s.log.LogErrorf("sitemap parse %s: %v", sitemapURL, err)
		return nil
	}
	root := doc.Root()
	if root == nil {
		s.log.LogWarnf("sitemap parse %s: empty document", sitemapURL)
		return nil
	}

	imgPrefix := imagePrefix(root)

	var entries []Entry
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		pageURL := strings.TrimSpace(loc.Text())
		if pageURL == "" || isSitemapFile(pageURL) {
			continue
		}

		path := urlPath(pageURL)
		contentType := classify(path, includePrefixes)
		if contentType == "" {
			continue
		}

		entries = append(entries, Entry{
			URL:         pageURL,
			ContentType: contentType,
			Path:        path,
			Source:      "sitemap",
			Images:      extractImages(urlEl, imgPrefix),
		})
	}

	s.log.LogInfof("found %d matching URLs in sitemap %s", len(entries), sitemapURL)
	return entries
}

// classify returns the first include prefix (stripped of slashes) contained
// in the path, or "" when none matches.
func classify(path string, includePrefixes []string) string {
	for _, prefix := range includePrefixes {
		stripped := strings.Trim(prefix, "/")
		if stripped == "" {
			continue
		}
		if strings.Contains(path, stripped) {
			return stripped
		}
	}
	return ""
}

// isSitemapFile reports whether the URL's final path segment is itself a
// sitemap document, which must never be treated as a page.
func isSitemapFile(pageURL string) bool {
	path := urlPath(pageURL)
	segment := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		segment = path[i+1:]
	}
	return strings.HasSuffix(segment, "sitemap.xml")
}

func urlPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Path
}

// imagePrefix returns the prefix the document binds to the image extension
// namespace, or "" when the namespace is not declared at all.
func imagePrefix(root *etree.Element) string {
	for _, attr := range root.Attr {
		if attr.Space == "xmlns" && attr.Value == imageNamespaceURI {
			return attr.Key
		}
	}
	return ""
}

// extractImages walks the image extension elements nested under a <url>
// element, using whatever prefix the document declared for the namespace.
// Images without a loc are dropped.
func extractImages(urlEl *etree.Element, prefix string) []Image {
	if prefix == "" {
		return nil
	}
	var images []Image
	for _, imgEl := range urlEl.FindElements(".//" + prefix + ":image") {
		loc := imgEl.SelectElement(prefix + ":loc")
		if loc == nil || strings.TrimSpace(loc.Text()) == "" {
			continue
		}
		img := Image{URL: strings.TrimSpace(loc.Text())}
		if title := imgEl.SelectElement(prefix + ":title"); title != nil {
			img.Title = strings.TrimSpace(title.Text())
		}
		if caption := imgEl.SelectElement(prefix + ":caption"); caption != nil {
			img.Alt = strings.TrimSpace(caption.Text())
		}
		images = append(images, img)
	}
	return images
}
