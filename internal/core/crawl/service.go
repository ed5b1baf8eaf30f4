package crawl

import (
	"context"
	"fmt"

	"askweb/internal/core/sitemap"
	"askweb/internal/logger"
	"askweb/internal/utils/markdown"

	"github.com/gocolly/colly"
)

// Status of one crawled page. Failed means the fetch ran but produced no
// usable content; Error means the fetch itself blew up.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

// Result is the normalized outcome of crawling one sitemap entry.
// Content is non-empty iff Status is success.
type Result struct {
	Entry   sitemap.Entry `json:"entry"`
	Content string        `json:"content,omitempty"`
	Status  Status        `json:"status"`
	Error   string        `json:"error,omitempty"`
}

type Service struct {
	log       *logger.Logger
	userAgent string
}

func NewService() *Service {
	return &Service{log: logger.New("CrawlService"), userAgent: "AskwebBot/1.0"}
}

// Crawl fetches a single page and converts it to markdown. It never returns
// an error: every outcome is folded into the Result status.
func (s *Service) Crawl(ctx context.Context, entry sitemap.Entry) Result {
	res := Result{Entry: entry}

	var html []byte
	var fetchErr error

	c := colly.NewCollector(colly.UserAgent(s.userAgent))
	c.OnResponse(func(r *colly.Response) {
		html = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			fetchErr = fmt.Errorf("HTTP %d: %v", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := c.Visit(entry.URL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	select {
	case <-ctx.Done():
		fetchErr = ctx.Err()
	default:
	}

	if fetchErr != nil {
		s.log.LogErrorf("crawl %s: %v", entry.URL, fetchErr)
		res.Status = StatusError
		res.Error = fetchErr.Error()
		return res
	}

	content := markdown.ConvertHTMLToMarkdown(string(html))
	if content == "" {
		s.log.LogWarnf("crawl %s: no content extracted", entry.URL)
		res.Status = StatusFailed
		res.Error = "No content extracted"
		return res
	}

	s.log.LogDebugf("crawled %s (%d chars)", entry.URL, len(content))
	res.Status = StatusSuccess
	res.Content = content
	return res
}
