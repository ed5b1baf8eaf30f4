package rag

import (
	"context"
	"strings"

	"askweb/internal/core/chunker"
	"askweb/internal/core/crawl"
	"askweb/internal/core/sitemap"
	"askweb/internal/logger"
	"askweb/internal/platform/eino"
	"askweb/prompts"
)

const maxOutputTokens = 1024

// Extractor lists sitemap entries for a site.
type Extractor interface {
	Extract(ctx context.Context, sitemapURL string, includePrefixes []string) []sitemap.Entry
}

// Crawler fetches one page and normalizes the outcome.
type Crawler interface {
	Crawl(ctx context.Context, entry sitemap.Entry) crawl.Result
}

// Index is the subset of the vector index the query engine needs.
type Index interface {
	Add(ctx context.Context, chunks []chunker.Chunk) error
	Search(ctx context.Context, query string, k int) []chunker.Chunk
	Count(ctx context.Context) int
}

// Generator synthesizes an answer from a grounded prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts eino.GenerateOptions) (string, error)
}

// Report summarizes one ingestion run.
type Report struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Service composes sitemap extraction, crawling, chunking and indexing on
// the ingestion side, and retrieval plus answer synthesis on the query side.
// It holds no state of its own.
type Service struct {
	log         *logger.Logger
	extractor   Extractor
	crawler     Crawler
	chunker     *chunker.Service
	index       Index
	llm         Generator
	topK        int
	temperature float64
}

func NewService(extractor Extractor, crawler Crawler, ch *chunker.Service, index Index, llm Generator, topK int, temperature float64) *Service {
	return &Service{
		log:         logger.New("RagService"),
		extractor:   extractor,
		crawler:     crawler,
		chunker:     ch,
		index:       index,
		llm:         llm,
		topK:        topK,
		temperature: temperature,
	}
}

// Ingest crawls every sitemap entry sequentially and indexes the content of
// the successful ones. Per-page failures are counted, never propagated, and
// never indexed.
func (s *Service) Ingest(ctx context.Context, sitemapURL string) Report {
	entries := s.extractor.Extract(ctx, sitemapURL, nil)
	report := Report{Attempted: len(entries)}

	for _, entry := range entries {
		result := s.crawler.Crawl(ctx, entry)
		if result.Status != crawl.StatusSuccess {
			report.Failed++
			continue
		}

		chunks := s.chunker.Split(result.Content, documentMetadata(result.Entry))
		if err := s.index.Add(ctx, chunks); err != nil {
			s.log.LogErrorf("index %s: %v", entry.URL, err)
			report.Failed++
			continue
		}
		report.Succeeded++
	}

	s.log.LogSuccessf("ingested %s: %d/%d documents indexed", sitemapURL, report.Succeeded, report.Attempted)
	return report
}

// Answer retrieves the most relevant chunks for the question and delegates
// to the synthesizer with a grounded prompt. Every failure path resolves to
// a fixed user-visible string; nothing is raised to the caller.
func (s *Service) Answer(ctx context.Context, question string) string {
	relevant := s.index.Search(ctx, question, s.topK)
	if len(relevant) == 0 {
		return prompts.NotEnoughInformation
	}

	sources := make([]string, 0, len(relevant))
	for _, chunk := range relevant {
		sources = append(sources, prompts.FormatSource(chunk.Metadata["url"], chunk.Text))
	}

	prompt := prompts.BuildAnswerPrompt(sources, question)
	answer, err := s.llm.Generate(ctx, prompt, eino.GenerateOptions{
		Temperature:     float32(s.temperature),
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		s.log.LogErrorf("generate answer: %v", err)
		return prompts.GenerationApology
	}
	return answer
}

// documentMetadata flattens a sitemap entry into the scalar-only metadata
// the collection can store. Images collapse to one delimited string.
func documentMetadata(entry sitemap.Entry) map[string]string {
	var images []string
	for _, img := range entry.Images {
		images = append(images, strings.Join([]string{img.URL, img.Title, img.Alt}, "|"))
	}
	return map[string]string{
		"url":    entry.URL,
		"type":   entry.ContentType,
		"path":   entry.Path,
		"source": entry.Source,
		"images": strings.Join(images, ";"),
	}
}
