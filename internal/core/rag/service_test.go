package rag

import (
	"context"
	"errors"
	"testing"

	"askweb/internal/core/chunker"
	"askweb/internal/core/crawl"
	"askweb/internal/core/sitemap"
	"askweb/internal/platform/eino"
	"askweb/prompts"

	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	entries []sitemap.Entry
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ []string) []sitemap.Entry {
	return f.entries
}

type fakeCrawler struct {
	results map[string]crawl.Result
}

func (f *fakeCrawler) Crawl(_ context.Context, entry sitemap.Entry) crawl.Result {
	return f.results[entry.URL]
}

type fakeIndex struct {
	added    [][]chunker.Chunk
	addErr   error
	searchRs []chunker.Chunk
}

func (f *fakeIndex) Add(_ context.Context, chunks []chunker.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, chunks)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ int) []chunker.Chunk {
	return f.searchRs
}

func (f *fakeIndex) Count(_ context.Context) int {
	n := 0
	for _, batch := range f.added {
		n += len(batch)
	}
	return n
}

type fakeGenerator struct {
	prompts []string
	answer  string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ eino.GenerateOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestService(ex Extractor, cr Crawler, ix Index, gen Generator) *Service {
	return NewService(ex, cr, chunker.NewService(500, 100), ix, gen, 5, 0.3)
}

func guideEntry(url string) sitemap.Entry {
	return sitemap.Entry{URL: url, ContentType: "guide", Path: "/guide", Source: "sitemap"}
}

func TestIngestCountsOutcomes(t *testing.T) {
	entries := []sitemap.Entry{
		guideEntry("https://x.com/guide/a"),
		guideEntry("https://x.com/guide/b"),
		guideEntry("https://x.com/guide/c"),
	}
	crawler := &fakeCrawler{results: map[string]crawl.Result{
		"https://x.com/guide/a": {Entry: entries[0], Status: crawl.StatusSuccess, Content: "Agents validate output."},
		"https://x.com/guide/b": {Entry: entries[1], Status: crawl.StatusFailed, Error: "No content extracted"},
		"https://x.com/guide/c": {Entry: entries[2], Status: crawl.StatusError, Error: "HTTP 500"},
	}}
	ix := &fakeIndex{}
	svc := newTestService(&fakeExtractor{entries: entries}, crawler, ix, &fakeGenerator{})

	report := svc.Ingest(context.Background(), "https://x.com/sitemap.xml")

	require.Equal(t, Report{Attempted: 3, Succeeded: 1, Failed: 2}, report)
	require.Len(t, ix.added, 1, "only successful crawls are indexed")
}

func TestIngestEmptySitemapFailsGracefully(t *testing.T) {
	ix := &fakeIndex{}
	svc := newTestService(&fakeExtractor{}, &fakeCrawler{}, ix, &fakeGenerator{})

	report := svc.Ingest(context.Background(), "https://x.com/sitemap.xml")

	require.Equal(t, Report{}, report)
	require.Empty(t, ix.added)
}

func TestIngestIndexErrorCountsAsFailed(t *testing.T) {
	entries := []sitemap.Entry{guideEntry("https://x.com/guide/a")}
	crawler := &fakeCrawler{results: map[string]crawl.Result{
		"https://x.com/guide/a": {Entry: entries[0], Status: crawl.StatusSuccess, Content: "Some content."},
	}}
	ix := &fakeIndex{addErr: errors.New("storage down")}
	svc := newTestService(&fakeExtractor{entries: entries}, crawler, ix, &fakeGenerator{})

	report := svc.Ingest(context.Background(), "https://x.com/sitemap.xml")
	require.Equal(t, Report{Attempted: 1, Succeeded: 0, Failed: 1}, report)
}

func TestIngestAttachesDocumentMetadata(t *testing.T) {
	entry := sitemap.Entry{
		URL: "https://x.com/guide/a", ContentType: "guide", Path: "/guide/a", Source: "sitemap",
		Images: []sitemap.Image{
			{URL: "https://x.com/i1.png", Title: "One", Alt: "first"},
			{URL: "https://x.com/i2.png"},
		},
	}
	crawler := &fakeCrawler{results: map[string]crawl.Result{
		entry.URL: {Entry: entry, Status: crawl.StatusSuccess, Content: "Some content."},
	}}
	ix := &fakeIndex{}
	svc := newTestService(&fakeExtractor{entries: []sitemap.Entry{entry}}, crawler, ix, &fakeGenerator{})

	svc.Ingest(context.Background(), "https://x.com/sitemap.xml")

	require.Len(t, ix.added, 1)
	meta := ix.added[0][0].Metadata
	require.Equal(t, "https://x.com/guide/a", meta["url"])
	require.Equal(t, "guide", meta["type"])
	require.Equal(t, "/guide/a", meta["path"])
	require.Equal(t, "sitemap", meta["source"])
	require.Equal(t, "https://x.com/i1.png|One|first;https://x.com/i2.png||", meta["images"])
}

func TestAnswerEmptyIndexSkipsSynthesizer(t *testing.T) {
	gen := &fakeGenerator{answer: "should never be seen"}
	svc := newTestService(&fakeExtractor{}, &fakeCrawler{}, &fakeIndex{}, gen)

	answer := svc.Answer(context.Background(), "What is an agent?")

	require.Equal(t, prompts.NotEnoughInformation, answer)
	require.Empty(t, gen.prompts, "synthesizer must not be invoked on an empty index")
}

func TestAnswerGroundsPromptInRetrievedChunks(t *testing.T) {
	ix := &fakeIndex{searchRs: []chunker.Chunk{
		{Text: "Agents validate model output.", Metadata: map[string]string{"url": "https://x.com/guide/a"}},
		{Text: "Retries happen on failure.", Metadata: map[string]string{"url": "https://x.com/guide/b"}},
	}}
	gen := &fakeGenerator{answer: "Agents validate output and retry."}
	svc := newTestService(&fakeExtractor{}, &fakeCrawler{}, ix, gen)

	answer := svc.Answer(context.Background(), "What do agents do?")

	require.Equal(t, "Agents validate output and retry.", answer)
	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	require.Contains(t, prompt, "Source (https://x.com/guide/a):\nAgents validate model output.")
	require.Contains(t, prompt, "Source (https://x.com/guide/b):\nRetries happen on failure.")
	require.Contains(t, prompt, "Question: What do agents do?")
}

func TestAnswerSynthesizerFailureReturnsApology(t *testing.T) {
	ix := &fakeIndex{searchRs: []chunker.Chunk{
		{Text: "content", Metadata: map[string]string{"url": "https://x.com/guide/a"}},
	}}
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := newTestService(&fakeExtractor{}, &fakeCrawler{}, ix, gen)

	answer := svc.Answer(context.Background(), "question")
	require.Equal(t, prompts.GenerationApology, answer)
}
