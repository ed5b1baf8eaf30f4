package chunker

import (
	"strings"

	"askweb/internal/logger"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunk is a bounded, overlapping slice of a document's cleaned text plus
// the metadata inherited from its source document.
type Chunk struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

type Service struct {
	log      *logger.Logger
	splitter textsplitter.TextSplitter
}

// NewService builds a chunker with the given target size and overlap.
// Splitting prefers paragraph breaks, then lines, then sentence punctuation,
// then word boundaries, falling back to a hard cut.
func NewService(chunkSize, chunkOverlap int) *Service {
	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", ", ", " ", ""}),
	)
	return &Service{log: logger.New("Chunker"), splitter: ts}
}

// Clean trims every line and collapses runs of whitespace, so that chunk
// boundaries are computed over normalized text.
func (s *Service) Clean(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(strings.Fields(strings.Join(kept, "\n")), " ")
}

// Split cleans the text and cuts it into overlapping chunks, each carrying
// a copy of the document metadata.
func (s *Service) Split(text string, metadata map[string]string) []Chunk {
	cleaned := s.Clean(text)
	if cleaned == "" {
		return nil
	}

	parts, err := s.splitter.SplitText(cleaned)
	if err != nil {
		s.log.LogErrorf("split text: %v", err)
		return nil
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, part := range parts {
		meta := make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
		chunks = append(chunks, Chunk{Text: part, Metadata: meta})
	}
	s.log.LogDebugf("split document into %d chunks", len(chunks))
	return chunks
}
