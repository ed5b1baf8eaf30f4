package ingest

import (
	"context"
	"testing"

	"askweb/internal/core/rag"

	"github.com/stretchr/testify/require"
)

type fakeIngestor struct {
	report rag.Report
	panics bool
}

func (f *fakeIngestor) Ingest(_ context.Context, _ string) rag.Report {
	if f.panics {
		panic("connection reset by peer")
	}
	return f.report
}

type eventRecorder struct {
	events []StatusEvent
	docs   []int
}

func (r *eventRecorder) emit(status Status, message string, docs int) {
	r.events = append(r.events, StatusEvent{Status: status, Message: message})
	r.docs = append(r.docs, docs)
}

func runWith(ing Ingestor) *eventRecorder {
	svc := NewService(nil, nil, ing, 0)
	rec := &eventRecorder{}
	svc.runJob(context.Background(), "https://x.com/sitemap.xml", rec.emit)
	return rec
}

func TestRunJobSuccessLifecycle(t *testing.T) {
	rec := runWith(&fakeIngestor{report: rag.Report{Attempted: 2, Succeeded: 2}})

	require.Len(t, rec.events, 2)
	require.Equal(t, StatusRunning, rec.events[0].Status)
	require.Contains(t, rec.events[0].Message, "Started scraping https://x.com/sitemap.xml")
	require.Equal(t, StatusCompleted, rec.events[1].Status)
	require.Contains(t, rec.events[1].Message, "2 documents indexed")
	require.Equal(t, 2, rec.docs[1])
}

func TestRunJobNoDocumentsIsFailed(t *testing.T) {
	rec := runWith(&fakeIngestor{report: rag.Report{Attempted: 3, Failed: 3}})

	require.Len(t, rec.events, 2)
	require.Equal(t, StatusRunning, rec.events[0].Status)
	require.Equal(t, StatusFailed, rec.events[1].Status)
	require.Equal(t, "Scraping failed", rec.events[1].Message)
}

func TestRunJobCrashBecomesErrorEvent(t *testing.T) {
	rec := runWith(&fakeIngestor{panics: true})

	require.Len(t, rec.events, 2)
	require.Equal(t, StatusRunning, rec.events[0].Status)
	require.Equal(t, StatusError, rec.events[1].Status)
	require.Contains(t, rec.events[1].Message, "connection reset by peer")
}

func TestRunJobEmitsExactlyOneTerminalEvent(t *testing.T) {
	for name, ing := range map[string]Ingestor{
		"completed": &fakeIngestor{report: rag.Report{Succeeded: 1}},
		"failed":    &fakeIngestor{},
		"error":     &fakeIngestor{panics: true},
	} {
		t.Run(name, func(t *testing.T) {
			rec := runWith(ing)

			running, terminal := 0, 0
			for i, ev := range rec.events {
				switch {
				case ev.Status == StatusRunning:
					running++
					require.Equal(t, 0, terminal, "running must precede any terminal event")
				case ev.Status.Terminal():
					terminal++
					require.Equal(t, len(rec.events)-1, i, "nothing may follow the terminal event")
				}
			}
			require.Equal(t, 1, running)
			require.Equal(t, 1, terminal)
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	require.False(t, StatusPending.Terminal())
	require.False(t, StatusRunning.Terminal())
	require.True(t, StatusCompleted.Terminal())
	require.True(t, StatusFailed.Terminal())
	require.True(t, StatusError.Terminal())
}
