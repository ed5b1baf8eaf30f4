package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"askweb/internal/core/rag"
	"askweb/internal/logger"
	rds "askweb/internal/platform/redis"
	tasks "askweb/internal/platform/tasks"

	"github.com/hibiken/asynq"
)

// Ingestor runs one crawl-then-index pass for a site.
type Ingestor interface {
	Ingest(ctx context.Context, sitemapURL string) rag.Report
}

// Service is the job orchestrator. Jobs execute inside asynq worker tasks,
// isolated from the HTTP caller; the only communication path back is the
// per-job Redis event list, drained non-blockingly by Poll.
type Service struct {
	log        *logger.Logger
	redis      *rds.Service
	tasks      *tasks.Client
	ingestor   Ingestor
	maxRetries int
}

func NewService(redis *rds.Service, taskClient *tasks.Client, ingestor Ingestor, maxRetries int) *Service {
	return &Service{
		log:        logger.New("IngestService"),
		redis:      redis,
		tasks:      taskClient,
		ingestor:   ingestor,
		maxRetries: maxRetries,
	}
}

type ingestTaskPayload struct {
	JobID string `json:"job_id"`
	URL   string `json:"url"`
}

func jobKey(id string) string    { return "ingest:job:" + id }
func eventsKey(id string) string { return "ingest:events:" + id }

func ttl(s Status) int {
	if s.Terminal() {
		return 3600
	}
	return 600
}

// Start registers the job as pending and enqueues the background task.
// A job already registered under the same name is superseded: its record is
// overwritten and any undrained events are discarded.
func (s *Service) Start(ctx context.Context, name, url string) (*Job, error) {
	job := Job{JobID: name, URL: url, Status: StatusPending}
	if err := s.redis.QueueDelete(ctx, eventsKey(name)); err != nil {
		return nil, err
	}
	if err := s.redis.CacheSet(ctx, jobKey(name), job, ttl(StatusPending)); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(ingestTaskPayload{JobID: name, URL: url})
	task := asynq.NewTask(tasks.TaskTypeIngest, payload)
	if err := s.tasks.Enqueue(task, "default", s.maxRetries); err != nil {
		return nil, err
	}
	s.log.LogInfof("enqueued ingest job %s for %s", name, url)
	return &job, nil
}

// GetJob returns the registry record for a job.
func (s *Service) GetJob(ctx context.Context, name string) (*Job, error) {
	var job Job
	if err := s.redis.CacheGet(ctx, jobKey(name), &job); err != nil {
		return nil, fmt.Errorf("job not found: %s", name)
	}
	return &job, nil
}

// Poll drains all status events produced since the last poll. Non-blocking;
// already-drained events are never observed again. After a terminal event
// the channel stays empty.
func (s *Service) Poll(ctx context.Context, name string) ([]StatusEvent, error) {
	raw, err := s.redis.QueueDrain(ctx, eventsKey(name))
	if err != nil {
		return nil, err
	}
	events := make([]StatusEvent, 0, len(raw))
	for _, b := range raw {
		var ev StatusEvent
		if err := json.Unmarshal(b, &ev); err != nil {
			s.log.LogErrorf("decode status event for %s: %v", name, err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// HandleIngestTask is the asynq worker entry point. It never returns an
// error: a crash inside the run is caught at this boundary and converted to
// a terminal error event, and asynq must not re-run the job afterwards.
func (s *Service) HandleIngestTask(ctx context.Context, task *asynq.Task) error {
	var p ingestTaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		s.log.LogErrorf("decode ingest payload: %v", err)
		return nil
	}

	emit := func(status Status, message string, docs int) {
		job := Job{JobID: p.JobID, URL: p.URL, Status: status, DocumentCount: docs}
		if err := s.redis.CacheSet(ctx, jobKey(p.JobID), job, ttl(status)); err != nil {
			s.log.LogErrorf("store job %s: %v", p.JobID, err)
		}
		ev := StatusEvent{Status: status, Message: message}
		if err := s.redis.QueuePush(ctx, eventsKey(p.JobID), ev, ttl(status)); err != nil {
			s.log.LogErrorf("push event for %s: %v", p.JobID, err)
		}
	}

	s.log.LogInfof("processing ingest job %s for %s", p.JobID, p.URL)
	s.runJob(ctx, p.URL, emit)
	return nil
}

// runJob executes one job and reports its lifecycle through emit: exactly
// one running event, then exactly one terminal event. Per-URL crawl
// failures inside Ingest never abort the run; only a panic does, and that
// becomes the terminal error event.
func (s *Service) runJob(ctx context.Context, url string, emit func(Status, string, int)) {
	docs := 0
	defer func() {
		if r := recover(); r != nil {
			s.log.LogErrorf("ingest worker crashed: %v", r)
			emit(StatusError, fmt.Sprintf("%v", r), docs)
		}
	}()

	emit(StatusRunning, fmt.Sprintf("Started scraping %s", url), 0)

	report := s.ingestor.Ingest(ctx, url)
	docs = report.Succeeded
	if report.Succeeded > 0 {
		emit(StatusCompleted, fmt.Sprintf("Scraping completed successfully (%d documents indexed)", report.Succeeded), docs)
		return
	}
	emit(StatusFailed, "Scraping failed", 0)
}
