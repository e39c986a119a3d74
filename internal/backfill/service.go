package backfill

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fortuna/hoops/internal/logging"
	"github.com/fortuna/hoops/internal/schema"
)

// ErrQueueFull is returned by Enqueue when no more jobs can be accepted.
var ErrQueueFull = errors.New("backfill queue is full")

// ErrJobNotFound is returned by Get for an unknown job id.
var ErrJobNotFound = errors.New("backfill job not found")

// Request represents a backfill invocation request.
type Request struct {
	Season    int        `json:"season" validate:"omitempty,gte=1947,lte=2100"`
	Team      string     `json:"team" validate:"omitempty,len=3,alpha"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	GameLinks []string   `json:"game_links" validate:"omitempty,dive,required"`
	DryRun    bool       `json:"dry_run"`
}

// DeriveType infers the job type based on populated fields.
func (r Request) DeriveType() (JobType, error) {
	switch {
	case len(r.GameLinks) > 0:
		return JobTypeGame, nil
	case r.StartDate != nil && r.EndDate != nil:
		return JobTypeDateRange, nil
	case r.Team != "" && r.Season != 0:
		return JobTypeTeam, nil
	case r.Season != 0:
		return JobTypeSeason, nil
	}
	return "", errors.New("unable to determine job type from request")
}

// Service queues backfill jobs in memory and runs them one at a time.
type Service struct {
	runner   *Runner
	validate *validator.Validate
	logger   *zap.Logger

	historyLimit int
	queue        chan string

	mu     sync.Mutex
	jobs   map[string]*Job
	order  []string
	active string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time
}

// NewService constructs a Service. Call Start to launch the worker.
func NewService(runner *Runner, queueSize int, logger *zap.Logger) *Service {
	if queueSize <= 0 {
		queueSize = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		runner:       runner,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logging.OrNop(logger).Named("backfill"),
		historyLimit: 10,
		queue:        make(chan string, queueSize),
		jobs:         make(map[string]*Job),
		ctx:          ctx,
		cancel:       cancel,
		now:          time.Now,
	}
}

// Start launches the background worker loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops the worker and waits for the running job to return.
// Jobs still queued are marked cancelled.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.Status == JobStatusQueued {
			s.finish(job, JobStatusCancelled, "Cancelled at shutdown", nil)
		}
	}
	s.prune()
	return nil
}

// Enqueue validates req and queues a job for it.
func (s *Service) Enqueue(ctx context.Context, req Request) (*Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req.Team = strings.ToUpper(strings.TrimSpace(req.Team))
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "invalid backfill request")
	}
	if req.Team != "" {
		code, ok := schema.CanonicalCode(req.Team)
		if !ok {
			return nil, &schema.Error{Kind: schema.KindUnknownTeam, Document: "team", Row: -1, Value: req.Team}
		}
		req.Team = code
	}

	jobType, err := req.DeriveType()
	if err != nil {
		return nil, err
	}

	spec := JobSpec{
		Type:      jobType,
		Season:    req.Season,
		Team:      req.Team,
		GameLinks: req.GameLinks,
		DryRun:    req.DryRun,
	}
	if jobType == JobTypeDateRange {
		spec.Start = truncateDate(*req.StartDate)
		spec.End = truncateDate(*req.EndDate)
		if spec.End.Before(spec.Start) {
			return nil, errors.New("end_date is before start_date")
		}
	}

	now := s.now()
	job := &Job{
		ID:            uuid.NewString(),
		Spec:          spec,
		Status:        JobStatusQueued,
		StatusMessage: "Queued",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if jobType == JobTypeGame {
		job.ProgressTotal = len(spec.GameLinks)
	}

	s.mu.Lock()
	select {
	case s.queue <- job.ID:
	default:
		s.mu.Unlock()
		return nil, ErrQueueFull
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.mu.Unlock()

	s.logger.Info("backfill job queued",
		zap.String("job_id", job.ID),
		zap.String("type", string(jobType)),
		zap.Int("season", spec.Season),
		zap.String("team", spec.Team),
	)
	return job.Copy(), nil
}

// Get returns a snapshot of one job.
func (s *Service) Get(id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.Wrapf(ErrJobNotFound, "job %s", id)
	}
	return job.Copy(), nil
}

// GetStatus returns the currently running job plus recent history, newest
// first.
func (s *Service) GetStatus(context.Context) (*StatusSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &StatusSummary{}
	if job, ok := s.jobs[s.active]; ok {
		summary.ActiveJob = job.Copy()
	}

	history := make([]*Job, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		history = append(history, s.jobs[s.order[i]].Copy())
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].CreatedAt.After(history[j].CreatedAt) })
	if len(history) > s.historyLimit {
		history = history[:s.historyLimit]
	}
	summary.History = history
	return summary, nil
}

func (s *Service) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case id := <-s.queue:
			s.executeJob(id)
		}
	}
}

func (s *Service) executeJob(id string) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok || job.Status != JobStatusQueued {
		s.mu.Unlock()
		return
	}
	started := s.now()
	job.Status = JobStatusRunning
	job.StatusMessage = "Starting job..."
	job.StartedAt = &started
	job.UpdatedAt = started
	s.active = id
	spec := job.Spec
	s.mu.Unlock()

	log := s.logger.With(zap.String("job_id", id))
	log.Info("backfill job started", zap.String("type", string(spec.Type)))

	res, err := s.runner.Run(s.ctx, spec, &jobReporter{svc: s, jobID: id, logger: log})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
	job.GamesPublished = res.Games
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		s.finish(job, JobStatusCancelled, "Job cancelled", err)
		log.Warn("backfill job cancelled", zap.Int("games", res.Games))
	case err != nil:
		s.finish(job, JobStatusFailed, "Job failed", err)
		log.Error("backfill job failed", zap.Error(err), zap.Int("games", res.Games))
	default:
		msg := fmt.Sprintf("Job completed: %d games, %d player lines, %d teams", res.Games, res.Entries, res.Teams)
		if spec.DryRun {
			msg = fmt.Sprintf("Dry run: %d games planned", len(res.Planned))
		}
		s.finish(job, JobStatusCompleted, msg, nil)
		log.Info("backfill job completed",
			zap.Int("games", res.Games),
			zap.Int("entries", res.Entries),
			zap.Int("teams", res.Teams),
		)
	}
	s.prune()
}

// finish must be called with s.mu held.
func (s *Service) finish(job *Job, status JobStatus, message string, err error) {
	now := s.now()
	job.Status = status
	job.StatusMessage = message
	job.UpdatedAt = now
	job.CompletedAt = &now
	if err != nil {
		job.LastError = err.Error()
	}
}

// prune forgets finished jobs beyond historyLimit, oldest first. Queued and
// running jobs are always kept. Must be called with s.mu held.
func (s *Service) prune() {
	kept := make([]string, 0, len(s.order))
	finished := 0
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		job := s.jobs[id]
		if job.CompletedAt != nil {
			finished++
			if finished > s.historyLimit {
				delete(s.jobs, id)
				continue
			}
		}
		kept = append(kept, id)
	}
	slices.Reverse(kept)
	s.order = kept
}

func (s *Service) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = s.now()
	}
}

type jobReporter struct {
	svc    *Service
	jobID  string
	logger *zap.Logger
}

func (r *jobReporter) OnJobStart(spec JobSpec) {
	r.svc.update(r.jobID, func(j *Job) { j.StatusMessage = "Job starting" })
}

func (r *jobReporter) OnDateStart(date time.Time, index int, total int) {
	msg := fmt.Sprintf("Processing %s (%d/%d)", date.Format("Jan 2, 2006"), index+1, total)
	r.svc.update(r.jobID, func(j *Job) { j.StatusMessage = msg })
	r.logger.Debug("backfill date", zap.Time("date", date), zap.Int("index", index), zap.Int("total", total))
}

func (r *jobReporter) OnGameProcessed(gameLink string, entries int) {
	r.svc.update(r.jobID, func(j *Job) { j.GamesPublished++ })
	r.logger.Debug("backfill game published", zap.String("game", gameLink), zap.Int("entries", entries))
}

func (r *jobReporter) OnProgress(message string, current int, total int) {
	r.svc.update(r.jobID, func(j *Job) {
		j.StatusMessage = message
		j.ProgressCurrent = current
		if total > 0 {
			j.ProgressTotal = total
		}
	})
}

func (r *jobReporter) OnJobComplete() {
	r.svc.update(r.jobID, func(j *Job) { j.ProgressCurrent = j.ProgressTotal })
}

func (r *jobReporter) OnJobError(err error) {
	r.logger.Warn("backfill job error", zap.Error(err))
}
