package backfill

import (
	"time"
)

// JobType enumerates the supported backfill job variants.
type JobType string

const (
	JobTypeSeason    JobType = "season"
	JobTypeTeam      JobType = "team"
	JobTypeDateRange JobType = "date_range"
	JobTypeGame      JobType = "game"
)

// JobStatus represents the lifecycle state for a job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job is a queued or finished backfill run.
type Job struct {
	ID              string     `json:"job_id"`
	Spec            JobSpec    `json:"spec"`
	Status          JobStatus  `json:"status"`
	StatusMessage   string     `json:"status_message,omitempty"`
	ProgressCurrent int        `json:"progress_current"`
	ProgressTotal   int        `json:"progress_total"`
	GamesPublished  int        `json:"games_published"`
	LastError       string     `json:"last_error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Copy returns a shallow copy to prevent external mutation.
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	cpy := *j
	cpy.Spec.GameLinks = append([]string(nil), j.Spec.GameLinks...)
	return &cpy
}

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Type      JobType   `json:"type"`
	Season    int       `json:"season,omitempty"`
	Team      string    `json:"team,omitempty"`
	Start     time.Time `json:"start,omitempty"`
	End       time.Time `json:"end,omitempty"`
	GameLinks []string  `json:"game_links,omitempty"`
	DryRun    bool      `json:"dry_run"`
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnDateStart(date time.Time, index int, total int)
	OnGameProcessed(gameLink string, entries int)
	OnProgress(message string, current int, total int)
	OnJobComplete()
	OnJobError(err error)
}

// Result counts what a run covered.
type Result struct {
	Games   int      `json:"games"`
	Entries int      `json:"entries"`
	Teams   int      `json:"teams"`
	Planned []string `json:"planned,omitempty"`
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveJob *Job   `json:"active_job,omitempty"`
	History   []*Job `json:"recent_jobs,omitempty"`
}
