// Package wizard holds the state of the multi-step job creation form. Every
// step's sub-form is persisted on its own so an interrupted session resumes
// where it stopped.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/constructsync/dashboard/internal/api"
	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/logger"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/storage"
)

type Step int

const (
	GeneralInfo Step = iota
	TeamAssignment
	SiteInformation
	Submitted
)

func (s Step) String() string {
	switch s {
	case GeneralInfo:
		return "General Info"
	case TeamAssignment:
		return "Team Assignment"
	case SiteInformation:
		return "Site Information"
	case Submitted:
		return "Submitted"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// DraftKeys are the store keys holding the three step drafts.
var DraftKeys = []string{storage.KeyAddJobGeneral, storage.KeyAddJobTeam, storage.KeyAddJobSite}

// JobAPI is the part of the API client the wizard submits through.
type JobAPI interface {
	CreateJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error)
	UpdateJob(ctx context.Context, id models.ID, req *models.UpdateJobRequest) (*models.Job, error)
}

// Invalidator is satisfied by the collection cache.
type Invalidator interface {
	Invalidate(keys ...string)
}

// Outcome describes how far a submission got.
type Outcome struct {
	JobID    models.ID
	Created  bool
	Assigned bool
}

type Wizard struct {
	store storage.Store
	jobs  JobAPI
	cache Invalidator

	assignRetries int
	assignWait    time.Duration

	step    Step
	general General
	team    Team
	site    Site
	pending *pending
}

type Option func(*Wizard)

// WithInvalidator sets the cache told about a newly created job.
func WithInvalidator(c Invalidator) Option {
	return func(w *Wizard) { w.cache = c }
}

// WithAssignRetries bounds the retries of the assignment PATCH.
func WithAssignRetries(count int, wait time.Duration) Option {
	return func(w *Wizard) {
		w.assignRetries = count
		w.assignWait = wait
	}
}

func New(store storage.Store, jobs JobAPI, opts ...Option) *Wizard {
	w := &Wizard{
		store:         store,
		jobs:          jobs,
		assignRetries: 2,
		assignWait:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) Step() Step       { return w.step }
func (w *Wizard) General() General { return w.general }
func (w *Wizard) Team() Team       { return w.team }
func (w *Wizard) Site() Site       { return w.site }

// PendingJob returns the id of a created job still waiting for its
// assignment, if any.
func (w *Wizard) PendingJob() (models.ID, bool) {
	if w.pending == nil {
		return 0, false
	}
	return w.pending.JobID, true
}

// Load restores every draft found in the store. Missing drafts stay empty.
func (w *Wizard) Load(ctx context.Context) error {
	if _, err := storage.GetJSON(ctx, w.store, storage.KeyAddJobGeneral, &w.general); err != nil {
		return err
	}
	if _, err := storage.GetJSON(ctx, w.store, storage.KeyAddJobTeam, &w.team); err != nil {
		return err
	}
	if _, err := storage.GetJSON(ctx, w.store, storage.KeyAddJobSite, &w.site); err != nil {
		return err
	}

	var p pending
	ok, err := storage.GetJSON(ctx, w.store, storage.KeyPendingAssign, &p)
	if err != nil {
		return err
	}
	if ok {
		w.pending = &p
	}
	return nil
}

// SetGeneral replaces the general draft and persists it.
func (w *Wizard) SetGeneral(ctx context.Context, g General) error {
	w.general = g
	return storage.SetJSON(ctx, w.store, storage.KeyAddJobGeneral, g)
}

// SetTeam replaces the assignment draft and persists it.
func (w *Wizard) SetTeam(ctx context.Context, t Team) error {
	w.team = t
	return storage.SetJSON(ctx, w.store, storage.KeyAddJobTeam, t)
}

// SetSite replaces the site draft and persists it.
func (w *Wizard) SetSite(ctx context.Context, s Site) error {
	w.site = s
	return storage.SetJSON(ctx, w.store, storage.KeyAddJobSite, s)
}

// Save persists the current step's draft.
func (w *Wizard) Save(ctx context.Context) error {
	switch w.step {
	case GeneralInfo:
		return storage.SetJSON(ctx, w.store, storage.KeyAddJobGeneral, w.general)
	case TeamAssignment:
		return storage.SetJSON(ctx, w.store, storage.KeyAddJobTeam, w.team)
	case SiteInformation:
		return storage.SetJSON(ctx, w.store, storage.KeyAddJobSite, w.site)
	}
	return nil
}

// Validate checks the current step's draft.
func (w *Wizard) Validate() error {
	switch w.step {
	case GeneralInfo:
		return w.check(&w.general)
	case SiteInformation:
		return w.check(&w.site)
	}
	return nil
}

// Next validates and saves the current step, then moves forward.
func (w *Wizard) Next(ctx context.Context) error {
	if w.step >= SiteInformation {
		return nil
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if err := w.Save(ctx); err != nil {
		return err
	}
	w.step++
	return nil
}

// Back saves the current step and moves to the previous one. Later steps
// keep their data.
func (w *Wizard) Back(ctx context.Context) error {
	if w.step == GeneralInfo || w.step == Submitted {
		return nil
	}
	if err := w.Save(ctx); err != nil {
		return err
	}
	w.step--
	return nil
}

// Finish submits the job. All three drafts are merged into one POST; if an
// assignment was entered it is also sent as a PATCH against the new id. A
// PATCH failure does not undo the creation: the id is remembered so a later
// Finish or ResumeAssignment only repeats the PATCH. Drafts are cleared only
// when both calls succeed.
func (w *Wizard) Finish(ctx context.Context) (Outcome, error) {
	if w.step == Submitted {
		return Outcome{}, apperrors.ErrWizardSubmitted
	}
	if w.pending != nil {
		return w.ResumeAssignment(ctx)
	}

	if err := w.check(&w.general); err != nil {
		return Outcome{}, err
	}
	if err := w.check(&w.site); err != nil {
		return Outcome{}, err
	}
	for _, key := range DraftKeys {
		if err := w.saveKey(ctx, key); err != nil {
			return Outcome{}, err
		}
	}

	log := logger.WithContext(ctx).WithField("operation", "create_job")

	job, err := w.jobs.CreateJob(ctx, merge(w.general, w.team, w.site))
	if err != nil {
		log.WithError(err).Warn("job creation failed")
		return Outcome{}, err
	}
	out := Outcome{JobID: job.ID, Created: true}
	w.invalidate()
	log.WithField("job_id", job.ID).Info("job created")

	if !w.team.HasAssignment() {
		return out, w.complete(ctx, out.JobID)
	}

	w.pending = &pending{JobID: job.ID}
	if err := storage.SetJSON(ctx, w.store, storage.KeyPendingAssign, w.pending); err != nil {
		log.WithError(err).Warn("failed to record pending assignment")
	}
	return w.assign(ctx, out)
}

// ResumeAssignment repeats only the assignment PATCH for a job created by an
// earlier Finish.
func (w *Wizard) ResumeAssignment(ctx context.Context) (Outcome, error) {
	if w.pending == nil {
		return Outcome{}, apperrors.ErrNoPendingAssignment
	}
	return w.assign(ctx, Outcome{JobID: w.pending.JobID, Created: true})
}

// Discard clears every draft and returns to the first step.
func (w *Wizard) Discard(ctx context.Context) error {
	keys := append(append([]string{}, DraftKeys...), storage.KeyPendingAssign)
	if err := w.store.Delete(ctx, keys...); err != nil {
		return err
	}
	*w = Wizard{
		store:         w.store,
		jobs:          w.jobs,
		cache:         w.cache,
		assignRetries: w.assignRetries,
		assignWait:    w.assignWait,
	}
	return nil
}

func (w *Wizard) assign(ctx context.Context, out Outcome) (Outcome, error) {
	log := logger.WithContext(ctx).WithFields(map[string]interface{}{
		"operation": "assign_job",
		"job_id":    out.JobID,
	})

	var policy backoff.BackOff = backoff.NewConstantBackOff(w.assignWait)
	policy = backoff.WithMaxRetries(policy, uint64(w.assignRetries))
	policy = backoff.WithContext(policy, ctx)

	err := backoff.Retry(func() error {
		_, err := w.jobs.UpdateJob(ctx, out.JobID, w.team.update())
		if err != nil && !apperrors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		log.WithError(err).Warn("job created but assignment failed")
		return out, &apperrors.PartialFailureError{
			Operation:  "create job",
			Completed:  "job creation",
			ResourceID: out.JobID.String(),
			Err:        err,
		}
	}

	out.Assigned = true
	w.invalidate()
	log.Info("job assigned")
	return out, w.complete(ctx, out.JobID)
}

func (w *Wizard) complete(ctx context.Context, jobID models.ID) error {
	keys := append(append([]string{}, DraftKeys...), storage.KeyPendingAssign)
	if err := w.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("job %s submitted but drafts were not cleared: %w", jobID, err)
	}
	w.general, w.team, w.site, w.pending = General{}, Team{}, Site{}, nil
	w.step = Submitted
	return nil
}

func (w *Wizard) saveKey(ctx context.Context, key string) error {
	switch key {
	case storage.KeyAddJobGeneral:
		return storage.SetJSON(ctx, w.store, key, w.general)
	case storage.KeyAddJobTeam:
		return storage.SetJSON(ctx, w.store, key, w.team)
	default:
		return storage.SetJSON(ctx, w.store, key, w.site)
	}
}

func (w *Wizard) invalidate() {
	if w.cache != nil {
		w.cache.Invalidate(api.KeyJobs)
	}
}

func (w *Wizard) check(v interface{}) error {
	return api.Validate(v)
}
