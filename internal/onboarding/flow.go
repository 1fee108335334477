// Package onboarding drives the multi-step profile onboarding: personal
// identity, education, financial, interests and residency, in that order.
package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"cash4edu/internal/models"
	"cash4edu/internal/notify"

	"go.uber.org/zap"
)

type Step int

const (
	StepPersonal Step = iota
	StepEducation
	StepFinancial
	StepInterests
	StepResidency
	stepCount
)

var stepNames = [...]string{"personal", "education", "financial", "interests", "residency"}

func (s Step) String() string {
	if s < 0 || s >= stepCount {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep maps a step name back to its Step.
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStep, name)
}

var (
	ErrUnknownStep = errors.New("unknown onboarding step")
	ErrStepLocked  = errors.New("previous onboarding steps are not complete")
	ErrWrongForm   = errors.New("form does not match step")
	ErrValidation  = errors.New("form validation failed")
	ErrNoUser      = errors.New("no persisted user")
	ErrNoReference = errors.New("step has no reference data")
)

// Backend is the slice of the API client onboarding uses.
type Backend interface {
	UpdateProfile(ctx context.Context, id string, patch any) (*models.Envelope, error)
	SubmitEducation(ctx context.Context, form models.EducationForm) (*models.Envelope, error)
	SubmitFinancial(ctx context.Context, form models.FinancialForm) (*models.Envelope, error)
	SubmitResidence(ctx context.Context, form models.ResidencyForm) (*models.Envelope, error)
	ReferenceData(ctx context.Context, group, kind string) ([]models.ReferenceItem, error)
}

// Users reads the persisted user record.
type Users interface {
	GetUserData(ctx context.Context) models.UserRecord
}

// Refresher reloads the session profile after a step is saved.
type Refresher interface {
	ForceRefreshProfile(ctx context.Context) (*models.Profile, error)
}

// Progress is the state of the flow.
type Progress struct {
	Current    string   `json:"current"`
	Completed  []string `json:"completed"`
	Percentage float64  `json:"completion_percentage"`
	Done       bool     `json:"done"`
}

// Flow tracks one user's way through onboarding. Safe for concurrent use.
type Flow struct {
	backend   Backend
	users     Users
	refresher Refresher
	notifier  notify.Notifier
	logger    *zap.Logger

	mu         sync.Mutex
	completed  [stepCount]bool
	percentage float64
}

func NewFlow(backend Backend, users Users, refresher Refresher, notifier notify.Notifier, logger *zap.Logger) *Flow {
	return &Flow{
		backend:   backend,
		users:     users,
		refresher: refresher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Resume seeds the flow from a loaded profile: steps whose fields are
// already filled count as complete and the server's percentage is adopted.
func (f *Flow) Resume(p *models.Profile) {
	if p == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[StepPersonal] = p.Name != ""
	f.completed[StepEducation] = p.Institution != "" && p.FieldOfStudy != ""
	f.completed[StepFinancial] = p.AnnualIncomeRange != ""
	f.completed[StepInterests] = len(p.Interests) > 0
	f.completed[StepResidency] = p.State != "" && p.ResidencyStatus != ""
	f.percentage = p.CompletionPercentage
	if f.percentage == 0 {
		f.percentage = f.localPercentage()
	}
}

// Reset forgets all progress, as on logout.
func (f *Flow) Reset() {
	f.mu.Lock()
	f.completed = [stepCount]bool{}
	f.percentage = 0
	f.mu.Unlock()
}

func (f *Flow) Progress() Progress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress()
}

func (f *Flow) progress() Progress {
	p := Progress{Completed: []string{}, Percentage: f.percentage}
	cur := f.current()
	if cur == stepCount {
		p.Done = true
	} else {
		p.Current = cur.String()
	}
	for i, done := range f.completed {
		if done {
			p.Completed = append(p.Completed, Step(i).String())
		}
	}
	return p
}

// current is the first incomplete step, or stepCount when all are done.
func (f *Flow) current() Step {
	for i, done := range f.completed {
		if !done {
			return Step(i)
		}
	}
	return stepCount
}

func (f *Flow) localPercentage() float64 {
	n := 0
	for _, done := range f.completed {
		if done {
			n++
		}
	}
	return math.Round(float64(n) / float64(stepCount) * 100)
}

// Submit validates form for step and sends it. Steps may be revisited but
// not skipped. An invalid form is reported by toast and never sent.
func (f *Flow) Submit(ctx context.Context, step Step, form any) (Progress, error) {
	if step < 0 || step >= stepCount {
		return Progress{}, fmt.Errorf("%w: %d", ErrUnknownStep, int(step))
	}
	f.mu.Lock()
	locked := step > f.current()
	f.mu.Unlock()
	if locked {
		notify.Error(f.notifier, "Not yet", "Please complete the previous steps first")
		return f.Progress(), ErrStepLocked
	}

	if err := models.Validate(form); err != nil {
		notify.Error(f.notifier, "Validation Error", models.ValidationMessage(err))
		return f.Progress(), fmt.Errorf("%w: %w", ErrValidation, err)
	}

	env, err := f.send(ctx, step, form)
	if err != nil {
		return f.Progress(), err
	}

	f.mu.Lock()
	f.completed[step] = true
	if pct, ok := completionFrom(env); ok {
		f.percentage = pct
	} else {
		f.percentage = f.localPercentage()
	}
	progress := f.progress()
	f.mu.Unlock()

	f.logger.Info("Flow.Submit(): step saved",
		zap.Stringer("step", step),
		zap.Float64("completion_percentage", progress.Percentage))
	notify.Success(f.notifier, "Saved", fmt.Sprintf("Your profile is %.0f%% complete", progress.Percentage))

	if f.refresher != nil {
		if _, err := f.refresher.ForceRefreshProfile(ctx); err != nil {
			f.logger.Warn("Flow.Submit(): profile refresh after step failed", zap.Error(err))
		}
	}
	return progress, nil
}

func (f *Flow) send(ctx context.Context, step Step, form any) (*models.Envelope, error) {
	switch step {
	case StepPersonal:
		v, ok := form.(models.PersonalForm)
		if !ok {
			return nil, ErrWrongForm
		}
		id, err := f.userID(ctx)
		if err != nil {
			return nil, err
		}
		return f.backend.UpdateProfile(ctx, id, v)
	case StepEducation:
		v, ok := form.(models.EducationForm)
		if !ok {
			return nil, ErrWrongForm
		}
		return f.backend.SubmitEducation(ctx, v)
	case StepFinancial:
		v, ok := form.(models.FinancialForm)
		if !ok {
			return nil, ErrWrongForm
		}
		return f.backend.SubmitFinancial(ctx, v)
	case StepInterests:
		v, ok := form.(models.InterestsForm)
		if !ok {
			return nil, ErrWrongForm
		}
		id, err := f.userID(ctx)
		if err != nil {
			return nil, err
		}
		return f.backend.UpdateProfile(ctx, id, v)
	default:
		v, ok := form.(models.ResidencyForm)
		if !ok {
			return nil, ErrWrongForm
		}
		return f.backend.SubmitResidence(ctx, v)
	}
}

func (f *Flow) userID(ctx context.Context) (string, error) {
	id := f.users.GetUserData(ctx).ID()
	if id == "" {
		return "", ErrNoUser
	}
	return id, nil
}

// ReferenceData lists choices for a step's pickers, e.g. education
// institutions or financial income ranges.
func (f *Flow) ReferenceData(ctx context.Context, step Step, kind string) ([]models.ReferenceItem, error) {
	switch step {
	case StepEducation:
		return f.backend.ReferenceData(ctx, "education-profile", kind)
	case StepFinancial:
		return f.backend.ReferenceData(ctx, "financial-profile", kind)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoReference, step)
}

func completionFrom(env *models.Envelope) (float64, bool) {
	if !env.HasData() {
		return 0, false
	}
	var payload struct {
		CompletionPercentage *float64 `json:"completion_percentage"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.CompletionPercentage == nil {
		return 0, false
	}
	pct := *payload.CompletionPercentage
	if pct < 0 || pct > 100 {
		return 0, false
	}
	return pct, true
}

// DecodeForm decodes a JSON body into the form type of step.
func DecodeForm(step Step, raw []byte) (any, error) {
	switch step {
	case StepPersonal:
		return decode[models.PersonalForm](raw)
	case StepEducation:
		return decode[models.EducationForm](raw)
	case StepFinancial:
		return decode[models.FinancialForm](raw)
	case StepInterests:
		return decode[models.InterestsForm](raw)
	case StepResidency:
		return decode[models.ResidencyForm](raw)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownStep, int(step))
}

func decode[T any](raw []byte) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
