package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"resumepro/internal/credits"
	"resumepro/internal/drafts"
	"resumepro/internal/records"
	"resumepro/internal/shared/metrics"
	"resumepro/internal/shared/telemetry"
	"resumepro/resume/model"
	"resumepro/resume/render"
	"resumepro/resume/templates"
)

// DefaultAutosaveDelay is the debounce window between the last change and the draft write.
const DefaultAutosaveDelay = time.Second

const autosaveTimeout = 10 * time.Second

// Gateway is the remote surface finalize needs.
type Gateway interface {
	CreditBalance(ctx context.Context, userID string) (credits.Balance, error)
	DeductCredits(ctx context.Context, userID string, n int) (credits.Balance, error)
	InsertRow(ctx context.Context, table, userID string, payload any) (records.Record, error)
}

type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Deps are shared by every session a Manager creates.
type Deps struct {
	Drafts        drafts.Store
	Gateway       Gateway
	Catalog       *templates.Catalog
	AutosaveDelay time.Duration

	afterFunc afterFunc
	now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Catalog == nil {
		d.Catalog = templates.Default()
	}
	if d.AutosaveDelay <= 0 {
		d.AutosaveDelay = DefaultAutosaveDelay
	}
	if d.afterFunc == nil {
		d.afterFunc = realAfterFunc
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// State is a snapshot of a session.
type State struct {
	Step        Step                 `json:"step"`
	StepIndex   int                  `json:"stepIndex"`
	TotalSteps  int                  `json:"totalSteps"`
	Steps       []Step               `json:"steps"`
	CanAdvance  bool                 `json:"canAdvance"`
	CanRetreat  bool                 `json:"canRetreat"`
	Document    model.Document       `json:"document"`
	Template    templates.Descriptor `json:"template"`
	SavePending bool                 `json:"savePending"`
	LastSavedAt *time.Time           `json:"lastSavedAt,omitempty"`
}

// Artifact is the downloadable result of Finalize.
type Artifact struct {
	FileName         string `json:"fileName"`
	Data             []byte `json:"-"`
	RecordID         string `json:"recordId"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

// Session is one user's in-progress resume. It is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	deps   Deps
	userID string

	step     int
	doc      model.Document
	template templates.Descriptor

	timer     timer
	gen       uint64
	dirty     bool
	lastSaved time.Time
	closed    bool
}

func newSession(ctx context.Context, userID string, deps Deps) *Session {
	s := &Session{deps: deps.withDefaults(), userID: userID}
	s.LoadTemplate(ctx)
	return s
}

// UserID returns the owner of the session.
func (s *Session) UserID() string { return s.userID }

// LoadTemplate resolves the chosen template and initializes the document from its
// structure, then restores a stored draft over it when one parses.
func (s *Session) LoadTemplate(ctx context.Context) {
	tpl := s.selectedTemplate(ctx)
	doc := tpl.Structure.Clone()
	if draft, ok := s.storedDraft(ctx); ok {
		doc = draft
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = tpl
	s.doc = doc
	s.step = 0
}

func (s *Session) selectedTemplate(ctx context.Context) templates.Descriptor {
	first, _ := s.deps.Catalog.First()
	raw, err := s.deps.Drafts.Get(ctx, s.userID, drafts.KeySelectedTemplate)
	if err != nil {
		if !errors.Is(err, drafts.ErrNotFound) {
			telemetry.Warn("wizard.template_read_failed", map[string]any{"user_id": s.userID, "error": err})
		}
		return first
	}
	var chosen templates.Descriptor
	if err := json.Unmarshal([]byte(raw), &chosen); err != nil {
		telemetry.Warn("wizard.template_unparsable", map[string]any{"user_id": s.userID, "error": err})
		return first
	}
	tpl, err := s.deps.Catalog.Get(chosen.ID)
	if err != nil {
		return first
	}
	return tpl
}

func (s *Session) storedDraft(ctx context.Context) (model.Document, bool) {
	raw, err := s.deps.Drafts.Get(ctx, s.userID, drafts.KeyResumeDraft)
	if err != nil {
		if !errors.Is(err, drafts.ErrNotFound) {
			telemetry.Warn("wizard.draft_read_failed", map[string]any{"user_id": s.userID, "error": err})
		}
		return model.Document{}, false
	}
	doc, err := model.DecodeArtifact([]byte(raw))
	if err != nil {
		telemetry.Warn("wizard.draft_unparsable", map[string]any{"user_id": s.userID, "error": err})
		return model.Document{}, false
	}
	return doc, true
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		Step:        Order[s.step],
		StepIndex:   s.step,
		TotalSteps:  len(Order),
		Steps:       append([]Step(nil), Order...),
		CanAdvance:  s.step < len(Order)-1,
		CanRetreat:  s.step > 0,
		Document:    s.doc.Clone(),
		Template:    s.template.Clone(),
		SavePending: s.dirty,
	}
	if !s.lastSaved.IsZero() {
		saved := s.lastSaved
		st.LastSavedAt = &saved
	}
	return st
}

// Document returns a copy of the aggregate.
func (s *Session) Document() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Template returns the session's template.
func (s *Session) Template() templates.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template.Clone()
}

// SetTemplate switches the template without touching the document.
func (s *Session) SetTemplate(tpl templates.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = tpl.Clone()
}

// Advance moves to the next step. No validation gate applies.
func (s *Session) Advance() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step >= len(Order)-1 {
		return s.stateLocked(), ErrAtLastStep
	}
	s.step++
	return s.stateLocked(), nil
}

// Retreat moves to the previous step.
func (s *Session) Retreat() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step <= 0 {
		return s.stateLocked(), ErrAtFirstStep
	}
	s.step--
	return s.stateLocked(), nil
}

// ApplyStepUpdate merges partial into the aggregate and schedules an autosave.
func (s *Session) ApplyStepUpdate(partial model.PartialDocument) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if partial.IsEmpty() {
		return s.stateLocked()
	}
	s.doc = model.Merge(s.doc, partial)
	s.scheduleLocked()
	return s.stateLocked()
}

// UpdateStep runs a step controller over body and merges the result.
func (s *Session) UpdateStep(step Step, body json.RawMessage) (State, []Issue, error) {
	ctrl, ok := Controllers()[step]
	if !ok {
		return State{}, nil, ErrUnknownStep
	}
	partial, issues, err := ctrl.Apply(body)
	if err != nil {
		return State{}, nil, err
	}
	if issues == nil {
		issues = []Issue{}
	}
	return s.ApplyStepUpdate(partial), issues, nil
}

func (s *Session) scheduleLocked() {
	if s.closed {
		return
	}
	s.dirty = true
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.deps.afterFunc(s.deps.AutosaveDelay, func() { s.autosave(gen) })
}

func (s *Session) autosave(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.dirty || s.closed {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()
	_ = s.persistLocked(ctx)
}

// PersistDraft writes the whole document under the draft key now and cancels any
// pending autosave.
func (s *Session) PersistDraft(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
	if err := s.persistLocked(ctx); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

func (s *Session) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Session) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.deps.Drafts.Put(ctx, s.userID, drafts.KeyResumeDraft, string(data)); err != nil {
		metrics.IncDraftSaveFailed()
		telemetry.Error("wizard.draft_save_failed", map[string]any{"user_id": s.userID, "error": err})
		return fmt.Errorf("save draft: %w", err)
	}
	metrics.IncDraftSaved()
	s.dirty = false
	s.lastSaved = s.deps.now().UTC()
	return nil
}

// Finalize spends one credit and stores the document as a saved resume.
// With no credits nothing is deducted or stored. Failures after the deduction
// are reported, not rolled back.
func (s *Session) Finalize(ctx context.Context) (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Artifact{}, ErrSessionClosed
	}

	balance, err := s.deps.Gateway.CreditBalance(ctx, s.userID)
	if err != nil {
		return Artifact{}, err
	}
	if balance.Credits < 1 {
		metrics.IncFinalizeRejected()
		return Artifact{}, ErrInsufficientCredits
	}
	balance, err = s.deps.Gateway.DeductCredits(ctx, s.userID, 1)
	if err != nil {
		if errors.Is(err, credits.ErrInsufficientCredits) {
			metrics.IncFinalizeRejected()
			return Artifact{}, ErrInsufficientCredits
		}
		return Artifact{}, err
	}

	doc := model.Normalize(s.doc)
	data, err := model.EncodeArtifact(doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("encode resume: %w", err)
	}
	rec, err := s.deps.Gateway.InsertRow(ctx, records.TableResumes, s.userID, model.SavedResume{
		Title:      model.TitleFor(doc),
		TemplateID: s.template.ID,
		Document:   doc,
	})
	if err != nil {
		telemetry.Error("wizard.finalize_store_failed", map[string]any{
			"user_id": s.userID,
			"error":   err,
		})
		return Artifact{}, err
	}

	metrics.IncWizardFinalized()
	telemetry.Info("wizard.finalized", map[string]any{
		"user_id":     s.userID,
		"record_id":   rec.ID,
		"template_id": s.template.ID,
	})
	return Artifact{
		FileName:         model.ArtifactName(doc),
		Data:             data,
		RecordID:         rec.ID,
		CreditsRemaining: balance.Credits,
	}, nil
}

// Layout renders the current document with the session template.
func (s *Session) Layout() render.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl := s.template
	return render.BuildLayout(s.doc, &tpl)
}

// Close flushes a pending autosave and stops the timer. Later changes are not saved.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	pending := s.dirty
	s.cancelTimerLocked()
	var err error
	if pending {
		err = s.persistLocked(ctx)
	}
	s.closed = true
	return err
}

// discard stops the timer without saving.
func (s *Session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
	s.dirty = false
	s.closed = true
}
