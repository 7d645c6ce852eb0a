package answer

import (
	"context"

	"github.com/spf13/afero"

	"github.com/preseedhq/preseed/engine/dialog"
	"github.com/preseedhq/preseed/engine/workflow"
	"github.com/preseedhq/preseed/pkg/logger"
)

// AnswerStore records operator answers to workflow dialogs and reads them
// back for actors. Answers live in a Store keyed by dialog scope; with a
// coordinator-backed store every process of a run shares one answer space.
// File loading, typed translation and answer-file generation all go through
// the same store, so a loaded answer is immediately visible wherever the
// store is shared.
type AnswerStore struct {
	store   Store
	fs      afero.Fs
	metrics *Metrics
}

type Option func(*AnswerStore)

// WithStore adopts an existing store, typically a coordinator-backed one
// shared across processes. Without it a process-local MemoryStore is used.
func WithStore(store Store) Option {
	return func(a *AnswerStore) {
		if store != nil {
			a.store = store
		}
	}
}

// WithFilesystem swaps the filesystem used for answer-file IO.
func WithFilesystem(fs afero.Fs) Option {
	return func(a *AnswerStore) {
		if fs != nil {
			a.fs = fs
		}
	}
}

// WithMetrics attaches instrumentation. A nil Metrics keeps recording a
// no-op.
func WithMetrics(m *Metrics) Option {
	return func(a *AnswerStore) {
		a.metrics = m
	}
}

func New(opts ...Option) *AnswerStore {
	a := &AnswerStore{
		store: NewMemoryStore(),
		fs:    afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store exposes the backing store so sibling components can share it.
func (a *AnswerStore) Store() Store {
	return a.store
}

// Close closes the backing store.
func (a *AnswerStore) Close() error {
	return a.store.Close()
}

// Answer records value under scope and key. The update is a whole-entry
// replacement: fetch the scope's entry, set the key, put the entry back.
// Concurrent writers to the same scope race and the last replacement wins.
func (a *AnswerStore) Answer(ctx context.Context, scope, key string, value any) error {
	entry, err := a.store.Get(ctx, scope)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = Entry{}
	}
	entry[key] = value
	if err := a.store.Put(ctx, scope, entry); err != nil {
		return err
	}
	a.metrics.RecordAnswer(ctx)
	logger.FromContext(ctx).Debug("answer recorded", "scope", scope, "key", key)
	return nil
}

// Get returns a detached copy of the scope's entry, or (nil, nil) when
// nothing was recorded for it.
func (a *AnswerStore) Get(ctx context.Context, scope string) (Entry, error) {
	return a.store.Get(ctx, scope)
}

// Scopes lists scopes with recorded answers in lexical order.
func (a *AnswerStore) Scopes(ctx context.Context) ([]string, error) {
	return a.store.Scopes(ctx)
}

// Load reads an answer file and replaces each listed scope's entry
// wholesale. A missing file contributes nothing and is not an error; a
// malformed one fails with ErrParse and leaves scopes already stored in
// place.
func (a *AnswerStore) Load(ctx context.Context, path string) error {
	log := logger.FromContext(ctx)
	sections, err := parseAnswerFile(a.fs, path)
	if err != nil {
		return err
	}
	for _, sec := range sections {
		if err := a.store.Put(ctx, sec.scope, sec.entry); err != nil {
			return err
		}
	}
	a.metrics.RecordLoad(ctx, len(sections))
	log.Info("answer file loaded", "path", path, "scopes", len(sections))
	return nil
}

// Translate converts the dialog's raw string answers to their declared
// types and publishes the typed entry back through the store. Values that
// are already typed are left alone, so translating twice is safe. Every
// component's Value slot is set from the entry, nil when no answer exists.
// An integer coercion failure aborts before anything is written back.
func (a *AnswerStore) Translate(ctx context.Context, d *dialog.Dialog) error {
	entry, err := a.store.Get(ctx, d.Scope)
	if err != nil {
		return err
	}
	if len(entry) == 0 {
		return nil
	}
	for _, c := range d.Components {
		if raw, ok := entry[c.Key].(string); ok {
			typed, err := c.Coerce(raw)
			if err != nil {
				a.metrics.RecordTranslation(ctx, false)
				return err
			}
			entry[c.Key] = typed
		}
		c.Value = entry[c.Key]
	}
	if err := a.store.Put(ctx, d.Scope, entry); err != nil {
		return err
	}
	a.metrics.RecordTranslation(ctx, true)
	logger.FromContext(ctx).Debug("dialog answers translated", "scope", d.Scope)
	return nil
}

// TranslateForWorkflow translates every dialog discovered in the workflow.
func (a *AnswerStore) TranslateForWorkflow(ctx context.Context, wf *workflow.Config) error {
	for _, d := range wf.Dialogs() {
		if err := a.Translate(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// LoadAndTranslateForWorkflow loads an answer file and immediately
// translates it against the workflow's dialogs. Both steps go through the
// shared store, so other processes observe the same typed answers.
func (a *AnswerStore) LoadAndTranslateForWorkflow(ctx context.Context, path string, wf *workflow.Config) error {
	if err := a.Load(ctx, path); err != nil {
		return err
	}
	return a.TranslateForWorkflow(ctx, wf)
}
