package server

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/tordrt/mockschema/internal/codec"
	"github.com/tordrt/mockschema/internal/editor"
	"github.com/tordrt/mockschema/internal/schema"
)

// Workspace is the schema being edited over HTTP and the file it is saved
// to. All access goes through the mutex because the controller is not safe
// for concurrent use.
type Workspace struct {
	mu   sync.Mutex
	ctl  *editor.Controller
	path string
}

// NewWorkspace edits s and saves to path.
func NewWorkspace(s *schema.Schema, path string) *Workspace {
	return &Workspace{ctl: editor.New(s), path: path}
}

// OpenWorkspace loads path if it exists and starts empty otherwise.
func OpenWorkspace(path string) (*Workspace, []codec.Diagnostic, error) {
	res, err := codec.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewWorkspace(nil, path), nil, nil
		}
		return nil, nil, err
	}
	return NewWorkspace(res.Schema, path), res.Diagnostics, nil
}

// Path is the file Save writes to.
func (w *Workspace) Path() string {
	return w.path
}

// Export returns the schema as exchange-format JSON.
func (w *Workspace) Export() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return codec.Export(w.ctl.Schema())
}

// Replace swaps in an imported schema.
func (w *Workspace) Replace(s *schema.Schema) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctl.Replace(s)
}

// Dispatch applies one editor event.
func (w *Workspace) Dispatch(ev editor.Event) (editor.Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctl.Dispatch(ev)
}

// DispatchAll applies events in order as one edit. If any of them fails the
// schema is restored to its state before the first.
func (w *Workspace) DispatchAll(events ...editor.Event) ([]editor.Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	before := w.ctl.Schema().Clone()
	outcomes := make([]editor.Outcome, 0, len(events))
	for _, ev := range events {
		outcome, err := w.ctl.Dispatch(ev)
		if err != nil {
			w.ctl.Replace(before)
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// Form returns the current form of one attribute.
func (w *Workspace) Form(target editor.Target) (editor.Form, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctl.Form(target)
}

// SaveValid validates the schema and writes it to the workspace file only
// when it has no problems. Both steps see the same schema.
func (w *Workspace) SaveValid() ([]schema.Problem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if problems := w.ctl.Schema().Validate(); len(problems) > 0 {
		return problems, nil
	}
	return nil, codec.WriteFile(w.path, w.ctl.Schema())
}
