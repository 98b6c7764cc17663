package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrPreviewHidden is returned when an export is requested while no preview
// is shown, including while another export is still running.
var ErrPreviewHidden = errors.New("report: preview must be shown before export")

// State is a position in the report page lifecycle.
type State int

const (
	Editing State = iota
	PreviewShown
	Exporting
	ExportSucceeded
	ExportFailed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case PreviewShown:
		return "preview_shown"
	case Exporting:
		return "exporting"
	case ExportSucceeded:
		return "export_succeeded"
	case ExportFailed:
		return "export_failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Renderer writes a composed document in an output format.
type Renderer interface {
	Render(ctx context.Context, doc Document, w io.Writer) error
}

// Session tracks one report being edited, previewed and exported. It is safe
// for concurrent use.
type Session struct {
	renderer Renderer

	mu      sync.Mutex
	state   State
	doc     Document
	outcome State
	hooks   []func(from, to State)
}

// NewSession starts a session in the Editing state.
func NewSession(renderer Renderer) *Session {
	return &Session{renderer: renderer, state: Editing, outcome: Editing}
}

// OnTransition registers fn to observe state changes. fn runs with the
// session lock held and must not call back into the session.
func (s *Session) OnTransition(fn func(from, to State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastOutcome returns ExportSucceeded or ExportFailed for the most recent
// export, or Editing when nothing was exported yet.
func (s *Session) LastOutcome() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// ShowPreview displays doc. While an export runs the preview is left as is.
func (s *Session) ShowPreview(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Exporting {
		return
	}
	s.doc = doc
	s.transition(PreviewShown)
}

// HidePreview returns to Editing.
func (s *Session) HidePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Exporting {
		return
	}
	s.doc = Document{}
	s.transition(Editing)
}

// Preview returns the document currently shown.
func (s *Session) Preview() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != PreviewShown {
		return Document{}, false
	}
	return s.doc, true
}

// Export renders the previewed document into w. It is rejected with
// ErrPreviewHidden unless a preview is shown. Whatever the outcome, the
// session returns to PreviewShown.
func (s *Session) Export(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	if s.state != PreviewShown {
		s.mu.Unlock()
		return ErrPreviewHidden
	}
	doc := s.doc
	s.transition(Exporting)
	s.mu.Unlock()

	err := s.renderer.Render(ctx, doc, w)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.outcome = ExportFailed
	} else {
		s.outcome = ExportSucceeded
	}
	s.transition(s.outcome)
	s.transition(PreviewShown)
	return err
}

func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	for _, hook := range s.hooks {
		hook(from, to)
	}
}
