package live

import (
	"go.uber.org/atomic"

	"imagefx/pkg/effect"
)

type selection struct {
	effect effect.Effect
}

// Session holds the effect currently selected for a stream. The front end
// writes it, the frame callback reads it once per frame; the last write wins.
type Session struct {
	sel     atomic.Pointer[selection]
	version atomic.Uint64
}

func NewSession(initial effect.Effect) *Session {
	s := &Session{}
	s.Select(initial)
	return s
}

func (s *Session) Select(e effect.Effect) {
	if e == nil {
		e = effect.None{}
	}
	s.sel.Store(&selection{effect: e})
	s.version.Inc()
}

func (s *Session) Current() effect.Effect {
	if sel := s.sel.Load(); sel != nil {
		return sel.effect
	}
	return effect.None{}
}

// Version increases on every Select.
func (s *Session) Version() uint64 {
	return s.version.Load()
}
