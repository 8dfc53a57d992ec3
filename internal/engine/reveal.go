package engine

import (
	"time"

	"github.com/rivo/uniseg"
)

// reveal tracks the typewriter effect of the current line. Progress is
// counted in grapheme clusters so that combining marks and emoji sequences
// appear whole.
type reveal struct {
	text    string
	total   int
	visible int
	elapsed time.Duration
	active  bool
}

func (e *Engine) startReveal(text string) {
	e.reveal = reveal{text: text, total: uniseg.GraphemeClusterCount(text)}
	if e.settings.TextSpeed <= 0 || e.reveal.total == 0 {
		e.finishReveal()
		return
	}
	e.reveal.active = true
}

func (e *Engine) advanceReveal(dt time.Duration) {
	r := &e.reveal
	r.elapsed += dt
	n := int(r.elapsed * time.Duration(e.settings.TextSpeed) / time.Second)
	if n <= r.visible {
		return
	}
	r.visible = min(n, r.total)
	e.presenter.RevealText(r.visible)
	if r.visible == r.total {
		r.active = false
	}
}

func (e *Engine) finishReveal() {
	r := &e.reveal
	r.active = false
	if r.visible == r.total && r.total > 0 {
		return
	}
	r.visible = r.total
	e.presenter.RevealText(r.total)
}

// VisibleText returns the part of the current text revealed so far.
func (e *Engine) VisibleText() string {
	rest := e.reveal.text
	end := 0
	for range e.reveal.visible {
		cluster, tail, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
		if cluster == "" {
			break
		}
		end += len(cluster)
		rest = tail
	}
	return e.reveal.text[:end]
}
