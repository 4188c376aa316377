package cli

import (
	"strconv"
	"time"

	"github.com/briandowns/spinner"
)

// setInt records a positive integer flag as a config override.
func setInt(m map[string]string, key string, v int) {
	if v > 0 {
		m[key] = strconv.Itoa(v)
	}
}

func setString(m map[string]string, key, v string) {
	if v != "" {
		m[key] = v
	}
}

// progress wraps a stderr spinner that can be turned off.
type progress struct {
	s *spinner.Spinner
}

func newProgress(e *env, enabled bool, suffix string) *progress {
	if !enabled {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(e.stderr))
	s.Suffix = " " + suffix
	s.Start()
	return &progress{s: s}
}

func (p *progress) update(suffix string) {
	if p.s == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = " " + suffix
	p.s.Unlock()
}

func (p *progress) stop() {
	if p.s != nil {
		p.s.Stop()
	}
}
