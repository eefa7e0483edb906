// Package memory provides config values held in process, which tests and
// callers that resolve configuration themselves can change at runtime.
package memory

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/code-payments/favorites-client/pkg/config"
)

var errDeveloperInduced = errors.New("in memory config: developer induced error")

type state struct {
	value    interface{}
	err      error
	shutdown bool
}

// Config is an in memory config. A nil value means no value is set.
type Config struct {
	state atomic.Pointer[state]
}

func NewConfig(value interface{}) *Config {
	c := &Config{}
	c.state.Store(&state{value: value})
	return c
}

// Get implements Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	s := c.state.Load()

	switch {
	case s.shutdown:
		return nil, config.ErrShutdown
	case s.err != nil:
		return nil, s.err
	case s.value == nil:
		return nil, config.ErrNoValue
	}
	return s.value, nil
}

// Shutdown implements Config.Shutdown
func (c *Config) Shutdown() {
	c.update(func(s *state) { s.shutdown = true })
}

// SetValue sets the value returned by subsequent Get calls
func (c *Config) SetValue(value interface{}) {
	c.update(func(s *state) { s.value = value })
}

// ClearValue makes subsequent Get calls return config.ErrNoValue
func (c *Config) ClearValue() {
	c.SetValue(nil)
}

// InduceErrors makes subsequent Get calls fail
func (c *Config) InduceErrors() {
	c.update(func(s *state) { s.err = errDeveloperInduced })
}

func (c *Config) StopInducingErrors() {
	c.update(func(s *state) { s.err = nil })
}

func (c *Config) update(fn func(s *state)) {
	for {
		old := c.state.Load()
		next := *old
		fn(&next)
		if c.state.CompareAndSwap(old, &next) {
			return
		}
	}
}
