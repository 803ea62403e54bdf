// Package model provides the estimator contract and the optimizer state
// machine shared by the regression and optimize packages.
package model

import (
	"fmt"
	"sync"
)

// OptimizerState は反復最適化の状態を表す
type OptimizerState int

const (
	// Initialized はパラメータが初期値のまま、まだ反復していない状態
	Initialized OptimizerState = iota
	// Iterating はエポックの途中でパラメータを更新している状態
	Iterating
	// Stopped はフックの要求、または要求エポック数の完了で停止した状態
	Stopped
)

func (s OptimizerState) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Iterating:
		return "iterating"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("OptimizerState(%d)", int(s))
	}
}

// StateManager tracks an optimizer's state and progress. Reads are safe
// from other goroutines (e.g. a metrics scraper) while the optimizer runs.
type StateManager struct {
	mu    sync.RWMutex
	state OptimizerState
	epoch int
	steps int
}

// NewStateManager creates a StateManager in the Initialized state.
func NewStateManager() *StateManager {
	return &StateManager{state: Initialized}
}

// State returns the current state.
func (s *StateManager) State() OptimizerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Transition moves to next. Stopped can only be left for Iterating, which
// happens when the caller asks for more epochs.
func (s *StateManager) Transition(next OptimizerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next == Initialized && s.state != Initialized {
		return fmt.Errorf("cannot return to %s from %s", Initialized, s.state)
	}
	s.state = next
	return nil
}

// RecordStep counts one per-example update.
func (s *StateManager) RecordStep() {
	s.mu.Lock()
	s.steps++
	s.mu.Unlock()
}

// RecordEpoch counts one completed epoch.
func (s *StateManager) RecordEpoch() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
}

// Progress returns the number of completed epochs and per-example steps.
func (s *StateManager) Progress() (epochs, steps int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, s.steps
}
