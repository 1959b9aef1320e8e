package tui

import (
	"sync"

	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/plan"
)

// UpdateKind is the kind of a progress event
type UpdateKind int

const (
	// UpdateStarted is sent when a step starts
	UpdateStarted UpdateKind = iota
	// UpdateFinished is sent when a step produced its commit
	UpdateFinished
	// UpdateFailed is sent when a step failed
	UpdateFailed
	// UpdatePushing is sent before each push
	UpdatePushing
)

// ProgressUpdate is one event of a plan run
type ProgressUpdate struct {
	Kind      UpdateKind
	StepIndex int
	Commit    string
	Remote    string
	Branch    string
	Error     error
}

// ChannelReporter forwards executor events to a channel read by the progress TUI
type ChannelReporter struct {
	updates chan ProgressUpdate
	once    sync.Once
}

// NewChannelReporter creates a reporter buffered for a plan of the given length
func NewChannelReporter(steps int) *ChannelReporter {
	// every step sends at most two events, plus one push per step and backup
	return &ChannelReporter{
		updates: make(chan ProgressUpdate, 4*steps+16),
	}
}

// Updates returns the channel for receiving updates
func (r *ChannelReporter) Updates() <-chan ProgressUpdate {
	return r.updates
}

// Close closes the update channel (safe to call multiple times)
func (r *ChannelReporter) Close() {
	r.once.Do(func() {
		close(r.updates)
	})
}

// StepStarted reports that a step has started
func (r *ChannelReporter) StepStarted(index int, _ plan.Step) {
	r.updates <- ProgressUpdate{Kind: UpdateStarted, StepIndex: index}
}

// StepFinished reports the commit a step left its branch at
func (r *ChannelReporter) StepFinished(index int, _ plan.Step, commit string) {
	r.updates <- ProgressUpdate{Kind: UpdateFinished, StepIndex: index, Commit: commit}
}

// StepFailed reports that a step has failed
func (r *ChannelReporter) StepFailed(index int, _ plan.Step, err error) {
	r.updates <- ProgressUpdate{Kind: UpdateFailed, StepIndex: index, Error: err}
}

// Pushing reports a push about to happen
func (r *ChannelReporter) Pushing(remote, branch string) {
	r.updates <- ProgressUpdate{Kind: UpdatePushing, StepIndex: -1, Remote: remote, Branch: branch}
}

// LogReporter writes progress as plain log lines, used when stdout is not a terminal
type LogReporter struct {
	log *Splog
}

// NewLogReporter creates a reporter writing to splog
func NewLogReporter(splog *Splog) *LogReporter {
	return &LogReporter{log: splog}
}

func (r *LogReporter) StepStarted(index int, step plan.Step) {
	r.log.Debug("[%d] %s", index+1, step)
}

func (r *LogReporter) StepFinished(_ int, step plan.Step, commit string) {
	r.log.Info("%s %s %s", ColorBranchName(step.Branch), ColorDim("->"), guwerrors.ShortSHA(commit))
}

func (r *LogReporter) StepFailed(_ int, step plan.Step, err error) {
	r.log.Debug("%s failed: %v", step, err)
}

func (r *LogReporter) Pushing(remote, branch string) {
	r.log.Info("Pushing %s to %s", ColorBranchName(branch), remote)
}
