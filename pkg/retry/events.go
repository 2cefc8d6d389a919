package retry

import "time"

// EventHandler observes attempt lifecycle events. The run ID correlates the
// events of one Do call across log lines.
type EventHandler interface {
	OnAttemptStart(runID string, attempt int)
	OnAttemptSuccess(runID string, attempt int, working time.Duration)
	OnAttemptFailure(runID string, attempt int, err error, willRetry bool)
	OnGiveUp(runID string, attempts int, err error)
}

// Logger interface for logging
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// DefaultEventHandler is the default event handler implementation
type DefaultEventHandler struct {
	logger Logger
}

// NewDefaultEventHandler creates a default event handler
func NewDefaultEventHandler(logger Logger) *DefaultEventHandler {
	return &DefaultEventHandler{logger: logger}
}

// OnAttemptStart handles attempt start events
func (h *DefaultEventHandler) OnAttemptStart(runID string, attempt int) {
	if h.logger != nil {
		h.logger.Debugf("[%s] attempt %d starting", runID, attempt)
	}
}

// OnAttemptSuccess handles attempt success events
func (h *DefaultEventHandler) OnAttemptSuccess(runID string, attempt int, working time.Duration) {
	if h.logger != nil {
		h.logger.Infof("[%s] attempt %d succeeded after %v", runID, attempt, working)
	}
}

// OnAttemptFailure handles attempt failure events
func (h *DefaultEventHandler) OnAttemptFailure(runID string, attempt int, err error, willRetry bool) {
	if h.logger != nil {
		h.logger.Warnf("[%s] attempt %d failed (willRetry=%t): %v", runID, attempt, willRetry, err)
	}
}

// OnGiveUp handles give-up events
func (h *DefaultEventHandler) OnGiveUp(runID string, attempts int, err error) {
	if h.logger != nil {
		h.logger.Errorf("[%s] giving up after %d attempts, final error: %v", runID, attempts, err)
	}
}
