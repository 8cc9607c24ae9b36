package autoapply

import (
	"fmt"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"
)

// statusLog is the append-only, timestamp-free action log returned in AgentResult.Log.
type statusLog struct {
	entries []string
	logger  output.LoggerPort
}

func newStatusLog(logger output.LoggerPort) *statusLog {
	return &statusLog{logger: logger}
}

func (l *statusLog) add(msg string) {
	l.entries = append(l.entries, msg)
	l.logger.Info(msg)
}

func (l *statusLog) addf(format string, args ...any) {
	l.add(fmt.Sprintf(format, args...))
}

func (l *statusLog) snapshot() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *statusLog) result(status entity.ResultStatus, success bool) *entity.AgentResult {
	return &entity.AgentResult{
		Success: success,
		Status:  status,
		Log:     l.snapshot(),
	}
}
