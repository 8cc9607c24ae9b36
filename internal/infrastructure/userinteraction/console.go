package userinteraction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

type line struct {
	text string
	err  error
}

// ConsoleUserInteraction talks to the operator sitting at the terminal.
// A single background reader owns the input so that a wait abandoned on
// timeout never leaves a second reader racing for the next line.
type ConsoleUserInteraction struct {
	in  io.Reader
	out io.Writer

	startOnce sync.Once
	lines     chan line
}

func NewConsoleUserInteraction(in io.Reader, out io.Writer) *ConsoleUserInteraction {
	return &ConsoleUserInteraction{
		in:    in,
		out:   out,
		lines: make(chan line, 1),
	}
}

func (u *ConsoleUserInteraction) startReader() {
	u.startOnce.Do(func() {
		go func() {
			reader := bufio.NewReader(u.in)
			for {
				text, err := reader.ReadString('\n')
				u.lines <- line{text: text, err: err}
				if err != nil {
					close(u.lines)
					return
				}
			}
		}()
	})
}

// dropStale discards lines typed while nobody was waiting.
func (u *ConsoleUserInteraction) dropStale() {
	for {
		select {
		case l, ok := <-u.lines:
			if !ok || l.err != nil {
				return
			}
		default:
			return
		}
	}
}

// WaitForUserAction prints message and blocks until the operator presses
// Enter or ctx is done. Once the input is exhausted there is no operator to
// answer, so the wait lasts until ctx is done.
func (u *ConsoleUserInteraction) WaitForUserAction(ctx context.Context, message string) error {
	u.startReader()
	u.dropStale()

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(u.out, "\n[USER ACTION REQUIRED] %s\n", message)
	fmt.Fprint(u.out, "Press Enter when done...")

	select {
	case <-ctx.Done():
		fmt.Fprintln(u.out)
		return ctx.Err()
	case l, ok := <-u.lines:
		if ok && (l.err == nil || l.text != "") {
			return nil
		}
		<-ctx.Done()
		fmt.Fprintln(u.out)
		return ctx.Err()
	}
}

// ShowResult prints a colored summary of a finished run.
func (u *ConsoleUserInteraction) ShowResult(result *entity.AgentResult) {
	if result == nil {
		return
	}

	bold := color.New(color.Bold)
	bold.Fprintln(u.out, "\n━━━ Application run ━━━")

	dim := color.New(color.Faint)
	for _, entry := range result.Log {
		dim.Fprintf(u.out, "  • %s\n", entry)
	}

	statusColor(result.Status).Fprintf(u.out, "\nStatus: %s\n", result.Status)
	if result.ScreenshotPath != "" {
		fmt.Fprintf(u.out, "Screenshot: %s\n", result.ScreenshotPath)
	}
	if result.Error != "" {
		red := color.New(color.FgRed)
		red.Fprintf(u.out, "❌ Error: %s\n", truncate(result.Error, 300))
	}
}

func statusColor(status entity.ResultStatus) *color.Color {
	switch status {
	case entity.StatusApplied:
		return color.New(color.FgGreen, color.Bold)
	case entity.StatusFormFilled:
		return color.New(color.FgCyan, color.Bold)
	case entity.StatusCaptchaDetected:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
