package headless

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogLevel is the console verbosity of a headless run.
type LogLevel int

const (
	// LogLevelQuiet prints warnings, errors, the answer and the summary.
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal adds steps and tool calls.
	LogLevelNormal
	// LogLevelVerbose adds traces, rejection reasons and the submission list.
	LogLevelVerbose
	// LogLevelDebug adds tool results.
	LogLevelDebug
)

var logLevels = map[string]LogLevel{
	"quiet":   LogLevelQuiet,
	"normal":  LogLevelNormal,
	"verbose": LogLevelVerbose,
	"debug":   LogLevelDebug,
}

// parseLogLevel maps a verbosity name to its level. Unknown names are normal.
func parseLogLevel(name string) LogLevel {
	if level, ok := logLevels[name]; ok {
		return level
	}
	return LogLevelNormal
}

const ruleWidth = 70

// Same palette as the interactive CLI.
var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	amber      = lipgloss.Color("#FFD580")
	errorRed   = lipgloss.Color("#FF6B6B")
	mutedGray  = lipgloss.Color("#6B7280")
)

type consoleStyles struct {
	rule    lipgloss.Style
	title   lipgloss.Style
	step    lipgloss.Style
	info    lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
	section lipgloss.Style
}

// newConsoleStyles binds the styles to w so color is only emitted when w
// is a terminal.
func newConsoleStyles(w io.Writer) consoleStyles {
	r := lipgloss.NewRenderer(w)
	return consoleStyles{
		rule:    r.NewStyle().Bold(true),
		title:   r.NewStyle().Bold(true).Foreground(salmonPink),
		step:    r.NewStyle().Foreground(salmonPink),
		info:    r.NewStyle(),
		ok:      r.NewStyle().Bold(true).Foreground(mintGreen),
		warn:    r.NewStyle().Foreground(amber),
		err:     r.NewStyle().Bold(true).Foreground(errorRed),
		muted:   r.NewStyle().Foreground(mutedGray),
		section: r.NewStyle().Foreground(salmonPink).Underline(true),
	}
}

// Logger prints the progress and summary of a headless run.
type Logger struct {
	level  LogLevel
	writer io.Writer
	styles consoleStyles
	steps  int
}

// NewLogger creates a logger writing to stdout.
func NewLogger(level LogLevel) *Logger {
	l := &Logger{level: level}
	l.SetOutput(os.Stdout)
	return l
}

// SetOutput redirects the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.writer = w
	l.styles = newConsoleStyles(w)
}

func (l *Logger) println(min LogLevel, style lipgloss.Style, text string) {
	if l.level < min {
		return
	}
	fmt.Fprintln(l.writer, style.Render(text))
}

func (l *Logger) rule() {
	fmt.Fprintln(l.writer, l.styles.rule.Render(strings.Repeat("=", ruleWidth)))
}

// Header opens the run.
func (l *Logger) Header(title string) {
	if l.level < LogLevelNormal {
		return
	}
	fmt.Fprintln(l.writer)
	l.rule()
	fmt.Fprintln(l.writer, l.styles.title.Render("  "+title))
	l.rule()
}

// Section starts a titled block such as opening the start URL.
func (l *Logger) Section(title string) {
	if l.level < LogLevelNormal {
		return
	}
	fmt.Fprintln(l.writer)
	fmt.Fprintln(l.writer, l.styles.section.Render("▶ "+title))
}

// Step prints a numbered agent step.
func (l *Logger) Step(message string) {
	if l.level < LogLevelNormal {
		return
	}
	l.steps++
	fmt.Fprintln(l.writer)
	fmt.Fprintln(l.writer, l.styles.step.Render(fmt.Sprintf("[%d] %s", l.steps, message)))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.println(LogLevelNormal, l.styles.info, fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.println(LogLevelQuiet, l.styles.warn, "⚠ Warning: "+fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.println(LogLevelQuiet, l.styles.err, "✗ Error: "+fmt.Sprintf(format, args...))
}

func (l *Logger) Verbosef(format string, args ...interface{}) {
	l.println(LogLevelVerbose, l.styles.muted, "→ "+fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.println(LogLevelDebug, l.styles.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
}

// ToolCall prints one tool invocation; count is the running total.
func (l *Logger) ToolCall(toolName string, count int) {
	switch {
	case l.level >= LogLevelVerbose:
		l.println(LogLevelVerbose, l.styles.step, fmt.Sprintf("  🔧 Tool: %s (call #%d)", toolName, count))
	case l.level == LogLevelNormal:
		l.println(LogLevelNormal, l.styles.muted, fmt.Sprintf("  • %s (#%d)", toolName, count))
	}
}

// Answer prints the final answer at every level.
func (l *Logger) Answer(text string) {
	fmt.Fprintln(l.writer)
	fmt.Fprintln(l.writer, text)
}

// Submission prints how a form submission request was answered.
func (l *Logger) Submission(pageURL string, approved bool, reason string) {
	if approved {
		l.println(LogLevelNormal, l.styles.ok, "  ✓ Submission approved: "+pageURL)
		return
	}
	l.println(LogLevelNormal, l.styles.err, "  ✗ Submission rejected: "+pageURL)
	if reason != "" {
		l.println(LogLevelVerbose, l.styles.muted, "    "+reason)
	}
}

// Summary prints the closing block. It is shown at every level.
func (l *Logger) Summary(status string, summary *ExecutionSummary) {
	fmt.Fprintln(l.writer)
	l.rule()
	fmt.Fprintln(l.writer, l.styles.title.Render("  EXECUTION SUMMARY"))
	l.rule()

	switch status {
	case statusSuccess:
		fmt.Fprintln(l.writer, "  Status: "+l.styles.ok.Render("✓ SUCCESS"))
	case statusFailed:
		fmt.Fprintln(l.writer, "  Status: "+l.styles.err.Render("✗ FAILED"))
	default:
		fmt.Fprintln(l.writer, "  Status: "+status)
	}
	fmt.Fprintf(l.writer, "  Task: %s\n", summary.Task)
	if summary.StartURL != "" {
		fmt.Fprintf(l.writer, "  Start URL: %s\n", summary.StartURL)
	}
	fmt.Fprintf(l.writer, "  Duration: %s\n", summary.Duration.Round(time.Second))

	fmt.Fprintf(l.writer, "\n  📊 Metrics:\n")
	fmt.Fprintf(l.writer, "    Outcome: %s\n", summary.Outcome)
	fmt.Fprintf(l.writer, "    Steps: %d\n", summary.Metrics.Steps)
	fmt.Fprintf(l.writer, "    Tool calls: %d\n", summary.Metrics.ToolCalls)
	if summary.Metrics.TokensUsed > 0 {
		fmt.Fprintf(l.writer, "    Tokens used: %s\n", formatNumber(summary.Metrics.TokensUsed))
	}

	if l.level >= LogLevelVerbose && len(summary.Submissions) > 0 {
		fmt.Fprintf(l.writer, "\n  📝 Form Submissions:\n")
		for _, s := range summary.Submissions {
			mark := l.styles.ok.Render("✓")
			if !s.Approved {
				mark = l.styles.err.Render("✗")
			}
			fmt.Fprintf(l.writer, "    %s %s\n", mark, s.URL)
		}
	}

	if summary.Error != "" {
		fmt.Fprintln(l.writer)
		fmt.Fprintln(l.writer, l.styles.err.Render("  Error Details:"))
		fmt.Fprintln(l.writer, l.styles.err.Render("    "+summary.Error))
	}

	l.rule()
	fmt.Fprintln(l.writer)
}

// formatNumber groups digits in thousands.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
