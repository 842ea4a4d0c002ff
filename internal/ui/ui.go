package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/i18n"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	FormEmoji    = "📝"
	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	RocketEmoji  = Accent.Sprint("🚀")
)

// SpinnerGroup tracks the spinner currently drawing, so consent prompts can
// clear it before writing to the terminal.
type SpinnerGroup struct {
	mu     sync.Mutex
	active *SmartSpinner
}

func NewSpinnerGroup() *SpinnerGroup {
	return &SpinnerGroup{}
}

// NewSpinner creates a spinner registered with the group while it runs.
func (g *SpinnerGroup) NewSpinner(initialMessage string) *SmartSpinner {
	s := NewSmartSpinner(initialMessage)
	s.group = g
	return s
}

// Active returns the running spinner, or nil.
func (g *SpinnerGroup) Active() *SmartSpinner {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// StopActive stops the running spinner, if any.
func (g *SpinnerGroup) StopActive() {
	if s := g.Active(); s != nil {
		s.Stop()
	}
}

// SmartSpinner is a spinner with enhanced capabilities
type SmartSpinner struct {
	spinner *spinner.Spinner
	out     io.Writer
	group   *SpinnerGroup
}

// NewSmartSpinner creates a new spinner with an initial message
func NewSmartSpinner(initialMessage string) *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+FormEmoji+" "+initialMessage),
		spinner.WithWriter(os.Stderr),
	)
	return &SmartSpinner{spinner: s, out: os.Stdout}
}

func (s *SmartSpinner) Start() {
	if s.group != nil {
		s.group.mu.Lock()
		s.group.active = s
		s.group.mu.Unlock()
	}
	s.spinner.Start()
}

func (s *SmartSpinner) Stop() {
	s.spinner.Stop()
	if s.group != nil {
		s.group.mu.Lock()
		if s.group.active == s {
			s.group.active = nil
		}
		s.group.mu.Unlock()
	}
}

func (s *SmartSpinner) UpdateMessage(msg string) {
	s.spinner.Suffix = " " + FormEmoji + " " + msg
}

func (s *SmartSpinner) Success(msg string) {
	s.Stop()
	PrintSuccess(s.out, msg)
}

func (s *SmartSpinner) Error(msg string) {
	s.Stop()
	PrintError(s.out, msg)
}

func (s *SmartSpinner) Log(msg string) {
	s.Stop()
	_, _ = fmt.Fprintln(s.out, msg)
	s.Start()
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintSectionBanner(w io.Writer, title string) {
	separator := color.New(color.FgCyan).Sprint("━━━━━━━━━━━━━━━━━━━━━━━")
	_, _ = fmt.Fprintf(w, "\n%s\n", separator)
	_, _ = fmt.Fprintf(w, "%s %s\n", RocketEmoji, Accent.Sprint(title))
	_, _ = fmt.Fprintf(w, "%s\n\n", separator)
}

func PrintKeyValue(w io.Writer, key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	_, _ = fmt.Fprintf(w, "   %s %s\n", keyColored, valueColored)
}

// HandleAppError prints err in a friendly way. If translations is nil, it
// uses English defaults.
func HandleAppError(w io.Writer, err error, translations ...*i18n.Translations) {
	if err == nil {
		return
	}

	var t *i18n.Translations
	if len(translations) > 0 && translations[0] != nil {
		t = translations[0]
	}

	var appErr *domainErrors.AppError
	if !errors.As(err, &appErr) {
		PrintError(w, err.Error())
		return
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s\n", Error.Sprintf("❌ %s: %s", appErr.Type, appErr.Message))

	if len(appErr.Context) > 0 {
		keys := make([]string, 0, len(appErr.Context))
		for k := range appErr.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			PrintKeyValue(w, k, fmt.Sprint(appErr.Context[k]))
		}
	}

	if appErr.Err != nil {
		_, _ = fmt.Fprintf(w, "%s\n", Dim.Sprintf("   Details: %v", appErr.Err))
	}

	if appErr.Suggestion != "" {
		tryPrefix := "💡 Try: "
		if t != nil {
			tryPrefix = t.GetMessage("ui_error.try_suggestion", 0, nil)
		}
		_, _ = fmt.Fprintln(w)
		lines := strings.Split(appErr.Suggestion, "\n")
		for i, line := range lines {
			if i == 0 {
				_, _ = fmt.Fprintf(w, "%s%s\n", Info.Sprint(tryPrefix), line)
			} else {
				_, _ = fmt.Fprintf(w, "       %s\n", line)
			}
		}
	}
	_, _ = fmt.Fprintln(w)
}

// AskConfirmation asks a yes/no question. Any prompt error counts as "no".
func AskConfirmation(question string) bool {
	confirmed := false
	prompt := &survey.Confirm{Message: question}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false
	}
	return confirmed
}

func WithSpinner(message string, fn func() error) error {
	s := NewSmartSpinner(message)
	s.Start()

	err := fn()

	if err != nil {
		s.Stop()
		return err
	}

	s.Success(message)
	return nil
}
