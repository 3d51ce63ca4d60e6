package cli

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// UsageError is a command line mistake; its report includes the usage
type UsageError struct {
	Cmd *cobra.Command
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func successStyle(w io.Writer) lipgloss.Style {
	return lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.Color("2"))
}

func errorStyle(w io.Writer) lipgloss.Style {
	return lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.Color("1"))
}

// ReportError writes err to w as the command line reports failures:
// "Error: <message>", followed by the usage for command line mistakes
func ReportError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, errorStyle(w).Render("Error: "+message(err)))

	var usage *UsageError
	if stderrors.As(err, &usage) && usage.Cmd != nil {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprint(w, usage.Cmd.UsageString())
	}
}

// message returns the user facing text of err. Coded errors show their
// message and the underlying cause, without the code.
func message(err error) string {
	var fe *errors.FormatterError
	if !stderrors.As(err, &fe) {
		return err.Error()
	}
	if fe.Code == errors.ErrFileNotFound {
		return fe.Message
	}
	if fe.Wrapped != nil && errors.GetErrorCode(fe.Wrapped) == errors.ErrUnknown {
		return fmt.Sprintf("%s: %v", fe.Message, fe.Wrapped)
	}
	if fe.Wrapped != nil {
		return fmt.Sprintf("%s: %s", fe.Message, message(fe.Wrapped))
	}
	return fe.Message
}
