package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// osExit is swapped in tests.
var osExit = os.Exit

// ExitWithCode reports a fatal failure and terminates with exitCode. It logs
// through logger when one is available and the code is in the foundry
// catalog; otherwise it writes to stderr.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, known := foundry.GetExitCodeInfo(exitCode)
	status := int(exitCode)
	if known {
		status = info.Code
	}

	if logger != nil && known {
		logger.Error(msg, exitFields(info, err)...)
	} else {
		writeFatal(os.Stderr, status, info.Name, msg, err)
	}
	osExit(status)
}

// ExitWithCodeStderr is ExitWithCode before any logger exists.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	ExitWithCode(nil, exitCode, msg, err)
}

// exitFields describes the exit code and, for envelopes, the error code,
// correlation id and wrapped cause.
func exitFields(info foundry.ExitCodeInfo, err error) []zap.Field {
	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}
	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("correlation_id", envelope.CorrelationID))
		if cause := envelopeCause(envelope); cause != "" {
			fields = append(fields, zap.String("cause", cause))
		}
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

// envelopeCause returns the wrapped error text, set either as Original or by
// the errors package's wrap helpers.
func envelopeCause(envelope *errors.ErrorEnvelope) string {
	switch v := envelope.Original.(type) {
	case error:
		return v.Error()
	case string:
		return v
	}
	if wrapped, ok := envelope.Context["wrapped_error"].(string); ok {
		return wrapped
	}
	return ""
}

func writeFatal(w io.Writer, status int, name, msg string, err error) {
	line := "kamiza: " + msg
	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		line += fmt.Sprintf(" [%s] %s", envelope.Code, envelope.Message)
		if cause := envelopeCause(envelope); cause != "" {
			line += ": " + cause
		}
	} else if err != nil {
		line += ": " + err.Error()
	}
	if name != "" {
		_, _ = fmt.Fprintf(w, "%s (exit %d, %s)\n", line, status, name)
		return
	}
	_, _ = fmt.Fprintf(w, "%s (exit %d)\n", line, status)
}
