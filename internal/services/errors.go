package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks manifest or bundle structure defects. Terminal;
	// the bundle is routed to the failed area and never retried.
	ErrValidation = errors.New("validation error")
	// ErrProbe marks duration discovery failures. Terminal for the job.
	ErrProbe = errors.New("probe error")
	// ErrTranscode marks nonzero exits from the encoding tool. Terminal for
	// the job; diagnostic output is preserved on the record.
	ErrTranscode = errors.New("transcode error")
	// ErrRelocation marks copy/verify/delete failures. The bundle is left in
	// its current location for manual intervention.
	ErrRelocation = errors.New("relocation error")
	// ErrExternalTool marks other external tool failures.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Detail strips the sentinel prefix from a wrapped error, leaving the text
// suitable for persisting as a record diagnostic.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, marker := range []error{ErrValidation, ErrProbe, ErrTranscode, ErrRelocation, ErrExternalTool, ErrConfiguration} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
