package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hwabench/hwabench/pkg/models"
)

// WriteError reports an unwritable report destination. Fatal: if the report
// cannot be written the run has produced nothing.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write report to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// CheckWritable verifies the destination can be written before any
// transcoding starts. "-" (stdout) is always writable. A probe file created
// by the check is removed again.
func CheckWritable(path string) error {
	if path == "-" {
		return nil
	}

	_, statErr := os.Stat(path)
	existed := statErr == nil

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	f.Close()

	if !existed {
		os.Remove(path)
	}
	return nil
}

// Write serializes the report as one indented JSON document to the
// destination: stdout for "-", a file otherwise. Exactly one document is
// emitted; all diagnostics go to stderr.
func Write(r *models.Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	data = append(data, '\n')

	if path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return &WriteError{Path: "stdout", Err: err}
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
