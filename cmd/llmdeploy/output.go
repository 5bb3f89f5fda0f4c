package main

import (
	"fmt"
	"io"

	"llmdeploy/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeOutput(w io.Writer, payload any) error {
	return outputFormatter.Write(w, payload)
}

func writePlain(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
