package main

import (
	"io"
	"os"
	"time"

	docx2pdf "github.com/alnah/go-docx2pdf"
	"github.com/alnah/go-docx2pdf/internal/office"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the external converter.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	// Converter replaces the office suite for conversions. Nil runs it.
	Converter docx2pdf.PDFConverter
	// Runner executes the office suite for doctor checks. Nil uses os/exec.
	Runner office.CommandRunner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Runner: office.ExecRunner{},
	}
}

func (e *Environment) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Environment) runner() office.CommandRunner {
	if e.Runner == nil {
		return office.ExecRunner{}
	}
	return e.Runner
}
