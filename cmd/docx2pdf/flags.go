package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds output control and config selection.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// converterFlags holds flags for the office converter.
type converterFlags struct {
	binary             string
	timeout            string
	tempDir            string
	isolatedProfile    bool
	isolatedProfileSet bool // --isolated-profile given explicitly
}

// cliFlags holds all command-line flags.
type cliFlags struct {
	common    commonFlags
	converter converterFlags
	version   bool
	doctor    bool
	json      bool
	help      bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show diagnostics and timing")
}

// addConverterFlags adds converter flags to a FlagSet.
func addConverterFlags(fs *flag.FlagSet, f *converterFlags) {
	fs.StringVar(&f.binary, "converter", "", "office executable (default libreoffice, then soffice)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "conversion timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.tempDir, "temp-dir", "", "directory for the substituted document")
	fs.BoolVar(&f.isolatedProfile, "isolated-profile", false, "run the converter with a throwaway profile")
}

// parseFlags parses args (without the program name) and returns the flags
// and the positional arguments.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("docx2pdf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	addCommonFlags(fs, &f.common)
	addConverterFlags(fs, &f.converter)
	fs.BoolVar(&f.version, "version", false, "show version information")
	fs.BoolVar(&f.doctor, "doctor", false, "check the conversion environment")
	fs.BoolVar(&f.json, "json", false, "doctor output as JSON")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.converter.isolatedProfileSet = fs.Changed("isolated-profile")

	return f, fs.Args(), nil
}
