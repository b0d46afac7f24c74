// Package cli parses hark command-line arguments.
package cli

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Parsed is the validated set of command-line options.
type Parsed struct {
	ConfigPaths []string
	Daemonize   bool
	ShowHelp    bool
	ShowVersion bool
}

// Parse validates args into Parsed. Positional arguments are rejected.
func Parse(args []string) (Parsed, error) {
	fs := flag.NewFlagSet("hark", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var parsed Parsed
	fs.StringArrayVar(&parsed.ConfigPaths, "config", nil, "extra config file to read (repeatable)")
	fs.BoolVarP(&parsed.Daemonize, "daemonize", "d", false, "run as a signal-driven daemon")
	fs.BoolVarP(&parsed.ShowHelp, "help", "h", false, "show help")
	fs.BoolVarP(&parsed.ShowVersion, "version", "V", false, "show version")

	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}
	if fs.NArg() > 0 {
		return Parsed{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH]...          listen for one command and exit
  %[1]s [--config PATH]... -d       sleep in the background; wake on signals

Daemon signals:
  SIGCONT, SIGUSR1   listen for and run a single command
  SIGHUP             reload configuration (and model, when it changed)
  SIGINT, SIGTERM    release the model and exit

Flags:
  --config PATH    Extra config file, highest precedence, repeatable
                   (merged over $XDG_CONFIG_HOME and $XDG_CONFIG_DIRS
                   hark/hark.toml files)
  -d, --daemonize  Run as a signal-driven daemon
  -h, --help       Show help
  -V, --version    Show version
`, binaryName)
}
