// Package flagx contains helpers for layered command-line and environment
// configuration: selecting the flags a component owns out of os.Args and
// reading typed overrides from the environment.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnvName names the environment variable consulted by ConfigPath when
// no -c/-config flag is given.
const ConfigEnvName = "DRIVENPASS_CONFIG"

// FilterArgs returns the subset of args that belongs to allowedFlags,
// keeping flag values that follow as separate arguments.
//
// Supported formats:
//
//	-d postgres://...      flag and value as separate arguments
//	--config=conf.json     flag and value joined with '='
//
// A following argument that starts with '-' is never treated as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigPath returns the JSON config file path given with -c or -config,
// falling back to $DRIVENPASS_CONFIG. Empty means no file.
func ConfigPath() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	if path == "" {
		path = os.Getenv(ConfigEnvName)
	}
	return path
}
