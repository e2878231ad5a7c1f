package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/spf13/pflag"
)

const (
	EnvironmentVariablePrefix = "CONSOLE_"

	// fileSuffix is appended to a variable name to read the flag value from
	// the named file instead.
	fileSuffix = "_FILE"
)

// SetFlagsFromEnvVariables sets each unset flag from an env variable whose
// name starts with `CONSOLE_`, e.g. --webhook-secret is set from
// CONSOLE_WEBHOOK_SECRET. If CONSOLE_WEBHOOK_SECRET_FILE is set instead then
// the flag is set to the contents of that file.
func SetFlagsFromEnvVariables(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		// a flag that is itself a file path is never read from a file
		if strings.HasSuffix(strings.ToUpper(f.Name), fileSuffix) {
			if val, ok := os.LookupEnv(flagToEnvVarName(f)); ok {
				err = fs.Set(f.Name, val)
			}
			return
		}
		if val, ok := os.LookupEnv(flagToEnvVarName(f)); ok {
			err = fs.Set(f.Name, val)
			return
		}
		if path, ok := os.LookupEnv(flagToEnvVarName(f) + fileSuffix); ok {
			contents, readErr := os.ReadFile(path)
			if readErr != nil {
				err = fmt.Errorf("reading %s for flag --%s: %w", path, f.Name, readErr)
				return
			}
			err = fs.Set(f.Name, string(contents))
		}
	})
	return err
}

// UnsetConsoleVars unsets env vars prefixed with `CONSOLE_`
func UnsetConsoleVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvironmentVariablePrefix) {
			if err := os.Unsetenv(name); err != nil {
				panic(err.Error())
			}
		}
	}
}

func flagToEnvVarName(f *pflag.Flag) string {
	return EnvironmentVariablePrefix + strcase.ToScreamingSnake(f.Name)
}
