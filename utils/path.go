// Windows path expansion for message file references. Message file
// paths recorded by EventLog providers are Windows style and usually
// contain environment variables, for example
// %SystemRoot%\System32\MsObjs.dll.
package utils

import (
	"regexp"
	"strings"

	"www.velocidex.com/golang/winevtrc/containers"
)

var environment_variable_regex = regexp.MustCompile(`%([^%\\]+)%`)

// Built in expansions used when the source system's environment
// variables were not collected.
var default_environment_variables = map[string]string{
	"systemroot": `C:\Windows`,
	"windir":     `C:\Windows`,
}

const default_system_path = `C:\Windows\System32`

// GetWindowsSystemPath expands environment variables in a Windows
// path and splits the result into its directory and filename. A bare
// filename is assumed to live in the system directory.
func GetWindowsSystemPath(
	windows_path string,
	environment_variables []*containers.EnvironmentVariable) (string, string) {

	expanded := ExpandWindowsPath(windows_path, environment_variables)

	separator := strings.LastIndex(expanded, `\`)
	if separator < 0 {
		return default_system_path, expanded
	}

	return expanded[:separator], expanded[separator+1:]
}

// ExpandWindowsPath substitutes %VAR% references, matching variable
// names case insensitively.
func ExpandWindowsPath(
	windows_path string,
	environment_variables []*containers.EnvironmentVariable) string {

	return environment_variable_regex.ReplaceAllStringFunc(
		windows_path, func(match string) string {
			name := strings.ToLower(strings.Trim(match, "%"))

			for _, variable := range environment_variables {
				if strings.ToLower(variable.Name) == name {
					return strings.TrimSuffix(variable.Value, `\`)
				}
			}

			value, pres := default_environment_variables[name]
			if pres {
				return value
			}

			return match
		})
}
