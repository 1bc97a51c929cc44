package utils

import (
	"testing"

	"github.com/alecthomas/assert"

	"www.velocidex.com/golang/winevtrc/containers"
)

func TestExpandWindowsPath(t *testing.T) {
	// Built in expansion when no variables were collected.
	assert.Equal(t, `C:\Windows\System32\MsObjs.dll`,
		ExpandWindowsPath(`%SystemRoot%\System32\MsObjs.dll`, nil))

	assert.Equal(t, `C:\Windows\System32\wevtsvc.dll`,
		ExpandWindowsPath(`%WinDir%\System32\wevtsvc.dll`, nil))

	// Collected variables win over built ins and match case
	// insensitively. A trailing backslash in the value does not
	// double up.
	variables := []*containers.EnvironmentVariable{{
		Name:  "SystemRoot",
		Value: `D:\Windows\`,
	}}
	assert.Equal(t, `D:\Windows\System32\MsObjs.dll`,
		ExpandWindowsPath(`%systemroot%\System32\MsObjs.dll`, variables))

	// Unknown variables are preserved.
	assert.Equal(t, `%ProgramData%\thing.dll`,
		ExpandWindowsPath(`%ProgramData%\thing.dll`, nil))
}

func TestGetWindowsSystemPath(t *testing.T) {
	path, filename := GetWindowsSystemPath(
		`%SystemRoot%\System32\MsObjs.dll`, nil)
	assert.Equal(t, `C:\Windows\System32`, path)
	assert.Equal(t, "MsObjs.dll", filename)

	// A bare filename lives in the system directory.
	path, filename = GetWindowsSystemPath("netmsg.dll", nil)
	assert.Equal(t, `C:\Windows\System32`, path)
	assert.Equal(t, "netmsg.dll", filename)
}
