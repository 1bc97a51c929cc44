package containers

import (
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/alecthomas/assert"
)

func TestEventLogProviderFromRow(t *testing.T) {
	row := ordereddict.NewDict().
		Set("identifier", "555908d1-a6d7-4695-8e1e-26931d2012f4").
		Set("name", "Service Control Manager").
		Set("log_sources", `["Service Control Manager", "SCM"]`).
		Set("event_message_files",
			`["%SystemRoot%\\System32\\services.exe"]`).
		Set("parameter_message_files", "[]")

	provider := NewEventLogProvider(EventLogProviderContainerType)
	assert.NoError(t, provider.FromRow(row))

	assert.Equal(t, "555908d1-a6d7-4695-8e1e-26931d2012f4", provider.GUID)
	assert.Equal(t,
		[]string{"Service Control Manager", "SCM"}, provider.LogSources)
	assert.Equal(t,
		[]string{`%SystemRoot%\System32\services.exe`},
		provider.EventMessageFiles)
	assert.Equal(t, 0, len(provider.ParameterMessageFiles))

	// Malformed list columns are data errors.
	bad_row := ordereddict.NewDict().Set("log_sources", "{not json")
	assert.Error(t, provider.FromRow(bad_row))
}

func TestMessageFileColumnVariants(t *testing.T) {
	// The ingested case store calls the column "path", the winevt-rc
	// store calls it "windows_path".
	message_file := NewMessageFile(WindowsMessageFileContainerType)
	assert.NoError(t, message_file.FromRow(
		ordereddict.NewDict().Set("path", `C:\Windows\System32\a.dll`)))
	assert.Equal(t, `C:\Windows\System32\a.dll`, message_file.WindowsPath)

	message_file = NewMessageFile(MessageFileContainerType)
	assert.NoError(t, message_file.FromRow(
		ordereddict.NewDict().Set(
			"windows_path", `C:\Windows\System32\b.dll`)))
	assert.Equal(t, `C:\Windows\System32\b.dll`, message_file.WindowsPath)
}

func TestContainerIdentifier(t *testing.T) {
	identifier := ContainerIdentifier{
		ContainerType: MessageTableContainerType,
		Sequence:      7,
	}
	assert.Equal(t, "winevtrc_message_table.7", identifier.CopyToString())
}
