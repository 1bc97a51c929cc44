// Attribute containers for Windows EventLog resources. Containers
// are plain data records retrieved from an attribute container store
// by type and filter expression. Relationships between containers are
// expressed as explicit identifier fields rather than object
// references, so a child container carries the serialized identifier
// of its parent.
package containers

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
)

// Container types stored in a winevt-rc attribute container store.
const (
	EventLogProviderContainerType     = "winevtrc_eventlog_provider"
	MessageFileContainerType          = "winevtrc_message_file"
	MessageStringContainerType        = "winevtrc_message_string"
	MessageStringMappingContainerType = "winevtrc_message_string_mapping"
	MessageTableContainerType         = "winevtrc_message_table"
)

// Container types ingested into a forensic case's storage from the
// source system itself.
const (
	WindowsEventLogProviderContainerType  = "windows_eventlog_provider"
	WindowsMessageFileContainerType       = "windows_eventlog_message_file"
	WindowsMessageStringContainerType     = "windows_eventlog_message_string"
	WindowsWevtTemplateEventContainerType = "windows_wevt_template_event"
	EnvironmentVariableContainerType      = "environment_variable"
)

// ContainerIdentifier is the store assigned identifier of a
// container. It is only valid within the store that assigned it.
type ContainerIdentifier struct {
	ContainerType string
	Sequence      int64
}

// CopyToString serializes the identifier so it can be stored in a
// back-reference column of a child container.
func (self ContainerIdentifier) CopyToString() string {
	return fmt.Sprintf("%s.%d", self.ContainerType, self.Sequence)
}

// AttributeContainer is implemented by every container type that can
// be registered with an attribute container store.
type AttributeContainer interface {
	ContainerType() string
	Identifier() *ContainerIdentifier
	SetIdentifier(identifier *ContainerIdentifier)

	// Schema returns the column names the container is stored under.
	Schema() []string

	// FromRow populates the container from a raw database row.
	FromRow(row *ordereddict.Dict) error
}

// identifiable provides the store assigned identifier plumbing shared
// by all container types.
type identifiable struct {
	identifier *ContainerIdentifier
}

func (self *identifiable) Identifier() *ContainerIdentifier {
	return self.identifier
}

func (self *identifiable) SetIdentifier(identifier *ContainerIdentifier) {
	self.identifier = identifier
}

// EventLogProvider describes a Windows EventLog publisher. The same
// record shape is used for both the winevtrc_eventlog_provider and
// the windows_eventlog_provider container types.
type EventLogProvider struct {
	identifiable
	container_type string

	AdditionalIdentifier  string
	CategoryMessageFiles  []string
	EventMessageFiles     []string
	GUID                  string
	LogSources            []string
	LogTypes              []string
	Name                  string
	ParameterMessageFiles []string
	WindowsVersion        string
}

func NewEventLogProvider(container_type string) *EventLogProvider {
	return &EventLogProvider{container_type: container_type}
}

func (self *EventLogProvider) ContainerType() string {
	return self.container_type
}

func (self *EventLogProvider) Schema() []string {
	return []string{
		"additional_identifier", "category_message_files",
		"event_message_files", "identifier", "log_sources",
		"log_types", "name", "parameter_message_files",
		"windows_version"}
}

func (self *EventLogProvider) FromRow(row *ordereddict.Dict) error {
	self.AdditionalIdentifier = rowString(row, "additional_identifier")
	self.GUID = rowString(row, "identifier")
	self.Name = rowString(row, "name")
	self.WindowsVersion = rowString(row, "windows_version")

	var err error
	self.CategoryMessageFiles, err = rowStringList(row, "category_message_files")
	if err != nil {
		return err
	}

	self.EventMessageFiles, err = rowStringList(row, "event_message_files")
	if err != nil {
		return err
	}

	self.LogSources, err = rowStringList(row, "log_sources")
	if err != nil {
		return err
	}

	self.LogTypes, err = rowStringList(row, "log_types")
	if err != nil {
		return err
	}

	self.ParameterMessageFiles, err = rowStringList(row, "parameter_message_files")
	return err
}

// MessageFile describes a resource bearing file (usually a DLL)
// referenced by one or more providers. Providers reference message
// files by Windows path, not by identifier, until the path is
// resolved against the store.
type MessageFile struct {
	identifiable
	container_type string

	FileVersion    string
	ProductVersion string
	WindowsPath    string
	WindowsVersion string
}

func NewMessageFile(container_type string) *MessageFile {
	return &MessageFile{container_type: container_type}
}

func (self *MessageFile) ContainerType() string {
	return self.container_type
}

func (self *MessageFile) Schema() []string {
	if self.container_type == WindowsMessageFileContainerType {
		return []string{"path"}
	}
	return []string{
		"file_version", "product_version", "windows_path",
		"windows_version"}
}

func (self *MessageFile) FromRow(row *ordereddict.Dict) error {
	self.FileVersion = rowString(row, "file_version")
	self.ProductVersion = rowString(row, "product_version")
	self.WindowsVersion = rowString(row, "windows_version")

	// The ingested case store uses "path" while the winevt-rc store
	// uses "windows_path".
	self.WindowsPath = rowString(row, "windows_path")
	if self.WindowsPath == "" {
		self.WindowsPath = rowString(row, "path")
	}
	return nil
}

// MessageTable is a per language message table contained in a message
// file. The owning message file is referenced by identifier.
type MessageTable struct {
	identifiable

	LanguageIdentifier    uint32
	MessageFileIdentifier string
}

func NewMessageTable() *MessageTable {
	return &MessageTable{}
}

func (self *MessageTable) ContainerType() string {
	return MessageTableContainerType
}

func (self *MessageTable) Schema() []string {
	return []string{"_message_file_identifier", "language_identifier"}
}

func (self *MessageTable) FromRow(row *ordereddict.Dict) error {
	self.MessageFileIdentifier = rowString(row, "_message_file_identifier")
	self.LanguageIdentifier = uint32(rowInt(row, "language_identifier"))
	return nil
}

// MessageString is a single localized message. Depending on the
// store generation it back references either its message table
// (winevt-rc store) or its message file (ingested case store).
type MessageString struct {
	identifiable
	container_type string

	LanguageIdentifier     uint32
	MessageFileIdentifier  string
	MessageIdentifier      uint32
	MessageTableIdentifier string
	Text                   string
}

func NewMessageString(container_type string) *MessageString {
	return &MessageString{container_type: container_type}
}

func (self *MessageString) ContainerType() string {
	return self.container_type
}

func (self *MessageString) Schema() []string {
	if self.container_type == WindowsMessageStringContainerType {
		return []string{
			"_message_file_identifier", "language_identifier",
			"message_identifier", "string"}
	}
	return []string{
		"_message_table_identifier", "language_identifier",
		"message_identifier", "text"}
}

func (self *MessageString) FromRow(row *ordereddict.Dict) error {
	self.MessageFileIdentifier = rowString(row, "_message_file_identifier")
	self.MessageTableIdentifier = rowString(row, "_message_table_identifier")
	self.LanguageIdentifier = uint32(rowInt(row, "language_identifier"))
	self.MessageIdentifier = uint32(rowInt(row, "message_identifier"))

	self.Text = rowString(row, "text")
	if self.Text == "" {
		self.Text = rowString(row, "string")
	}
	return nil
}

// MessageStringMapping is a WEVT_TEMPLATE event definition mapping an
// event identifier (and optional version) to the message identifier
// actually used to render it.
type MessageStringMapping struct {
	identifiable
	container_type string

	EventIdentifier       uint32
	EventVersion          int
	MessageFileIdentifier string
	MessageIdentifier     uint32
	ProviderIdentifier    string
}

func NewMessageStringMapping(container_type string) *MessageStringMapping {
	return &MessageStringMapping{container_type: container_type}
}

func (self *MessageStringMapping) ContainerType() string {
	return self.container_type
}

func (self *MessageStringMapping) Schema() []string {
	if self.container_type == WindowsWevtTemplateEventContainerType {
		return []string{
			"provider_identifier", "identifier", "version",
			"message_identifier"}
	}
	return []string{
		"_message_file_identifier", "event_identifier",
		"event_version", "message_identifier", "provider_identifier"}
}

func (self *MessageStringMapping) FromRow(row *ordereddict.Dict) error {
	self.MessageFileIdentifier = rowString(row, "_message_file_identifier")
	self.ProviderIdentifier = rowString(row, "provider_identifier")
	self.MessageIdentifier = uint32(rowInt(row, "message_identifier"))

	if self.container_type == WindowsWevtTemplateEventContainerType {
		self.EventIdentifier = uint32(rowInt(row, "identifier"))
		self.EventVersion = int(rowInt(row, "version"))
	} else {
		self.EventIdentifier = uint32(rowInt(row, "event_identifier"))
		self.EventVersion = int(rowInt(row, "event_version"))
	}
	return nil
}

// EnvironmentVariable is a name/value pair collected from the source
// system. Used to expand Windows paths such as %SystemRoot%.
type EnvironmentVariable struct {
	identifiable

	Name  string
	Value string
}

func NewEnvironmentVariable() *EnvironmentVariable {
	return &EnvironmentVariable{}
}

func (self *EnvironmentVariable) ContainerType() string {
	return EnvironmentVariableContainerType
}

func (self *EnvironmentVariable) Schema() []string {
	return []string{"name", "value"}
}

func (self *EnvironmentVariable) FromRow(row *ordereddict.Dict) error {
	self.Name = rowString(row, "name")
	self.Value = rowString(row, "value")
	return nil
}
