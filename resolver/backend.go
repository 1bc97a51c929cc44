package resolver

import (
	"fmt"

	"www.velocidex.com/golang/winevtrc/acstore"
	"www.velocidex.com/golang/winevtrc/containers"
	"www.velocidex.com/golang/winevtrc/resources"
)

// backend resolves messages through one of the supported store
// generations. The resolver holds a single instance, chosen once at
// first use.
type backend interface {
	getMessageString(
		provider_identifier string, log_source string,
		message_identifier uint32, event_version int) (string, error)

	getParameterString(
		provider_identifier string, log_source string,
		message_identifier uint32) (string, error)

	close() error
}

// storageBackend resolves against the forensic case's ingested
// storage using the windows_eventlog_* container family.
type storageBackend struct {
	resolver *Resolver
	reader   acstore.StorageReader
}

func (self *storageBackend) getMessageString(
	provider_identifier string, log_source string,
	message_identifier uint32, event_version int) (string, error) {

	resolver := self.resolver

	resolver.loadEnvironmentVariables(self.reader)

	err := resolver.loadProviders(
		self.reader, containers.WindowsEventLogProviderContainerType)
	if err != nil {
		return "", err
	}

	err = resolver.loadMessageFiles(
		self.reader, containers.WindowsMessageFileContainerType)
	if err != nil {
		return "", err
	}

	provider, lookup_key := resolver.getProvider(
		provider_identifier, log_source)
	if provider == nil {
		return "", nil
	}

	if !self.reader.HasAttributeContainers(
		containers.WindowsMessageStringContainerType) {
		return "", nil
	}

	original_identifier := message_identifier
	message_identifier, err = self.getMappedMessageIdentifier(
		provider, provider_identifier, message_identifier, event_version)
	if err != nil {
		return "", err
	}

	message_file_identifiers := resolver.getMessageFileIdentifiers(
		provider.EventMessageFiles)
	if len(message_file_identifiers) == 0 {
		resolver.logger.Warnf(
			"No event message file for identifier 0x%08x "+
				"(original 0x%08x) of provider %s",
			message_identifier, original_identifier, lookup_key)
		return "", nil
	}

	message_string, err := self.getMessageText(
		message_file_identifiers, message_identifier)
	if err != nil {
		return "", err
	}
	if message_string == "" {
		resolver.logger.Warnf(
			"No message string for identifier 0x%08x "+
				"(original 0x%08x) of provider %s",
			message_identifier, original_identifier, lookup_key)
	}

	return message_string, nil
}

func (self *storageBackend) getParameterString(
	provider_identifier string, log_source string,
	message_identifier uint32) (string, error) {

	resolver := self.resolver

	resolver.loadEnvironmentVariables(self.reader)

	err := resolver.loadProviders(
		self.reader, containers.WindowsEventLogProviderContainerType)
	if err != nil {
		return "", err
	}

	err = resolver.loadMessageFiles(
		self.reader, containers.WindowsMessageFileContainerType)
	if err != nil {
		return "", err
	}

	provider, lookup_key := resolver.getProvider(
		provider_identifier, log_source)
	if provider == nil {
		return "", nil
	}

	if !self.reader.HasAttributeContainers(
		containers.WindowsMessageStringContainerType) {
		return "", nil
	}

	// When a provider defines no parameter message files fall back to
	// its event message files and the default system files.
	message_files := provider.ParameterMessageFiles
	if len(message_files) == 0 {
		message_files = append([]string{}, provider.EventMessageFiles...)
		message_files = append(
			message_files, default_parameter_message_files...)
	}

	message_file_identifiers := resolver.getMessageFileIdentifiers(
		message_files)
	if len(message_file_identifiers) == 0 {
		resolver.logger.Warnf(
			"No parameter message file for identifier 0x%08x "+
				"of provider %s", message_identifier, lookup_key)
		return "", nil
	}

	message_string, err := self.getMessageText(
		message_file_identifiers, message_identifier)
	if err != nil {
		return "", err
	}
	if message_string == "" {
		resolver.logger.Warnf(
			"No parameter string for identifier 0x%08x of provider %s",
			message_identifier, lookup_key)
	}

	return message_string, nil
}

func (self *storageBackend) close() error {
	// The storage reader is owned by the caller.
	return nil
}

// getMappedMessageIdentifier maps an event identifier to the message
// identifier defined by a matching WEVT_TEMPLATE event definition.
// Without a matching definition the identifier maps to itself.
func (self *storageBackend) getMappedMessageIdentifier(
	provider *containers.EventLogProvider, provider_identifier string,
	message_identifier uint32, event_version int) (uint32, error) {

	if provider_identifier == "" || !self.reader.HasAttributeContainers(
		containers.WindowsWevtTemplateEventContainerType) {
		return message_identifier, nil
	}

	// Event definitions store the provider identifier in whatever
	// form the producer used, which may be braced. Filter with the
	// provider container's own identifier rather than the normalized
	// caller form.
	stored_identifier := provider.GUID
	if stored_identifier == "" {
		stored_identifier = provider_identifier
	}

	filter_expression := fmt.Sprintf(
		`provider_identifier == "%s" and identifier == %d`,
		stored_identifier, message_identifier)
	if event_version >= 0 {
		filter_expression += fmt.Sprintf(
			` and version == %d`, event_version)
	}

	definitions, err := self.reader.GetAttributeContainers(
		containers.WindowsWevtTemplateEventContainerType,
		filter_expression)
	if err != nil {
		return 0, err
	}

	for _, container := range definitions {
		definition, ok := container.(*containers.MessageStringMapping)
		if !ok {
			continue
		}

		self.resolver.logger.Debugf(
			"Message 0x%08x of provider %s maps to 0x%08x",
			message_identifier, provider_identifier,
			definition.MessageIdentifier)

		return definition.MessageIdentifier, nil
	}

	return message_identifier, nil
}

// getMessageText queries message strings for the active locale and
// message identifier, keeping the first one contained in one of the
// given message files.
func (self *storageBackend) getMessageText(
	message_file_identifiers []string, message_identifier uint32) (
	string, error) {

	filter_expression := fmt.Sprintf(
		"language_identifier == %d and message_identifier == %d",
		self.resolver.lcid, message_identifier)

	message_strings, err := self.reader.GetAttributeContainers(
		containers.WindowsMessageStringContainerType, filter_expression)
	if err != nil {
		return "", err
	}

	for _, container := range message_strings {
		message_string, ok := container.(*containers.MessageString)
		if !ok {
			continue
		}

		if stringInSlice(message_file_identifiers,
			message_string.MessageFileIdentifier) {
			return message_string.Text, nil
		}
	}

	return "", nil
}

// legacyBackend delegates to the legacy flat database resolver.
type legacyBackend struct {
	resolver *Resolver
	reader   *resources.LegacyDatabaseReader
}

func (self *legacyBackend) getMessageString(
	provider_identifier string, log_source string,
	message_identifier uint32, event_version int) (string, error) {

	return self.reader.GetMessage(
		log_source, self.resolver.lcid, message_identifier)
}

func (self *legacyBackend) getParameterString(
	provider_identifier string, log_source string,
	message_identifier uint32) (string, error) {

	// The legacy database format has no parameter message tables.
	return "", nil
}

func (self *legacyBackend) close() error {
	return self.reader.Close()
}

// containerBackend resolves against a winevt-rc attribute container
// store opened as a file based fallback. It mirrors the storage
// reader pipeline but traverses explicit message table containers and
// applies the store's string format conversion.
type containerBackend struct {
	resolver *Resolver
	store    *resources.Store
}

func (self *containerBackend) getMessageString(
	provider_identifier string, log_source string,
	message_identifier uint32, event_version int) (string, error) {

	resolver := self.resolver

	err := resolver.loadProviders(
		self.store, containers.EventLogProviderContainerType)
	if err != nil {
		return "", err
	}

	err = resolver.loadMessageFiles(
		self.store, containers.MessageFileContainerType)
	if err != nil {
		return "", err
	}

	provider, lookup_key := resolver.getProvider(
		provider_identifier, log_source)
	if provider == nil {
		return "", nil
	}

	original_identifier := message_identifier
	message_identifier, err = self.getMappedMessageIdentifier(
		provider, provider_identifier, message_identifier, event_version)
	if err != nil {
		return "", err
	}

	message_file_identifiers := resolver.getMessageFileIdentifiers(
		provider.EventMessageFiles)
	if len(message_file_identifiers) == 0 {
		resolver.logger.Warnf(
			"No event message file for identifier 0x%08x "+
				"(original 0x%08x) of provider %s",
			message_identifier, original_identifier, lookup_key)
		return "", nil
	}

	message_string, err := self.getMessageText(
		message_file_identifiers, message_identifier)
	if err != nil {
		return "", err
	}
	if message_string == "" {
		resolver.logger.Warnf(
			"No message string for identifier 0x%08x "+
				"(original 0x%08x) of provider %s",
			message_identifier, original_identifier, lookup_key)
		return "", nil
	}

	if self.store.StringFormat == resources.StringFormatWRC {
		message_string = resources.FormatMessageStringInPEP3101(
			message_string)
	}

	return message_string, nil
}

func (self *containerBackend) getParameterString(
	provider_identifier string, log_source string,
	message_identifier uint32) (string, error) {

	resolver := self.resolver

	err := resolver.loadProviders(
		self.store, containers.EventLogProviderContainerType)
	if err != nil {
		return "", err
	}

	err = resolver.loadMessageFiles(
		self.store, containers.MessageFileContainerType)
	if err != nil {
		return "", err
	}

	provider, lookup_key := resolver.getProvider(
		provider_identifier, log_source)
	if provider == nil {
		return "", nil
	}

	message_files := provider.ParameterMessageFiles
	if len(message_files) == 0 {
		message_files = append([]string{}, provider.EventMessageFiles...)
		message_files = append(
			message_files, default_parameter_message_files...)
	}

	message_file_identifiers := resolver.getMessageFileIdentifiers(
		message_files)
	if len(message_file_identifiers) == 0 {
		resolver.logger.Warnf(
			"No parameter message file for identifier 0x%08x "+
				"of provider %s", message_identifier, lookup_key)
		return "", nil
	}

	message_string, err := self.getMessageText(
		message_file_identifiers, message_identifier)
	if err != nil {
		return "", err
	}
	if message_string == "" {
		resolver.logger.Warnf(
			"No parameter string for identifier 0x%08x of provider %s",
			message_identifier, lookup_key)
		return "", nil
	}

	if self.store.StringFormat == resources.StringFormatWRC {
		message_string = resources.FormatMessageStringInPEP3101(
			message_string)
	}

	return message_string, nil
}

func (self *containerBackend) close() error {
	return self.store.Close()
}

func (self *containerBackend) getMappedMessageIdentifier(
	provider *containers.EventLogProvider, provider_identifier string,
	message_identifier uint32, event_version int) (uint32, error) {

	if provider_identifier == "" || !self.store.HasAttributeContainers(
		containers.MessageStringMappingContainerType) {
		return message_identifier, nil
	}

	// Filter with the identifier as the store recorded it, see the
	// storage backend variant.
	stored_identifier := provider.GUID
	if stored_identifier == "" {
		stored_identifier = provider_identifier
	}

	filter_expression := fmt.Sprintf(
		`provider_identifier == "%s" and event_identifier == %d`,
		stored_identifier, message_identifier)
	if event_version >= 0 {
		filter_expression += fmt.Sprintf(
			` and event_version == %d`, event_version)
	}

	mappings, err := self.store.GetAttributeContainers(
		containers.MessageStringMappingContainerType, filter_expression)
	if err != nil {
		return 0, err
	}

	for _, container := range mappings {
		mapping, ok := container.(*containers.MessageStringMapping)
		if !ok {
			continue
		}

		self.resolver.logger.Debugf(
			"Message 0x%08x of provider %s maps to 0x%08x",
			message_identifier, provider_identifier,
			mapping.MessageIdentifier)

		return mapping.MessageIdentifier, nil
	}

	return message_identifier, nil
}

// getMessageText traverses message tables: for each candidate message
// file, find its message table for the active locale, then the
// message string inside that table.
func (self *containerBackend) getMessageText(
	message_file_identifiers []string, message_identifier uint32) (
	string, error) {

	for _, message_file_identifier := range message_file_identifiers {
		filter_expression := fmt.Sprintf(
			`_message_file_identifier == "%s" and language_identifier == %d`,
			message_file_identifier, self.resolver.lcid)

		message_tables, err := self.store.GetAttributeContainers(
			containers.MessageTableContainerType, filter_expression)
		if err != nil {
			return "", err
		}

		for _, container := range message_tables {
			message_table, ok := container.(*containers.MessageTable)
			if !ok {
				continue
			}

			table_identifier := message_table.Identifier().CopyToString()
			filter_expression := fmt.Sprintf(
				`_message_table_identifier == "%s" and message_identifier == %d`,
				table_identifier, message_identifier)

			message_strings, err := self.store.GetAttributeContainers(
				containers.MessageStringContainerType, filter_expression)
			if err != nil {
				return "", err
			}

			for _, string_container := range message_strings {
				message_string, ok := string_container.(*containers.MessageString)
				if ok && message_string.Text != "" {
					return message_string.Text, nil
				}
			}
		}
	}

	return "", nil
}
