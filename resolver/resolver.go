/*
   Velociraptor - Dig Deeper
   Copyright (C) 2019-2025 Rapid7 Inc.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Resolution of Windows EventLog message identifiers into localized
// message strings.
//
// A resolver prefers resources already ingested into the forensic
// case's storage. When the case holds no EventLog provider containers
// it falls back to a winevt-rc database in the configured data
// location, which may be either the legacy flat sqlite format or the
// newer attribute container store format. Resolved strings are cached
// so rendering millions of records touches the backing store only
// once per distinct message.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"www.velocidex.com/golang/winevtrc/acstore"
	"www.velocidex.com/golang/winevtrc/containers"
	"www.velocidex.com/golang/winevtrc/languages"
	"www.velocidex.com/golang/winevtrc/logging"
	"www.velocidex.com/golang/winevtrc/resources"
	"www.velocidex.com/golang/winevtrc/utils"
)

// NoEventVersion marks a lookup without an event version. Only non
// negative versions qualify cache keys and template mappings.
const NoEventVersion = -1

// Filename of the fallback resource database inside the data
// location.
const WinevtRcDatabase = "winevt-rc.db"

// Parameter message files consulted when a provider defines none of
// its own.
var default_parameter_message_files = []string{
	`%SystemRoot%\System32\MsObjs.dll`,
	`%SystemRoot%\System32\kernel32.dll`,
}

// Resolver maps (provider identifier, log source, message identifier,
// event version) tuples to localized message strings. It is not safe
// for concurrent use - each worker owns its own instance.
type Resolver struct {
	data_location string
	lcid          uint32
	language_tag  string

	cache  *MessageStringCache
	logger *logrus.Entry

	storage_reader acstore.StorageReader
	active         backend

	environment_variables        []*containers.EnvironmentVariable
	environment_variables_loaded bool

	// Lazily built indexes over the active store. Both maps are keyed
	// lower case.
	providers     map[string]*containers.EventLogProvider
	message_files map[string]string

	fallback_checked bool
	fallback         backend
}

// NewResolver creates a resolver. The storage reader may be nil. A
// zero LCID selects en-US.
func NewResolver(
	storage_reader acstore.StorageReader,
	data_location string, lcid uint32) *Resolver {

	if lcid == 0 {
		lcid = languages.DefaultLCID
	}

	language_tag, pres := languages.GetLanguageTagForLCID(lcid)
	if !pres {
		language_tag, _ = languages.GetLanguageTagForLCID(
			languages.DefaultLCID)
	}

	self := &Resolver{
		data_location: data_location,
		lcid:          lcid,
		language_tag:  strings.ToLower(language_tag),
		cache:         NewMessageStringCache(MaxCachedMessageStrings),
		logger:        logging.GetLogger(),
	}

	if storage_reader != nil && storage_reader.HasAttributeContainers(
		containers.WindowsEventLogProviderContainerType) {
		self.storage_reader = storage_reader
	}

	return self
}

// GetMessageString retrieves a specific Windows EventLog message
// string. An empty result means the message could not be resolved,
// which is not an error. Errors indicate a corrupt resource store.
func (self *Resolver) GetMessageString(
	provider_identifier string, log_source string,
	message_identifier uint32, event_version int) (string, error) {

	if provider_identifier != "" {
		provider_identifier = NormalizeProviderIdentifier(provider_identifier)
	}

	// Cache keys are case folded but the backend receives the
	// caller's log source verbatim, the legacy database stores
	// sources with their original casing.
	cache_source := strings.ToLower(log_source)

	message_string, pres := self.cache.Get(
		provider_identifier, cache_source, message_identifier, event_version)
	if pres {
		return message_string, nil
	}

	active := self.activeBackend()
	if active == nil {
		return "", nil
	}

	message_string, err := active.getMessageString(
		provider_identifier, log_source, message_identifier, event_version)
	if err != nil || message_string == "" {
		return "", err
	}

	self.cache.Put(provider_identifier, cache_source, message_identifier,
		event_version, message_string)

	return message_string, nil
}

// GetParameterString retrieves a specific Windows EventLog parameter
// string. Parameter lookups are never version qualified.
func (self *Resolver) GetParameterString(
	provider_identifier string, log_source string,
	message_identifier uint32) (string, error) {

	if provider_identifier != "" {
		provider_identifier = NormalizeProviderIdentifier(provider_identifier)
	}
	cache_source := strings.ToLower(log_source)

	message_string, pres := self.cache.Get(
		provider_identifier, cache_source, message_identifier, NoEventVersion)
	if pres {
		return message_string, nil
	}

	active := self.activeBackend()
	if active == nil {
		return "", nil
	}

	message_string, err := active.getParameterString(
		provider_identifier, log_source, message_identifier)
	if err != nil || message_string == "" {
		return "", err
	}

	self.cache.Put(provider_identifier, cache_source, message_identifier,
		NoEventVersion, message_string)

	return message_string, nil
}

// Close releases the fallback database if one was opened. The storage
// reader is owned by the caller and is left open.
func (self *Resolver) Close() error {
	if self.fallback != nil {
		err := self.fallback.close()
		self.fallback = nil
		return err
	}
	return nil
}

// activeBackend selects the resolution backend once per resolver
// lifetime.
func (self *Resolver) activeBackend() backend {
	if self.active != nil {
		return self.active
	}

	if self.storage_reader != nil {
		self.active = &storageBackend{
			resolver: self,
			reader:   self.storage_reader,
		}
		return self.active
	}

	self.active = self.fallbackBackend()
	return self.active
}

// fallbackBackend opens the winevt-rc database in the data location,
// at most once per resolver instance. The legacy flat format is tried
// first, then the attribute container store format. Failure to open
// degrades resolution to always missing.
func (self *Resolver) fallbackBackend() backend {
	if self.fallback_checked {
		return self.fallback
	}
	self.fallback_checked = true

	if self.data_location == "" {
		return nil
	}

	self.logger.Warnf(
		"Falling back to %s. Please make sure the Windows EventLog "+
			"message strings in the database correspond to those in the "+
			"EventLog files.", WinevtRcDatabase)

	database_path := filepath.Join(self.data_location, WinevtRcDatabase)
	_, err := os.Stat(database_path)
	if err != nil {
		self.logger.Warnf("Resource database %s not found", database_path)
		return nil
	}

	legacy_reader := resources.NewLegacyDatabaseReader()
	ok, legacy_err := legacy_reader.Open(database_path)
	if ok && legacy_err == nil {
		self.fallback = &legacyBackend{
			resolver: self,
			reader:   legacy_reader,
		}
		return self.fallback
	}
	_ = legacy_reader.Close()

	store, err := resources.OpenStore(database_path)
	if err != nil {
		if legacy_err != nil {
			self.logger.WithError(legacy_err).Warnf(
				"Unable to open %s", database_path)
		}
		self.logger.WithError(err).Warnf(
			"Unable to open %s", database_path)
		return nil
	}

	self.fallback = &containerBackend{
		resolver: self,
		store:    store,
	}
	return self.fallback
}

func (self *Resolver) loadEnvironmentVariables(
	reader acstore.StorageReader) {

	if self.environment_variables_loaded {
		return
	}
	self.environment_variables_loaded = true

	if !reader.HasAttributeContainers(
		containers.EnvironmentVariableContainerType) {
		return
	}

	variables, err := reader.GetAttributeContainers(
		containers.EnvironmentVariableContainerType, "")
	if err != nil {
		self.logger.WithError(err).Warn(
			"Unable to read environment variables")
		return
	}

	for _, container := range variables {
		variable, ok := container.(*containers.EnvironmentVariable)
		if ok {
			self.environment_variables = append(
				self.environment_variables, variable)
		}
	}
}

// loadProviders builds the provider index, keyed both by normalized
// provider identifier and by lower cased log source.
func (self *Resolver) loadProviders(
	reader acstore.StorageReader, container_type string) error {

	if self.providers != nil {
		return nil
	}
	self.providers = make(map[string]*containers.EventLogProvider)

	if !reader.HasAttributeContainers(container_type) {
		return nil
	}

	provider_containers, err := reader.GetAttributeContainers(
		container_type, "")
	if err != nil {
		return err
	}

	for _, container := range provider_containers {
		provider, ok := container.(*containers.EventLogProvider)
		if !ok {
			continue
		}

		if provider.GUID != "" {
			lookup_key := NormalizeProviderIdentifier(provider.GUID)
			self.providers[lookup_key] = provider
		}

		for _, log_source := range provider.LogSources {
			self.providers[strings.ToLower(log_source)] = provider
		}
	}

	return nil
}

// loadMessageFiles builds the message file index mapping the lower
// cased expanded `path\filename` to the store assigned identifier.
func (self *Resolver) loadMessageFiles(
	reader acstore.StorageReader, container_type string) error {

	if self.message_files != nil {
		return nil
	}
	self.message_files = make(map[string]string)

	if !reader.HasAttributeContainers(container_type) {
		return nil
	}

	file_containers, err := reader.GetAttributeContainers(
		container_type, "")
	if err != nil {
		return err
	}

	for _, container := range file_containers {
		message_file, ok := container.(*containers.MessageFile)
		if !ok || message_file.WindowsPath == "" {
			continue
		}

		path, filename := utils.GetWindowsSystemPath(
			message_file.WindowsPath, self.environment_variables)

		lookup_path := strings.ToLower(path + `\` + filename)
		self.message_files[lookup_path] = container.Identifier().CopyToString()
	}

	return nil
}

// getProvider resolves a provider first by identifier, falling back
// to the log source. Returns the provider (or nil) and the lookup key
// that was used, for diagnostics.
func (self *Resolver) getProvider(
	provider_identifier string, log_source string) (
	*containers.EventLogProvider, string) {

	lookup_key := ""

	if provider_identifier != "" {
		lookup_key = NormalizeProviderIdentifier(provider_identifier)
		provider, pres := self.providers[lookup_key]
		if pres {
			return provider, lookup_key
		}
	}

	lookup_key = strings.ToLower(log_source)
	provider, pres := self.providers[lookup_key]
	if pres {
		return provider, lookup_key
	}

	return nil, lookup_key
}

// getMessageFileIdentifiers maps candidate Windows paths to store
// identifiers. Each path is matched twice - once as the literal
// resolved path and once as the localized .mui resource overlay for
// the active language tag. Both matches contribute independently.
func (self *Resolver) getMessageFileIdentifiers(
	message_files []string) []string {

	result := []string{}
	for _, windows_path := range message_files {
		path, filename := utils.GetWindowsSystemPath(
			windows_path, self.environment_variables)

		lookup_path := strings.ToLower(path + `\` + filename)
		identifier, pres := self.message_files[lookup_path]
		if pres {
			result = append(result, identifier)
		}

		mui_lookup_path := strings.ToLower(
			path + `\` + self.language_tag + `\` + filename + ".mui")
		identifier, pres = self.message_files[mui_lookup_path]
		if pres {
			result = append(result, identifier)
		}
	}

	return result
}

// NormalizeProviderIdentifier lower cases a provider identifier.
// Braced and unbraced GUID forms normalize to the same key.
func NormalizeProviderIdentifier(provider_identifier string) string {
	parsed, err := uuid.Parse(provider_identifier)
	if err == nil {
		return parsed.String()
	}
	return strings.ToLower(provider_identifier)
}

func stringInSlice(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}
