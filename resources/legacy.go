// Resolver for the legacy flat winevt-rc database format. The
// database stores provider to message file relations in fixed tables
// and one message table per (message file, LCID) pair.
package resources

import (
	"fmt"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/Velocidex/ttlcache/v2"
	"github.com/pkg/errors"

	"www.velocidex.com/golang/winevtrc/database"
)

// The single database version the legacy reader supports.
const SupportedDatabaseVersion = "20150315"

// Probing the same absent message table for every record is the hot
// path when rendering large timelines, so table existence checks are
// memoized.
const table_cache_size = 4096

var (
	ErrUnsupportedVersion      = errors.New("Unsupported database version")
	ErrUnsupportedStringFormat = errors.New("Unsupported string format")

	// The database holds more than one row where exactly one is
	// expected. This indicates a corrupt database, not a normal miss.
	ErrMoreThanOneValue = errors.New("More than one value found in database")
)

type LegacyDatabaseReader struct {
	database      *database.SqliteDatabaseFile
	string_format string

	table_cache *ttlcache.Cache
}

func NewLegacyDatabaseReader() *LegacyDatabaseReader {
	table_cache := ttlcache.NewCache()
	table_cache.SetCacheSizeLimit(table_cache_size)
	table_cache.SkipTTLExtensionOnHit(true)

	return &LegacyDatabaseReader{
		database:      database.NewSqliteDatabaseFile(),
		string_format: StringFormatWRC,
		table_cache:   table_cache,
	}
}

// Open opens the database file read only and validates its metadata.
// A driver level failure reports (false, nil) so the caller can try
// the next store generation. An unsupported version or string format
// is an error - the database exists but can not be used.
func (self *LegacyDatabaseReader) Open(filename string) (bool, error) {
	ok, err := self.database.Open(filename, true)
	if err != nil || !ok {
		return false, err
	}

	version, err := self.GetMetadataAttribute("version")
	if err != nil {
		self.database.Close()
		return false, err
	}

	if version != SupportedDatabaseVersion {
		self.database.Close()
		return false, errors.Wrap(ErrUnsupportedVersion, version)
	}

	string_format, err := self.GetMetadataAttribute("string_format")
	if err != nil {
		self.database.Close()
		return false, err
	}

	if string_format == "" {
		string_format = StringFormatWRC
	}

	if string_format != StringFormatWRC &&
		string_format != StringFormatPEP3101 {
		self.database.Close()
		return false, errors.Wrap(ErrUnsupportedStringFormat, string_format)
	}

	self.string_format = string_format
	return true, nil
}

func (self *LegacyDatabaseReader) Close() error {
	_ = self.table_cache.Close()
	return self.database.Close()
}

func (self *LegacyDatabaseReader) StringFormat() string {
	return self.string_format
}

// GetMessage retrieves a specific message for a specific EventLog
// source. The provider's message files are probed in store order and
// the first non empty message wins. A miss is ("", nil).
func (self *LegacyDatabaseReader) GetMessage(
	log_source string, lcid uint32, message_identifier uint32) (string, error) {

	provider_key, pres, err := self.getEventLogProviderKey(log_source)
	if err != nil || !pres {
		return "", err
	}

	message_file_keys, err := self.getMessageFileKeys(provider_key)
	if err != nil {
		return "", err
	}

	message_string := ""
	for _, message_file_key := range message_file_keys {
		message_string, err = self.getMessage(
			message_file_key, lcid, message_identifier)
		if err != nil {
			return "", err
		}

		if message_string != "" {
			break
		}
	}

	if message_string != "" && self.string_format == StringFormatWRC {
		message_string = FormatMessageStringInPEP3101(message_string)
	}

	return message_string, nil
}

// GetMetadataAttribute retrieves a metadata attribute by name. An
// absent metadata table or row is not an error.
func (self *LegacyDatabaseReader) GetMetadataAttribute(
	attribute_name string) (string, error) {

	has_table, err := self.database.HasTable("metadata")
	if err != nil || !has_table {
		return "", err
	}

	condition := fmt.Sprintf(`name == "%s"`, attribute_name)
	values, err := self.database.GetValues(
		[]string{"metadata"}, []string{"value"}, condition)
	if err != nil {
		return "", err
	}

	switch len(values) {
	case 0:
		return "", nil
	case 1:
		return rowStringValue(values[0], "value"), nil
	default:
		return "", errors.Wrap(ErrMoreThanOneValue, "metadata")
	}
}

func (self *LegacyDatabaseReader) getEventLogProviderKey(
	log_source string) (int64, bool, error) {

	condition := fmt.Sprintf(`log_source == "%s"`, log_source)
	values, err := self.database.GetValues(
		[]string{"event_log_providers"},
		[]string{"event_log_provider_key"}, condition)
	if err != nil {
		return 0, false, err
	}

	switch len(values) {
	case 0:
		return 0, false, nil
	case 1:
		return rowIntValue(values[0], "event_log_provider_key"), true, nil
	default:
		return 0, false, errors.Wrap(
			ErrMoreThanOneValue, "event_log_providers")
	}
}

func (self *LegacyDatabaseReader) getMessageFileKeys(
	provider_key int64) ([]int64, error) {

	condition := fmt.Sprintf("event_log_provider_key == %d", provider_key)
	values, err := self.database.GetValues(
		[]string{"message_file_per_event_log_provider"},
		[]string{"message_file_key"}, condition)
	if err != nil {
		return nil, err
	}

	result := make([]int64, 0, len(values))
	for _, row := range values {
		result = append(result, rowIntValue(row, "message_file_key"))
	}
	return result, nil
}

// getMessage retrieves a message from the message table of a specific
// (message file, LCID) pair.
func (self *LegacyDatabaseReader) getMessage(
	message_file_key int64, lcid uint32, message_identifier uint32) (
	string, error) {

	table_name := fmt.Sprintf(
		"message_table_%d_0x%08x", message_file_key, lcid)

	has_table, err := self.hasMessageTable(table_name)
	if err != nil || !has_table {
		return "", err
	}

	condition := fmt.Sprintf(
		`message_identifier == "0x%08x"`, message_identifier)
	values, err := self.database.GetValues(
		[]string{table_name}, []string{"message_string"}, condition)
	if err != nil {
		return "", err
	}

	switch len(values) {
	case 0:
		return "", nil
	case 1:
		return rowStringValue(values[0], "message_string"), nil
	default:
		return "", errors.Wrap(ErrMoreThanOneValue, table_name)
	}
}

func (self *LegacyDatabaseReader) hasMessageTable(
	table_name string) (bool, error) {

	cached, err := self.table_cache.Get(table_name)
	if err == nil {
		return cached.(bool), nil
	}

	has_table, err := self.database.HasTable(table_name)
	if err != nil {
		return false, err
	}

	_ = self.table_cache.Set(table_name, has_table)
	return has_table, nil
}

// GetMetadata reads all metadata attributes of the database.
func (self *LegacyDatabaseReader) GetMetadata() (map[string]string, error) {
	values, err := self.database.GetValues(
		[]string{"metadata"}, []string{"name", "value"}, "")
	if err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, row := range values {
		result[rowStringValue(row, "name")] = rowStringValue(row, "value")
	}
	return result, nil
}

// GetEventLogProviders lists all providers together with the paths of
// their message files.
func (self *LegacyDatabaseReader) GetEventLogProviders() (
	[]*ordereddict.Dict, error) {

	provider_rows, err := self.database.GetValues(
		[]string{"event_log_providers"},
		[]string{"event_log_provider_key", "log_source", "provider_guid"},
		"")
	if err != nil {
		return nil, err
	}

	result := make([]*ordereddict.Dict, 0, len(provider_rows))
	for _, provider_row := range provider_rows {
		provider_key := rowIntValue(provider_row, "event_log_provider_key")

		condition := fmt.Sprintf(
			"message_file_per_event_log_provider.event_log_provider_key == %d "+
				"AND message_file_per_event_log_provider.message_file_key "+
				"== message_files.message_file_key", provider_key)
		file_rows, err := self.database.GetValues(
			[]string{"message_file_per_event_log_provider", "message_files"},
			[]string{"message_files.path"}, condition)
		if err != nil {
			return nil, err
		}

		paths := make([]string, 0, len(file_rows))
		for _, file_row := range file_rows {
			paths = append(paths,
				rowStringValue(file_row, "message_files.path"))
		}

		result = append(result, ordereddict.NewDict().
			Set("log_source", rowStringValue(provider_row, "log_source")).
			Set("provider_guid",
				rowStringValue(provider_row, "provider_guid")).
			Set("event_message_files", strings.Join(paths, ", ")))
	}

	return result, nil
}
