package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type LegacyTestSuite struct {
	suite.Suite

	test_dir string
}

func (self *LegacyTestSuite) SetupTest() {
	var err error
	self.test_dir, err = os.MkdirTemp("", "winevtrc_test")
	assert.NoError(self.T(), err)
}

func (self *LegacyTestSuite) TearDownTest() {
	os.RemoveAll(self.test_dir)
}

// createLegacyDatabase builds a minimal legacy resource database with
// one provider with two message files. The first message file's table
// deliberately holds an empty string for 0x00000003 so lookups fall
// through to the second file.
func (self *LegacyTestSuite) createLegacyDatabase(
	filename string, version string) string {

	database_path := filepath.Join(self.test_dir, filename)

	handle, err := sqlx.Connect("sqlite3", database_path)
	assert.NoError(self.T(), err)
	defer handle.Close()

	statements := []string{
		`CREATE TABLE metadata (name TEXT, value TEXT)`,
		`INSERT INTO metadata VALUES ("version", "` + version + `")`,

		`CREATE TABLE event_log_providers (
		   event_log_provider_key INTEGER PRIMARY KEY,
		   log_source TEXT, log_type TEXT, provider_guid TEXT)`,
		`INSERT INTO event_log_providers VALUES
		   (1, "Service Control Manager", "System",
		    "{555908d1-a6d7-4695-8e1e-26931d2012f4}")`,

		`CREATE TABLE message_files (
		   message_file_key INTEGER PRIMARY KEY, path TEXT)`,
		`INSERT INTO message_files VALUES
		   (1, "%SystemRoot%\System32\services.exe")`,
		`INSERT INTO message_files VALUES
		   (2, "%SystemRoot%\System32\netevent.dll")`,

		`CREATE TABLE message_file_per_event_log_provider (
		   message_file_key INTEGER, message_file_type TEXT,
		   event_log_provider_key INTEGER)`,
		`INSERT INTO message_file_per_event_log_provider VALUES
		   (1, "event", 1)`,
		`INSERT INTO message_file_per_event_log_provider VALUES
		   (2, "event", 1)`,

		`CREATE TABLE message_table_1_0x00000409 (
		   message_identifier TEXT, message_string TEXT)`,
		`INSERT INTO message_table_1_0x00000409 VALUES
		   ("0x00000001", "Service %1 failed")`,
		`INSERT INTO message_table_1_0x00000409 VALUES
		   ("0x00000003", "")`,

		`CREATE TABLE message_table_2_0x00000409 (
		   message_identifier TEXT, message_string TEXT)`,
		`INSERT INTO message_table_2_0x00000409 VALUES
		   ("0x00000003", "The %1 service entered the %2 state.%n")`,
	}

	for _, statement := range statements {
		_, err := handle.Exec(statement)
		assert.NoError(self.T(), err, statement)
	}

	return database_path
}

func (self *LegacyTestSuite) TestUnsupportedVersion() {
	database_path := self.createLegacyDatabase("old.db", "20110420")

	reader := NewLegacyDatabaseReader()
	ok, err := reader.Open(database_path)
	assert.False(self.T(), ok)
	assert.Equal(self.T(), ErrUnsupportedVersion, errors.Cause(err))
}

func (self *LegacyTestSuite) TestStringFormatDefaultsToWRC() {
	database_path := self.createLegacyDatabase("test.db", "20150315")

	reader := NewLegacyDatabaseReader()
	ok, err := reader.Open(database_path)
	assert.NoError(self.T(), err)
	assert.True(self.T(), ok)
	defer reader.Close()

	assert.Equal(self.T(), StringFormatWRC, reader.StringFormat())
}

func (self *LegacyTestSuite) TestGetMessage() {
	database_path := self.createLegacyDatabase("test.db", "20150315")

	reader := NewLegacyDatabaseReader()
	ok, err := reader.Open(database_path)
	assert.NoError(self.T(), err)
	assert.True(self.T(), ok)
	defer reader.Close()

	// Placeholders are converted on the way out.
	message, err := reader.GetMessage(
		"Service Control Manager", 0x0409, 0x00000001)
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), "Service {0} failed", message)

	// The first message file holds an empty string for this
	// identifier so the second file's table provides the message.
	message, err = reader.GetMessage(
		"Service Control Manager", 0x0409, 0x00000003)
	assert.NoError(self.T(), err)
	assert.Equal(self.T(),
		"The {0} service entered the {1} state.\n", message)

	// Unknown identifiers and sources are misses, not errors.
	message, err = reader.GetMessage(
		"Service Control Manager", 0x0409, 0x00000099)
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), "", message)

	message, err = reader.GetMessage("No Such Source", 0x0409, 0x00000001)
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), "", message)

	// A locale without message tables is a miss.
	message, err = reader.GetMessage(
		"Service Control Manager", 0x0407, 0x00000001)
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), "", message)
}

func (self *LegacyTestSuite) TestAmbiguousLogSource() {
	database_path := self.createLegacyDatabase("test.db", "20150315")

	handle, err := sqlx.Connect("sqlite3", database_path)
	assert.NoError(self.T(), err)
	_, err = handle.Exec(`INSERT INTO event_log_providers VALUES
	   (2, "Service Control Manager", "System", "{deadbeef-0000-0000-0000-000000000000}")`)
	assert.NoError(self.T(), err)
	handle.Close()

	reader := NewLegacyDatabaseReader()
	ok, err := reader.Open(database_path)
	assert.NoError(self.T(), err)
	assert.True(self.T(), ok)
	defer reader.Close()

	_, err = reader.GetMessage("Service Control Manager", 0x0409, 1)
	assert.Equal(self.T(), ErrMoreThanOneValue, errors.Cause(err))
}

func (self *LegacyTestSuite) TestGetMetadata() {
	database_path := self.createLegacyDatabase("test.db", "20150315")

	reader := NewLegacyDatabaseReader()
	ok, err := reader.Open(database_path)
	assert.NoError(self.T(), err)
	assert.True(self.T(), ok)
	defer reader.Close()

	metadata, err := reader.GetMetadata()
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), "20150315", metadata["version"])
}

func (self *LegacyTestSuite) TestGetEventLogProviders() {
	database_path := self.createLegacyDatabase("test.db", "20150315")

	reader := NewLegacyDatabaseReader()
	ok, err := reader.Open(database_path)
	assert.NoError(self.T(), err)
	assert.True(self.T(), ok)
	defer reader.Close()

	providers, err := reader.GetEventLogProviders()
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), 1, len(providers))

	log_source, _ := providers[0].Get("log_source")
	assert.Equal(self.T(), "Service Control Manager", log_source)

	files, _ := providers[0].Get("event_message_files")
	assert.Equal(self.T(),
		`%SystemRoot%\System32\services.exe, `+
			`%SystemRoot%\System32\netevent.dll`, files)
}

func TestLegacyDatabaseReader(t *testing.T) {
	suite.Run(t, &LegacyTestSuite{})
}
