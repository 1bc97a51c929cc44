package acstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"

	"www.velocidex.com/golang/winevtrc/containers"
)

var test_bounds = VersionBounds{
	FormatVersion:            20240929,
	AppendCompatibleVersion:  20240929,
	UpgradeCompatibleVersion: 20240929,
	ReadCompatibleVersion:    20240929,
}

type StoreTestSuite struct {
	suite.Suite

	test_dir string
}

func (self *StoreTestSuite) SetupTest() {
	var err error
	self.test_dir, err = os.MkdirTemp("", "winevtrc_test")
	assert.NoError(self.T(), err)
}

func (self *StoreTestSuite) TearDownTest() {
	os.RemoveAll(self.test_dir)
}

func (self *StoreTestSuite) createStoreFile(
	filename string, format_version string) string {

	database_path := filepath.Join(self.test_dir, filename)

	handle, err := sqlx.Connect("sqlite3", database_path)
	assert.NoError(self.T(), err)
	defer handle.Close()

	statements := []string{
		`CREATE TABLE metadata (key TEXT, value TEXT)`,
		`INSERT INTO metadata VALUES ('format_version', '` +
			format_version + `')`,
		`INSERT INTO metadata VALUES ('serialization_format', 'json')`,

		`CREATE TABLE environment_variable (name TEXT, value TEXT)`,
		`INSERT INTO environment_variable VALUES
		   ('SystemRoot', 'C:\Windows')`,
		`INSERT INTO environment_variable VALUES
		   ('WinDir', 'C:\Windows')`,

		`CREATE TABLE empty_container (name TEXT, value TEXT)`,
	}

	for _, statement := range statements {
		_, err := handle.Exec(statement)
		assert.NoError(self.T(), err, statement)
	}

	return database_path
}

func (self *StoreTestSuite) openStore(database_path string) *Store {
	store := NewStore(test_bounds)
	store.RegisterContainer(
		containers.EnvironmentVariableContainerType,
		func() containers.AttributeContainer {
			return containers.NewEnvironmentVariable()
		})
	store.RegisterContainer("empty_container",
		func() containers.AttributeContainer {
			return containers.NewEnvironmentVariable()
		})

	err := store.Open(database_path)
	assert.NoError(self.T(), err)

	return store
}

func (self *StoreTestSuite) TestOpenChecksFormatVersion() {
	store := NewStore(test_bounds)
	err := store.Open(self.createStoreFile("old.db", "20221023"))
	assert.Equal(self.T(), ErrUnsupportedFormat, errors.Cause(err))

	store = NewStore(test_bounds)
	err = store.Open(self.createStoreFile("new.db", "20990101"))
	assert.Equal(self.T(), ErrUnsupportedFormat, errors.Cause(err))

	store = NewStore(test_bounds)
	err = store.Open(self.createStoreFile("ok.db", "20240929"))
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), int64(20240929), store.FormatVersion)
	store.Close()
}

func (self *StoreTestSuite) TestOpenRejectsNonStore() {
	database_path := filepath.Join(self.test_dir, "plain.db")

	handle, err := sqlx.Connect("sqlite3", database_path)
	assert.NoError(self.T(), err)
	_, err = handle.Exec("CREATE TABLE foo (bar TEXT)")
	assert.NoError(self.T(), err)
	handle.Close()

	store := NewStore(test_bounds)
	err = store.Open(database_path)
	assert.Equal(self.T(), ErrNotAStore, errors.Cause(err))
}

func (self *StoreTestSuite) TestMetadata() {
	store := self.openStore(self.createStoreFile("test.db", "20240929"))
	defer store.Close()

	value, pres := store.GetMetadataValue("serialization_format")
	assert.True(self.T(), pres)
	assert.Equal(self.T(), "json", value)

	_, pres = store.GetMetadataValue("no_such_key")
	assert.False(self.T(), pres)

	metadata := store.Metadata()
	assert.Equal(self.T(), "20240929", metadata["format_version"])
}

func (self *StoreTestSuite) TestHasAttributeContainers() {
	store := self.openStore(self.createStoreFile("test.db", "20240929"))
	defer store.Close()

	assert.True(self.T(), store.HasAttributeContainers(
		containers.EnvironmentVariableContainerType))

	// A table with no rows does not count.
	assert.False(self.T(), store.HasAttributeContainers("empty_container"))

	assert.False(self.T(), store.HasAttributeContainers("no_such_table"))
}

func (self *StoreTestSuite) TestGetAttributeContainers() {
	store := self.openStore(self.createStoreFile("test.db", "20240929"))
	defer store.Close()

	result, err := store.GetAttributeContainers(
		containers.EnvironmentVariableContainerType, "")
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), 2, len(result))

	// Containers come back in store order with their row based
	// identifiers assigned.
	variable, ok := result[0].(*containers.EnvironmentVariable)
	assert.True(self.T(), ok)
	assert.Equal(self.T(), "SystemRoot", variable.Name)
	assert.Equal(self.T(), `C:\Windows`, variable.Value)
	assert.Equal(self.T(), "environment_variable.1",
		result[0].Identifier().CopyToString())
	assert.Equal(self.T(), "environment_variable.2",
		result[1].Identifier().CopyToString())

	// Filter expressions narrow the result.
	result, err = store.GetAttributeContainers(
		containers.EnvironmentVariableContainerType,
		`name == "WinDir"`)
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), 1, len(result))

	// Unregistered container types are an error.
	_, err = store.GetAttributeContainers("no_such_type", "")
	assert.Equal(self.T(), ErrUnknownContainerType, errors.Cause(err))
}

func TestStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{})
}
