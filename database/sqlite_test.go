package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
)

type SqliteTestSuite struct {
	suite.Suite

	test_dir string
}

func (self *SqliteTestSuite) SetupTest() {
	var err error
	self.test_dir, err = os.MkdirTemp("", "winevtrc_test")
	assert.NoError(self.T(), err)
}

func (self *SqliteTestSuite) TearDownTest() {
	os.RemoveAll(self.test_dir)
}

func (self *SqliteTestSuite) createDatabaseFile(filename string) string {
	database_path := filepath.Join(self.test_dir, filename)

	handle, err := sqlx.Connect("sqlite3", database_path)
	assert.NoError(self.T(), err)
	defer handle.Close()

	_, err = handle.Exec(
		"CREATE TABLE metadata (name TEXT, value TEXT)")
	assert.NoError(self.T(), err)

	_, err = handle.Exec(metadata_insert)
	assert.NoError(self.T(), err)

	return database_path
}

const metadata_insert = `
INSERT INTO metadata (name, value) VALUES
  ("version", "20150315"),
  ("string_format", "wrc")`

func (self *SqliteTestSuite) TestOpenAndClose() {
	database_path := self.createDatabaseFile("test.db")

	database := NewSqliteDatabaseFile()
	ok, err := database.Open(database_path, true)
	assert.NoError(self.T(), err)
	assert.True(self.T(), ok)

	// Opening twice is a state error.
	_, err = database.Open(database_path, true)
	assert.Equal(self.T(), ErrAlreadyOpened, err)

	assert.NoError(self.T(), database.Close())

	// Using a closed reader is a state error.
	_, err = database.HasTable("metadata")
	assert.Error(self.T(), err)
}

func (self *SqliteTestSuite) TestOpenMissingFile() {
	database := NewSqliteDatabaseFile()
	ok, err := database.Open(
		filepath.Join(self.test_dir, "nonexistent.db"), true)

	// Not an error, just not usable.
	assert.NoError(self.T(), err)
	assert.False(self.T(), ok)
}

func (self *SqliteTestSuite) TestHasTable() {
	database_path := self.createDatabaseFile("test.db")

	database := NewSqliteDatabaseFile()
	ok, err := database.Open(database_path, true)
	assert.NoError(self.T(), err)
	assert.True(self.T(), ok)
	defer database.Close()

	has_table, err := database.HasTable("metadata")
	assert.NoError(self.T(), err)
	assert.True(self.T(), has_table)

	has_table, err = database.HasTable("no_such_table")
	assert.NoError(self.T(), err)
	assert.False(self.T(), has_table)
}

func (self *SqliteTestSuite) TestGetValues() {
	database_path := self.createDatabaseFile("test.db")

	database := NewSqliteDatabaseFile()
	ok, err := database.Open(database_path, true)
	assert.NoError(self.T(), err)
	assert.True(self.T(), ok)
	defer database.Close()

	rows, err := database.GetValues(
		[]string{"metadata"}, []string{"name", "value"}, "")
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), 2, len(rows))

	name, _ := rows[0].Get("name")
	assert.Equal(self.T(), "version", toString(name))

	rows, err = database.GetValues(
		[]string{"metadata"}, []string{"value"}, `name == "string_format"`)
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), 1, len(rows))

	value, _ := rows[0].Get("value")
	assert.Equal(self.T(), "wrc", toString(value))
}

func toString(value interface{}) string {
	switch t := value.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func TestSqliteDatabaseFile(t *testing.T) {
	suite.Run(t, &SqliteTestSuite{})
}
