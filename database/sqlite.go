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

// Minimal SQL access wrapper over a flat, legacy format resource
// database file. Driver level failures on open are not errors - the
// file is simply not usable as a resource database and Open reports
// false. Using the reader before Open or after Close is a programming
// error and is reported as ErrNotOpened.
package database

import (
	"fmt"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrNotOpened     = errors.New("Database not opened")
	ErrAlreadyOpened = errors.New("Database already opened")
)

const has_table_query = `SELECT name FROM sqlite_master WHERE type = "table" AND name = ?`

// SqliteDatabaseFile wraps a single sqlite connection. It is not safe
// for concurrent use - each worker owns its own reader.
type SqliteDatabaseFile struct {
	handle *sqlx.DB

	filename  string
	read_only bool
}

func NewSqliteDatabaseFile() *SqliteDatabaseFile {
	return &SqliteDatabaseFile{}
}

// Open opens the database file. A driver level error (missing file,
// not a database, locked) reports false rather than an error so
// callers can fall back to other resolution paths. Opening an already
// opened reader is a state error.
func (self *SqliteDatabaseFile) Open(filename string, read_only bool) (bool, error) {
	if self.handle != nil {
		return false, ErrAlreadyOpened
	}

	dsn := filename
	if read_only {
		dsn = fmt.Sprintf("file:%s?mode=ro", filename)
	}

	handle, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return false, nil
	}

	self.handle = handle
	self.filename = filename
	self.read_only = read_only

	return true, nil
}

func (self *SqliteDatabaseFile) Close() error {
	if self.handle == nil {
		return errors.Wrap(ErrNotOpened, "Close")
	}

	err := self.handle.Close()
	self.handle = nil
	self.filename = ""
	self.read_only = false

	return err
}

// HasTable determines if a specific table exists.
func (self *SqliteDatabaseFile) HasTable(table_name string) (bool, error) {
	if self.handle == nil {
		return false, errors.Wrap(ErrNotOpened, "HasTable")
	}

	rows, err := self.handle.Query(has_table_query, table_name)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	return rows.Next(), nil
}

// GetValues retrieves rows from one or more tables. Each row is
// returned as a mapping from column name to value. The condition is a
// raw filter clause, for example `log_source == "Application Error"`.
func (self *SqliteDatabaseFile) GetValues(
	table_names []string, column_names []string, condition string) (
	[]*ordereddict.Dict, error) {

	if self.handle == nil {
		return nil, errors.Wrap(ErrNotOpened, "GetValues")
	}

	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(column_names, ", "),
		strings.Join(table_names, ", "))
	if condition != "" {
		query += " WHERE " + condition
	}

	rows, err := self.handle.Queryx(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*ordereddict.Dict{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}

		row := ordereddict.NewDict()
		for idx, column_name := range column_names {
			if idx < len(values) {
				row.Set(column_name, values[idx])
			}
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func (self *SqliteDatabaseFile) Filename() string {
	return self.filename
}
