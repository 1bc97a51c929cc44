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
package config

import (
	"os"

	"github.com/Velocidex/yaml/v2"
	"github.com/pkg/errors"
)

// Config holds the tool level settings. All fields are optional and
// fall back to sensible defaults.
type Config struct {
	// Directory searched for message resource databases such as
	// winevt-rc.db.
	DataLocation string `yaml:"data_location,omitempty"`

	// Preferred Windows language identifier, e.g. 0x0409 for en-US.
	LCID uint32 `yaml:"lcid,omitempty"`

	// Emit debug level logs.
	Verbose bool `yaml:"verbose,omitempty"`
}

func GetDefaultConfig() *Config {
	return &Config{
		LCID: 0x0409,
	}
}

// LoadConfig reads the config file at filename. Unknown fields are
// rejected so typos in config files fail early.
func LoadConfig(filename string) (*Config, error) {
	result := GetDefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = yaml.UnmarshalStrict(data, result)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return result, nil
}
