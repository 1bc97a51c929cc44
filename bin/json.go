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
package main

import (
	"bytes"

	"github.com/Velocidex/json"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

func mustMarshalIndent(v interface{}) string {
	serialized, err := json.Marshal(v)
	kingpin.FatalIfError(err, "Unable to encode JSON.")

	var buf bytes.Buffer
	err = json.Indent(&buf, serialized, "", " ")
	kingpin.FatalIfError(err, "Unable to encode JSON.")

	return buf.String()
}
