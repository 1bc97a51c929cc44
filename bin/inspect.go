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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/winevtrc/containers"
	"www.velocidex.com/golang/winevtrc/resolver"
	"www.velocidex.com/golang/winevtrc/resources"
)

var (
	providers_command = app.Command(
		"providers", "List EventLog providers in a resource database.")

	providers_command_db = providers_command.Arg(
		"db", "Path to the database. Defaults to winevt-rc.db in the "+
			"data location.").String()

	providers_command_json = providers_command.Flag(
		"json", "Output as JSON instead of a table.").Bool()

	metadata_command = app.Command(
		"metadata", "Show the metadata of a resource database.")

	metadata_command_db = metadata_command.Arg(
		"db", "Path to the database. Defaults to winevt-rc.db in the "+
			"data location.").String()
)

func resourceDatabasePath(arg string) string {
	if arg != "" {
		return arg
	}

	config_obj := load_config_or_default()
	if config_obj.DataLocation == "" {
		kingpin.Fatalf("No database given and no data location configured.")
	}

	return filepath.Join(config_obj.DataLocation, resolver.WinevtRcDatabase)
}

func doListProviders() {
	database_path := resourceDatabasePath(*providers_command_db)

	rows, err := readProviderRows(database_path)
	kingpin.FatalIfError(err, "Unable to read providers.")

	if *providers_command_json {
		fmt.Println(mustMarshalIndent(rows))
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Log Source", "Provider GUID", "Message Files"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		table.Append([]string{
			joinAny(row, "log_source"),
			joinAny(row, "provider_guid"),
			joinAny(row, "event_message_files"),
		})
	}

	table.Render()
}

func doShowMetadata() {
	database_path := resourceDatabasePath(*metadata_command_db)

	metadata, err := readDatabaseMetadata(database_path)
	kingpin.FatalIfError(err, "Unable to read metadata.")

	keys := []string{}
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Value"})
	table.SetAutoFormatHeaders(false)

	for _, key := range keys {
		table.Append([]string{key, metadata[key]})
	}

	table.Render()
}

// readProviderRows reads provider records from either store
// generation. The legacy flat format is tried first, matching the
// resolver's fallback order.
func readProviderRows(database_path string) ([]*ordereddict.Dict, error) {
	legacy_reader := resources.NewLegacyDatabaseReader()
	ok, err := legacy_reader.Open(database_path)
	if ok && err == nil {
		defer legacy_reader.Close()
		return legacy_reader.GetEventLogProviders()
	}
	legacy_reader.Close()

	store, err := resources.OpenStore(database_path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	provider_containers, err := store.GetAttributeContainers(
		containers.EventLogProviderContainerType, "")
	if err != nil {
		return nil, err
	}

	result := []*ordereddict.Dict{}
	for _, container := range provider_containers {
		provider, ok := container.(*containers.EventLogProvider)
		if !ok {
			continue
		}

		result = append(result, ordereddict.NewDict().
			Set("log_source", strings.Join(provider.LogSources, ", ")).
			Set("provider_guid", provider.GUID).
			Set("event_message_files",
				strings.Join(provider.EventMessageFiles, ", ")))
	}

	return result, nil
}

func readDatabaseMetadata(database_path string) (map[string]string, error) {
	legacy_reader := resources.NewLegacyDatabaseReader()
	ok, err := legacy_reader.Open(database_path)
	if ok && err == nil {
		defer legacy_reader.Close()
		return legacy_reader.GetMetadata()
	}
	legacy_reader.Close()

	store, err := resources.OpenStore(database_path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.Metadata(), nil
}

func joinAny(row *ordereddict.Dict, key string) string {
	value, pres := row.Get(key)
	if !pres || value == nil {
		return ""
	}

	switch t := value.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case providers_command.FullCommand():
			doListProviders()
		case metadata_command.FullCommand():
			doShowMetadata()
		default:
			return false
		}
		return true
	})
}
