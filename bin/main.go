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
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/winevtrc/config"
	"www.velocidex.com/golang/winevtrc/logging"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("winevtrc",
		"Resolve Windows EventLog message and parameter strings.")

	config_path = app.Flag("config", "The configuration file.").Short('c').
			Envar("WINEVTRC_CONFIG").String()

	data_location_flag = app.Flag("data_location",
		"Directory containing the winevt-rc database.").
		Envar("WINEVTRC_DATA_LOCATION").String()

	lcid_flag = app.Flag("lcid",
		"Preferred Windows language identifier.").Uint32()

	verbose_flag = app.Flag(
		"verbose", "Enable verbose logging.").Short('v').
		Default("false").Bool()

	command_handlers []CommandHandler
)

// load_config_or_default merges the config file, if any, with command
// line overrides. Flags win over the file.
func load_config_or_default() *config.Config {
	config_obj := config.GetDefaultConfig()

	if *config_path != "" {
		loaded, err := config.LoadConfig(*config_path)
		kingpin.FatalIfError(err, "Unable to load config.")
		config_obj = loaded
	}

	if *data_location_flag != "" {
		config_obj.DataLocation = *data_location_flag
	}

	if *lcid_flag != 0 {
		config_obj.LCID = *lcid_flag
	}

	if *verbose_flag {
		config_obj.Verbose = true
	}

	if config_obj.Verbose {
		logging.SetVerbose(true)
	}

	return config_obj
}

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate).DefaultEnvars()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}
}
