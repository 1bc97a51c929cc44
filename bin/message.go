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
	"strconv"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/winevtrc/resolver"
)

var (
	message_command = app.Command(
		"message", "Resolve an EventLog message string.")

	message_command_identifier = message_command.Arg(
		"message_id", "Message identifier, decimal or 0x prefixed hex.").
		Required().String()

	message_command_provider = message_command.Flag(
		"provider", "Provider GUID, with or without braces.").String()

	message_command_source = message_command.Flag(
		"source", "EventLog source name, e.g. Service Control Manager.").
		String()

	message_command_version = message_command.Flag(
		"event_version", "Event definition version.").Default("-1").Int()

	parameter_command = app.Command(
		"parameter", "Resolve an EventLog parameter string.")

	parameter_command_identifier = parameter_command.Arg(
		"message_id", "Message identifier, decimal or 0x prefixed hex.").
		Required().String()

	parameter_command_provider = parameter_command.Flag(
		"provider", "Provider GUID, with or without braces.").String()

	parameter_command_source = parameter_command.Flag(
		"source", "EventLog source name.").String()
)

func parseMessageIdentifier(value string) uint32 {
	identifier, err := strconv.ParseUint(value, 0, 32)
	kingpin.FatalIfError(err, "Invalid message identifier.")
	return uint32(identifier)
}

func doResolveMessage() {
	config_obj := load_config_or_default()

	if *message_command_provider == "" && *message_command_source == "" {
		kingpin.Fatalf("One of --provider or --source is required.")
	}

	res := resolver.NewResolver(
		nil, config_obj.DataLocation, config_obj.LCID)
	defer res.Close()

	message_string, err := res.GetMessageString(
		*message_command_provider, *message_command_source,
		parseMessageIdentifier(*message_command_identifier),
		*message_command_version)
	kingpin.FatalIfError(err, "Unable to resolve message.")

	if message_string == "" {
		kingpin.Fatalf("Message not found.")
	}

	fmt.Println(message_string)
}

func doResolveParameter() {
	config_obj := load_config_or_default()

	if *parameter_command_provider == "" && *parameter_command_source == "" {
		kingpin.Fatalf("One of --provider or --source is required.")
	}

	res := resolver.NewResolver(
		nil, config_obj.DataLocation, config_obj.LCID)
	defer res.Close()

	message_string, err := res.GetParameterString(
		*parameter_command_provider, *parameter_command_source,
		parseMessageIdentifier(*parameter_command_identifier))
	kingpin.FatalIfError(err, "Unable to resolve parameter.")

	if message_string == "" {
		kingpin.Fatalf("Parameter not found.")
	}

	fmt.Println(message_string)
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case message_command.FullCommand():
			doResolveMessage()
		case parameter_command.FullCommand():
			doResolveParameter()
		default:
			return false
		}
		return true
	})
}
