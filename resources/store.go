// The versioned winevt-rc attribute container store.
package resources

import (
	"github.com/pkg/errors"

	"www.velocidex.com/golang/winevtrc/acstore"
	"www.velocidex.com/golang/winevtrc/containers"
)

// Version floors of the winevt-rc container store format.
const (
	FormatVersion            = 20240929
	AppendCompatibleVersion  = 20240929
	UpgradeCompatibleVersion = 20240929
	ReadCompatibleVersion    = 20240929
)

// Store is a Windows EventLog resources attribute container store.
type Store struct {
	*acstore.Store

	StringFormat string
}

// OpenStore opens a winevt-rc container store read only. The store's
// string format must be one of the two recognized values.
func OpenStore(filename string) (*Store, error) {
	inner := acstore.NewStore(acstore.VersionBounds{
		FormatVersion:            FormatVersion,
		AppendCompatibleVersion:  AppendCompatibleVersion,
		UpgradeCompatibleVersion: UpgradeCompatibleVersion,
		ReadCompatibleVersion:    ReadCompatibleVersion,
	})

	inner.RegisterContainer(
		containers.EventLogProviderContainerType,
		func() containers.AttributeContainer {
			return containers.NewEventLogProvider(
				containers.EventLogProviderContainerType)
		})

	inner.RegisterContainer(
		containers.MessageFileContainerType,
		func() containers.AttributeContainer {
			return containers.NewMessageFile(
				containers.MessageFileContainerType)
		})

	inner.RegisterContainer(
		containers.MessageStringContainerType,
		func() containers.AttributeContainer {
			return containers.NewMessageString(
				containers.MessageStringContainerType)
		})

	inner.RegisterContainer(
		containers.MessageStringMappingContainerType,
		func() containers.AttributeContainer {
			return containers.NewMessageStringMapping(
				containers.MessageStringMappingContainerType)
		})

	inner.RegisterContainer(
		containers.MessageTableContainerType,
		func() containers.AttributeContainer {
			return containers.NewMessageTable()
		})

	err := inner.Open(filename)
	if err != nil {
		return nil, err
	}

	// Unlike the legacy database the container store has no implied
	// default, a missing string_format is an unsupported store.
	string_format, pres := inner.GetMetadataValue("string_format")
	if !pres {
		_ = inner.Close()
		return nil, errors.Wrap(
			ErrUnsupportedStringFormat, "missing string_format")
	}

	if string_format != StringFormatWRC &&
		string_format != StringFormatPEP3101 {
		_ = inner.Close()
		return nil, errors.Wrap(ErrUnsupportedStringFormat, string_format)
	}

	return &Store{Store: inner, StringFormat: string_format}, nil
}
