// A minimal, read only attribute container store backed by
// sqlite. Containers are stored one table per container type with one
// column per schema attribute. The store hands out typed containers
// registered through factories and never exposes raw rows to callers.
package acstore

import (
	"strconv"

	"github.com/pkg/errors"

	"www.velocidex.com/golang/winevtrc/containers"
	"www.velocidex.com/golang/winevtrc/database"
)

var (
	ErrNotAStore            = errors.New("Not an attribute container store")
	ErrUnsupportedFormat    = errors.New("Unsupported format version")
	ErrUnknownContainerType = errors.New("Unknown container type")
)

// Serialization format the store was written with.
const SerializationFormatJSON = "json"

// StorageReader is the query surface of an attribute container
// store. Both a forensic case's ingested storage and a winevt-rc
// container store satisfy it.
type StorageReader interface {
	HasAttributeContainers(container_type string) bool
	GetAttributeContainers(container_type string, filter_expression string) (
		[]containers.AttributeContainer, error)
	Close() error
}

type ContainerFactory func() containers.AttributeContainer

// VersionBounds are the four version floors a store format defines.
type VersionBounds struct {
	FormatVersion            int64
	AppendCompatibleVersion  int64
	UpgradeCompatibleVersion int64
	ReadCompatibleVersion    int64
}

type Store struct {
	database  *database.SqliteDatabaseFile
	factories map[string]ContainerFactory
	metadata  map[string]string
	bounds    VersionBounds

	FormatVersion       int64
	SerializationFormat string
}

func NewStore(bounds VersionBounds) *Store {
	return &Store{
		database:  database.NewSqliteDatabaseFile(),
		factories: make(map[string]ContainerFactory),
		bounds:    bounds,
	}
}

// RegisterContainer makes a container type queryable. Registration
// must happen before Open.
func (self *Store) RegisterContainer(
	container_type string, factory ContainerFactory) {
	self.factories[container_type] = factory
}

// Open opens the store read only and validates its metadata against
// the version floors.
func (self *Store) Open(filename string) error {
	ok, err := self.database.Open(filename, true)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(ErrNotAStore, filename)
	}

	err = self.readAndCheckStorageMetadata()
	if err != nil {
		_ = self.database.Close()
		return err
	}

	return nil
}

func (self *Store) Close() error {
	return self.database.Close()
}

// GetMetadataValue returns a raw metadata value by key.
func (self *Store) GetMetadataValue(key string) (string, bool) {
	value, pres := self.metadata[key]
	return value, pres
}

// Metadata returns a copy of all metadata key value pairs.
func (self *Store) Metadata() map[string]string {
	result := make(map[string]string)
	for key, value := range self.metadata {
		result[key] = value
	}
	return result
}

// HasAttributeContainers determines if the store holds any containers
// of the given type.
func (self *Store) HasAttributeContainers(container_type string) bool {
	has_table, err := self.database.HasTable(container_type)
	if err != nil || !has_table {
		return false
	}

	values, err := self.database.GetValues(
		[]string{container_type}, []string{"COUNT(*)"}, "")
	if err != nil || len(values) == 0 {
		return false
	}

	return rowInt(values[0], "COUNT(*)") > 0
}

// GetAttributeContainers retrieves all containers of the given type
// matching the filter expression. Containers are returned in store
// order (ascending row identifier) so iteration is deterministic.
func (self *Store) GetAttributeContainers(
	container_type string, filter_expression string) (
	[]containers.AttributeContainer, error) {

	factory, pres := self.factories[container_type]
	if !pres {
		return nil, errors.Wrap(ErrUnknownContainerType, container_type)
	}

	has_table, err := self.database.HasTable(container_type)
	if err != nil {
		return nil, err
	}
	if !has_table {
		return nil, nil
	}

	columns := append([]string{"rowid"}, factory().Schema()...)
	condition := TranslateFilterExpression(filter_expression)

	values, err := self.database.GetValues(
		[]string{container_type}, columns, condition)
	if err != nil {
		return nil, err
	}

	result := make([]containers.AttributeContainer, 0, len(values))
	for _, row := range values {
		container := factory()
		err := container.FromRow(row)
		if err != nil {
			return nil, err
		}

		container.SetIdentifier(&containers.ContainerIdentifier{
			ContainerType: container_type,
			Sequence:      rowInt(row, "rowid"),
		})
		result = append(result, container)
	}

	return result, nil
}

// readAndCheckStorageMetadata reads storage metadata and checks that
// the store can be read by this implementation.
func (self *Store) readAndCheckStorageMetadata() error {
	has_table, err := self.database.HasTable("metadata")
	if err != nil {
		return err
	}
	if !has_table {
		return errors.Wrap(ErrNotAStore, "no metadata table")
	}

	values, err := self.database.GetValues(
		[]string{"metadata"}, []string{"key", "value"}, "")
	if err != nil {
		return err
	}

	self.metadata = make(map[string]string)
	for _, row := range values {
		self.metadata[rowString(row, "key")] = rowString(row, "value")
	}

	format_version_string, pres := self.metadata["format_version"]
	if !pres {
		return errors.Wrap(ErrNotAStore, "no format_version")
	}

	format_version, err := strconv.ParseInt(format_version_string, 10, 64)
	if err != nil {
		return errors.Wrap(ErrNotAStore, format_version_string)
	}

	if format_version < self.bounds.ReadCompatibleVersion {
		return errors.Wrapf(ErrUnsupportedFormat,
			"format version %d is no longer read compatible",
			format_version)
	}

	if format_version > self.bounds.FormatVersion {
		return errors.Wrapf(ErrUnsupportedFormat,
			"format version %d is too new", format_version)
	}

	serialization_format := self.metadata["serialization_format"]
	if serialization_format != SerializationFormatJSON {
		return errors.Wrapf(ErrUnsupportedFormat,
			"unsupported serialization format %s", serialization_format)
	}

	self.FormatVersion = format_version
	self.SerializationFormat = serialization_format

	return nil
}
