/*

  Winevtrc resolves Windows EventLog records to their localized
  message strings. EventLog files only carry a provider name, an event
  identifier and the insertion strings; the surrounding message text
  lives in message resource files on the imaged system. This module
  looks those strings up in previously extracted message resource
  databases so timelines can render complete event descriptions.

  The resolver package is the main entry point. It resolves through an
  attribute container storage reader when one is supplied, and falls
  back to a winevt-rc.db database in a configured data location.

*/

package winevtrc

import (
	"www.velocidex.com/golang/winevtrc/acstore"
	"www.velocidex.com/golang/winevtrc/resolver"
)

// NewResolver creates a message string resolver. The storage reader
// may be nil, in which case resolution uses the winevt-rc database in
// data_location. An lcid of 0 selects en-US.
func NewResolver(
	storage_reader acstore.StorageReader,
	data_location string, lcid uint32) *resolver.Resolver {
	return resolver.NewResolver(storage_reader, data_location, lcid)
}
