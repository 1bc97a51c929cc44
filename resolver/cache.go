package resolver

import (
	"container/list"
	"fmt"
	"strconv"
)

// The maximum number of cached message strings.
const MaxCachedMessageStrings = 64 * 1024

// MessageStringCache is a bounded dual keyed cache of resolved
// message strings. Every resolution is written under both a provider
// keyed and a log source keyed form so either identifier alone yields
// a hit. Each key occupies its own capacity slot and is evicted
// independently, least recently promoted first.
//
// The cache deliberately carries no lock. Each worker owns its own
// resolver instance with its own cache.
type MessageStringCache struct {
	size int

	evict_list *list.List
	items      map[string]*list.Element
}

type cache_entry struct {
	key   string
	value string
}

func NewMessageStringCache(size int) *MessageStringCache {
	if size <= 0 {
		size = MaxCachedMessageStrings
	}

	return &MessageStringCache{
		size:       size,
		evict_list: list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get retrieves a previously cached message string. The provider
// keyed form is consulted first, then the log source keyed form. Only
// the entry that hit is promoted to most recently used.
func (self *MessageStringCache) Get(
	provider_identifier string, log_source string,
	message_identifier uint32, event_version int) (string, bool) {

	if provider_identifier != "" {
		lookup_key := makeLookupKey(
			provider_identifier, message_identifier, event_version)
		value, pres := self.get(lookup_key)
		if pres {
			return value, true
		}
	}

	if log_source != "" {
		lookup_key := makeLookupKey(
			log_source, message_identifier, event_version)
		value, pres := self.get(lookup_key)
		if pres {
			return value, true
		}
	}

	return "", false
}

// Put caches a resolved message string under both key forms.
func (self *MessageStringCache) Put(
	provider_identifier string, log_source string,
	message_identifier uint32, event_version int, message_string string) {

	if provider_identifier != "" {
		self.put(makeLookupKey(
			provider_identifier, message_identifier, event_version),
			message_string)
	}

	if log_source != "" {
		self.put(makeLookupKey(
			log_source, message_identifier, event_version),
			message_string)
	}
}

func (self *MessageStringCache) Len() int {
	return self.evict_list.Len()
}

func (self *MessageStringCache) get(lookup_key string) (string, bool) {
	element, pres := self.items[lookup_key]
	if !pres {
		return "", false
	}

	self.evict_list.MoveToFront(element)
	return element.Value.(*cache_entry).value, true
}

func (self *MessageStringCache) put(lookup_key string, message_string string) {
	element, pres := self.items[lookup_key]
	if pres {
		self.evict_list.MoveToFront(element)
		element.Value.(*cache_entry).value = message_string
		return
	}

	if self.evict_list.Len() >= self.size {
		oldest := self.evict_list.Back()
		if oldest != nil {
			self.evict_list.Remove(oldest)
			delete(self.items, oldest.Value.(*cache_entry).key)
		}
	}

	self.items[lookup_key] = self.evict_list.PushFront(
		&cache_entry{key: lookup_key, value: message_string})
}

// makeLookupKey builds the composite cache key. The event version
// qualifies the key only when one was supplied.
func makeLookupKey(
	identifier string, message_identifier uint32, event_version int) string {

	lookup_key := fmt.Sprintf("%s:0x%08x", identifier, message_identifier)
	if event_version >= 0 {
		lookup_key += ":" + strconv.Itoa(event_version)
	}
	return lookup_key
}
