package datatype

import (
	"encoding/xml"
	"sort"
)

// Tag is a single key/value pair of a tag set.
type Tag struct {
	Key   string `xml:"Key"`
	Value string `xml:"Value"`
}

// Tagging is the document of the ?tagging sub-resource on buckets and
// objects.
type Tagging struct {
	XMLName xml.Name `xml:"Tagging"`
	TagSet  struct {
		Tags []Tag `xml:"Tag"`
	} `xml:"TagSet"`
}

// NewTagging builds a Tagging document from a map, with keys in sorted order
// so the marshaled form is deterministic.
func NewTagging(tags map[string]string) Tagging {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var t Tagging
	for _, k := range keys {
		t.TagSet.Tags = append(t.TagSet.Tags, Tag{Key: k, Value: tags[k]})
	}
	return t
}

// Map returns the tag set as a plain map.
func (t Tagging) Map() map[string]string {
	m := make(map[string]string, len(t.TagSet.Tags))
	for _, tag := range t.TagSet.Tags {
		m[tag.Key] = tag.Value
	}
	return m
}
