package datatype

import "encoding/xml"

// CreateBucketConfiguration is the request document of PUT /bucket.
type CreateBucketConfiguration struct {
	XMLName            xml.Name `xml:"CreateBucketConfiguration"`
	LocationConstraint string   `xml:"LocationConstraint"`
}

// VersioningStatus values accepted by a VersioningConfiguration.
const (
	VersioningEnabled   = "Enabled"
	VersioningSuspended = "Suspended"
)

// VersioningConfiguration is the document of the ?versioning sub-resource.
type VersioningConfiguration struct {
	XMLName   xml.Name `xml:"VersioningConfiguration"`
	Status    string   `xml:"Status,omitempty"`
	MFADelete string   `xml:"MfaDelete,omitempty"`
}

// Enabled reports whether versioning is switched on.
func (v VersioningConfiguration) Enabled() bool {
	return v.Status == VersioningEnabled
}

// ObjectLockConfiguration is the document of the ?object-lock sub-resource.
// A zero DefaultRetention removes the default rule.
type ObjectLockConfiguration struct {
	XMLName           xml.Name `xml:"ObjectLockConfiguration"`
	ObjectLockEnabled string   `xml:"ObjectLockEnabled,omitempty"`
	Rule              *struct {
		DefaultRetention DefaultRetention `xml:"DefaultRetention"`
	} `xml:"Rule,omitempty"`
}

// DefaultRetention is the bucket-default retention rule.
type DefaultRetention struct {
	Mode  string `xml:"Mode"`
	Days  int    `xml:"Days,omitempty"`
	Years int    `xml:"Years,omitempty"`
}

// NewObjectLockConfiguration builds an enabled lock configuration with a
// default retention of the given mode and duration in days.
func NewObjectLockConfiguration(mode string, days int) ObjectLockConfiguration {
	cfg := ObjectLockConfiguration{ObjectLockEnabled: "Enabled"}
	if mode != "" {
		cfg.Rule = &struct {
			DefaultRetention DefaultRetention `xml:"DefaultRetention"`
		}{DefaultRetention: DefaultRetention{Mode: mode, Days: days}}
	}
	return cfg
}
