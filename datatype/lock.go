package datatype

import (
	"encoding/xml"
	"time"
)

// Retention modes defined by the object-lock protocol.
const (
	RetentionGovernance = "GOVERNANCE"
	RetentionCompliance = "COMPLIANCE"
)

// Retention is the document of the ?retention sub-resource.
type Retention struct {
	XMLName         xml.Name  `xml:"Retention"`
	Mode            string    `xml:"Mode"`
	RetainUntilDate time.Time `xml:"RetainUntilDate"`
}

// LegalHold is the document of the ?legal-hold sub-resource.
type LegalHold struct {
	XMLName xml.Name `xml:"LegalHold"`
	Status  string   `xml:"Status"`
}

// NewLegalHold returns a hold document for the given switch position.
func NewLegalHold(on bool) LegalHold {
	status := "OFF"
	if on {
		status = "ON"
	}
	return LegalHold{Status: status}
}

// Enabled reports whether the hold is on.
func (l LegalHold) Enabled() bool {
	return l.Status == "ON"
}
