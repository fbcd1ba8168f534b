/*
Package datatype holds the XML documents the S3 REST protocol exchanges for
structured metadata operations: bucket and object listings, tagging,
versioning, object lock, retention, legal hold and multipart uploads.

Types marshal and unmarshal with encoding/xml and mirror the wire names
exactly; helpers are limited to small conversions (Tags maps, timestamps).
*/
package datatype
