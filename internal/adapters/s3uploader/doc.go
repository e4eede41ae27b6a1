// Package s3uploader implements ports.Uploader against an S3-compatible
// object store via aws-sdk-go-v2.
//
// Files above the multipart threshold are sent in 5 MiB parts with an
// abort on any part failure; smaller files go through a single PutObject
// call. A failed upload moves the file to the pending directory alongside
// a small sidecar recording its original Hive-partitioned relative path,
// so a later retry can still compute the correct remote key — see
// DESIGN.md for why a sidecar was chosen over the alternatives.
package s3uploader
