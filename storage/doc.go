// Package storage holds keyed byte blobs behind pluggable backends.
//
// flowview stores builder graph snapshots under keys of the form
// graphData_{instanceId}. Backends register a Factory from init:
//
//   - memory: process-local map, the default
//   - storage/local: one file per key under a base directory
//   - storage/s3: Amazon S3 or an S3-compatible service
//   - redis: go-redis, registered by the redis package
//
// # Configuration
//
//	store:
//	  provider: "s3"
//	  key_prefix: "prod_"
//	  s3:
//	    bucket: "graphs"
//	    region: "us-east-1"
package storage
