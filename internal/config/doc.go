// Package config loads and validates the agent's YAML configuration.
//
// The canonical schema is documented on [Config]. A legacy schema using
// older section names (batching.*, upload.s3_bucket, offline_buffer.*) is
// also accepted and normalized onto the canonical fields before
// validation, so existing deployments do not need to migrate their config
// files on upgrade.
package config
