// Package redis provides a go-redis client wrapper and a Redis-backed
// storage.Storage for graph snapshots.
//
// Importing the package registers the "redis" storage provider:
//
//	import _ "github.com/kbukum/flowview/redis"
//
//	store:
//	  provider: "redis"
//	redis:
//	  addr: "localhost:6379"
//	  ttl: "24h"
package redis
