// Package redis manages the Redis connection used by the shared
// session cache: connect with retry and health checking.
package redis
