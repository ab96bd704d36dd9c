package redis

import "fmt"

// Key prefix for all vault data
const keyPrefix = "galapa"

// credentialKey returns the Redis key for a sealed credential
func credentialKey(token string) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, token)
}

// tokenIndexKey returns the Redis key for the SET of stored tokens
func tokenIndexKey() string {
	return fmt.Sprintf("%s:idx:tokens", keyPrefix)
}
