// Package cache provides the LRU cache used to keep decoded asset manifests
// between loads.
//
//	c := cache.New[string, *asset.Manifest](32)
//	c.Set("models/ship.toml", m)
//	m, ok := c.Get("models/ship.toml")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
