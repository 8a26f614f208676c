package services

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	CategoriesTTL = 5 * time.Minute
	PincodeTTL    = 10 * time.Minute

	CategoriesCacheKey = "categories"
	PincodeCachePrefix = "pincode:"
)

// CatalogCache holds read-mostly storefront lookups
var CatalogCache = cache.New(5*time.Minute, 10*time.Minute)

// Remember returns the cached value for key or loads and stores it
func Remember[T any](key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, found := CatalogCache.Get(key); found {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	CatalogCache.Set(key, v, ttl)
	return v, nil
}

// Forget drops every cached key starting with prefix
func Forget(prefix string) {
	for key := range CatalogCache.Items() {
		if strings.HasPrefix(key, prefix) {
			CatalogCache.Delete(key)
		}
	}
}
