//go:build !debug

package rtcheck

// ClaimOwner is a no-op outside debug builds.
func ClaimOwner(name string) {}

// AssertOwner is a no-op outside debug builds.
func AssertOwner(name string) {}
