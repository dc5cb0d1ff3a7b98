// Package types defines the Store and Table interfaces, the Member entity,
// backend configuration and the standard errors shared by almanac storage
// backends.
package types
