// Package catalog embeds the Unity message catalog: the methods Unity calls
// by name on MonoBehaviour subclasses, with localized descriptions.
//
// Usage:
//
//	unity.LoadCatalog(catalog.FS, "v1")
package catalog

import "embed"

//go:embed v1/*.json
var FS embed.FS
