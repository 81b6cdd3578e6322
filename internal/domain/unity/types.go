package unity

import "strings"

// Return types the type toggle switches between.
const (
	ReturnVoid        = "void"
	ReturnIEnumerator = "IEnumerator"
)

// CollectionsNamespace declares IEnumerator.
const CollectionsNamespace = "System.Collections"

// ScriptFileID is the fileID Unity writes in m_Script references to
// MonoScript assets.
const ScriptFileID = "11500000"

// Asset extensions that serialize component references.
const (
	ExtScene  = ".unity"
	ExtPrefab = ".prefab"
	ExtAsset  = ".asset"
	ExtMeta   = ".meta"
)

// Project layout directories that mark a Unity project root.
var ProjectDirs = []string{"Library", "Assets", "ProjectSettings"}

// IsCoroutineReturn reports whether typ names IEnumerator, qualified or not.
func IsCoroutineReturn(typ string) bool {
	typ = strings.TrimSpace(typ)
	return typ == ReturnIEnumerator || typ == CollectionsNamespace+"."+ReturnIEnumerator
}

// ToggledReturnType returns the type a toggle would switch typ to, or ""
// when typ is neither void nor IEnumerator.
func ToggledReturnType(typ string) string {
	switch {
	case strings.TrimSpace(typ) == ReturnVoid:
		return ReturnIEnumerator
	case IsCoroutineReturn(typ):
		return ReturnVoid
	default:
		return ""
	}
}

// Hidden reports whether Unity's asset importer skips a file or directory
// name: dot-prefixed names, names ending in "~", and cvs folders.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") || strings.EqualFold(name, "cvs")
}
