package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// A module mounts routes on the public group, the token-protected group,
// or both.
type PublicModule interface{ MountPublic(*gin.RouterGroup) }
type ProtectedModule interface{ MountProtected(*gin.RouterGroup) }

// Modules implementing prioritizer control mount order (lower mounts
// first, default 100).
type prioritizer interface{ Priority() int }

var (
	mu            sync.RWMutex
	publicMods    []PublicModule
	protectedMods []ProtectedModule
)

// Register dispatches mod to the matching lists by type assertion.
func Register(mod any) {
	mu.Lock()
	defer mu.Unlock()
	if m, ok := mod.(PublicModule); ok {
		publicMods = append(publicMods, m)
	}
	if m, ok := mod.(ProtectedModule); ok {
		protectedMods = append(protectedMods, m)
	}
}

func MountAllPublic(g *gin.RouterGroup) {
	mu.RLock()
	mods := append([]PublicModule(nil), publicMods...)
	mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountPublic(g)
	}
}

func MountAllProtected(g *gin.RouterGroup) {
	mu.RLock()
	mods := append([]ProtectedModule(nil), protectedMods...)
	mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountProtected(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
