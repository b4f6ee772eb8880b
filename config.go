package assuan

import (
	"sync/atomic"

	"github.com/codacy-stress-test/libassuan/system"
)

// GlobalConfig holds the process-wide defaults as an explicit value
// rather than a pair of global hook pointers: the default syscall vtable
// and the default allocator. Configure installs it once, before any
// Context is constructed; every constructor snapshots the current
// GlobalConfig so a later Configure call can never race a live
// conversation.
type GlobalConfig struct {
	Hooks     system.Hooks
	Allocator system.Allocator
}

var globalConfig atomic.Pointer[GlobalConfig]

// Configure installs the process-wide defaults. Safe to call at most once
// per process, before the first context is constructed; calling it again
// only affects contexts constructed afterward.
func Configure(cfg GlobalConfig) {
	globalConfig.Store(&cfg)
}

func currentConfig() GlobalConfig {
	if p := globalConfig.Load(); p != nil {
		return *p
	}
	return GlobalConfig{}
}

func hooksOrDefault(h system.Hooks) system.Hooks {
	if h != nil {
		return h
	}
	cfg := currentConfig()
	if cfg.Hooks != nil {
		return cfg.Hooks
	}
	return system.Posix()
}
