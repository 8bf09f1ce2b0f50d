package config

import (
	"sync"
	"testing"
)

func resetGlobal() {
	SetConfig(nil)
	initOnce = sync.Once{}
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, `
server:
  http:
    listen_address: "127.0.0.1:9200"
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected config to be set")
	}
	if cfg.Server.HTTP.ListenAddress != "127.0.0.1:9200" {
		t.Errorf("unexpected listen address %q", cfg.Server.HTTP.ListenAddress)
	}

	// Second call is ignored.
	if err := Initialize("/nonexistent.yaml"); err != nil {
		t.Errorf("expected repeated Initialize to be a no-op, got %v", err)
	}
	if GetConfig() != cfg {
		t.Error("expected config to be unchanged")
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	defer func() {
		if recover() == nil {
			t.Error("expected MustGetConfig to panic without configuration")
		}
	}()
	MustGetConfig()
}

func TestSetConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	cfg := DefaultConfig()
	SetConfig(cfg)
	if MustGetConfig() != cfg {
		t.Error("expected SetConfig to replace the global configuration")
	}
}
