package utils

import (
	"context"
	"testing"
	"time"
)

func TestRememberOnceScriptCompiles(t *testing.T) {
	if rememberOnceScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestRememberOnce_RejectsInvalidArgs(t *testing.T) {
	if _, err := RememberOnce(context.Background(), nil, "k", "v", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
