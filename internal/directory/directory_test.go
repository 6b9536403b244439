package directory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestParsePhoneMap_BothForms(t *testing.T) {
	d, err := ParsePhoneMap(`{"+15551230000":"c-1","+1 (555) 123-0001":{"id":"c-2","name":"Acme Plumbing"}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", d.Len())
	}

	c, err := d.Resolve(context.Background(), "+15551230000")
	if err != nil || c.ID != "c-1" {
		t.Fatalf("unexpected resolve: %+v %v", c, err)
	}
	c, err = d.Resolve(context.Background(), "+15551230001")
	if err != nil || c.ID != "c-2" || c.Name != "Acme Plumbing" {
		t.Fatalf("unexpected resolve: %+v %v", c, err)
	}
}

func TestStatic_NotFound(t *testing.T) {
	d, _ := ParsePhoneMap(`{"+15551230000":"c-1"}`)
	if _, err := d.Resolve(context.Background(), "+15559999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParsePhoneMap_Rejects(t *testing.T) {
	if _, err := ParsePhoneMap(`not json`); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := ParsePhoneMap(`{"5551230000":"c-1"}`); err == nil {
		t.Fatalf("expected E.164 error")
	}
	if _, err := ParsePhoneMap(`{"+15551230000":""}`); err == nil {
		t.Fatalf("expected empty id error")
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contractors.yaml")
	doc := "contractors:\n  \"+15551230000\": c-1\n  \"+15551230001\":\n    id: c-2\n    name: Acme\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c, err := d.Resolve(context.Background(), "+15551230001")
	if err != nil || c.ID != "c-2" || c.Name != "Acme" {
		t.Fatalf("unexpected resolve: %+v %v", c, err)
	}
}

func TestRedisDirectory_UnreachableIsUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()

	_, err := NewRedis(rdb, "").Resolve(context.Background(), "+15551230000")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
