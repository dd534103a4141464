package config

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	c := Default()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"posts per page", c.PostsPerPage, 10},
		{"index cache ttl", c.IndexCacheTTL(), 20 * time.Second},
		{"login url", c.LoginURL, "/auth/login/"},
		{"cache backend", c.CacheBackend, "memory"},
		{"db driver", c.DBDriver, "mysql"},
		{"media url", c.MediaURL, "/media/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestApplyJSONGroupedSections(t *testing.T) {
	raw := map[string]any{}
	doc := `{
		"app": {"AppPort": "9000", "JWTSecret": "s3cret", "AdminUsernames": ["root"]},
		"feed": {"PostsPerPage": 5, "IndexCacheSeconds": 60, "CacheBackend": "redis"},
		"database": {"Driver": "sqlite", "SQLitePath": "/tmp/db.sqlite3"},
		"redis": {"Enabled": true, "RedisPort": 6380}
	}`
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatal(err)
	}
	var c AppConfig
	applyJSON(raw, &c)
	applyDefaults(&c)

	if c.AppPort != "9000" || c.JWTSecret != "s3cret" {
		t.Errorf("app section not applied: %+v", c)
	}
	if c.PostsPerPage != 5 || c.IndexCacheSeconds != 60 || c.CacheBackend != "redis" {
		t.Errorf("feed section not applied: %+v", c)
	}
	if c.DBDriver != "sqlite" || c.SQLitePath != "/tmp/db.sqlite3" {
		t.Errorf("database section not applied: %+v", c)
	}
	if !c.RedisEnabled || c.RedisPort != 6380 || c.RedisHost != "127.0.0.1" {
		t.Errorf("redis section not applied: %+v", c)
	}
	if !reflect.DeepEqual(c.AdminUsernames, []string{"root"}) {
		t.Errorf("AdminUsernames = %v", c.AdminUsernames)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("POSTS_PER_PAGE", "3")
	t.Setenv("INDEX_CACHE_SECONDS", "1")
	t.Setenv("ADMIN_USERNAMES", " alice , ,bob")
	c := Default()
	applyEnvOverrides(&c)
	if c.PostsPerPage != 3 {
		t.Errorf("PostsPerPage = %d, want 3", c.PostsPerPage)
	}
	if c.IndexCacheTTL() != time.Second {
		t.Errorf("IndexCacheTTL = %v, want 1s", c.IndexCacheTTL())
	}
	if !reflect.DeepEqual(c.AdminUsernames, []string{"alice", "bob"}) {
		t.Errorf("AdminUsernames = %v", c.AdminUsernames)
	}
}

func TestSetOverridesGet(t *testing.T) {
	c := Default()
	c.JWTSecret = "test"
	c.PostsPerPage = 7
	Set(c)
	if got := Get().PostsPerPage; got != 7 {
		t.Errorf("Get().PostsPerPage = %d, want 7", got)
	}
}
