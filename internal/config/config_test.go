package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Database:  DatabaseConfig{Host: "localhost", Name: "inventory_db", User: "inventory_user"},
		Redis:     RedisConfig{Enabled: true, Host: "localhost", Port: "6379"},
		Scheduler: SchedulerConfig{Cron: "0 4 * * *", Workers: 4, Timezone: "UTC"},
		Inventory: InventoryConfig{DefaultServiceLevel: 95},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "DB_HOST"},
		{name: "redis disabled without host", mutate: func(c *Config) { c.Redis.Enabled = false; c.Redis.Host = "" }},
		{name: "redis enabled without host", mutate: func(c *Config) { c.Redis.Host = "" }, wantErr: "REDIS_HOST"},
		{name: "bad cron", mutate: func(c *Config) { c.Scheduler.Cron = "every day" }, wantErr: "SCHEDULER_CRON"},
		{name: "no workers", mutate: func(c *Config) { c.Scheduler.Workers = 0 }, wantErr: "SCHEDULER_WORKERS"},
		{name: "bad timezone", mutate: func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, wantErr: "SCHEDULER_TIMEZONE"},
		{name: "unsupported service level", mutate: func(c *Config) { c.Inventory.DefaultServiceLevel = 93 }, wantErr: "INVENTORY_DEFAULT_SERVICE_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "7")
	t.Setenv("TEST_BAD_INT", "seven")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_SLICE", "a, b,c")

	if got := getEnvAsInt("TEST_INT", 1); got != 7 {
		t.Errorf("getEnvAsInt = %d, want 7", got)
	}
	if got := getEnvAsInt("TEST_BAD_INT", 1); got != 1 {
		t.Errorf("getEnvAsInt with bad value = %d, want default 1", got)
	}
	if got := getEnvAsDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("getEnvAsDuration = %v, want 90s", got)
	}
	got := getEnvAsSlice("TEST_SLICE", nil)
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("getEnvAsSlice = %v, want [a b c]", got)
	}
}

func TestSchedulerLocation(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.Timezone = "Local"
	loc, err := cfg.SchedulerLocation()
	if err != nil || loc != time.Local {
		t.Fatalf("SchedulerLocation() = %v, %v; want time.Local", loc, err)
	}
}
