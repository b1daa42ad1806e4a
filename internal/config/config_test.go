package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("STARTING_CREDITS", "")
	t.Setenv("ADMIN_IDENTITIES", "")
	t.Setenv("AUTOQUOTE_WORKERS", "")

	c := Load()
	if c.AppPort != "8080" {
		t.Fatalf("AppPort=%q", c.AppPort)
	}
	if c.StartingCredits != 5 || c.LowCreditThreshold != 1 || c.HospitalCodeMaxAttempts != 10 {
		t.Fatalf("credit defaults: %+v", c)
	}
	if c.AutoQuoteWorkers != 2 || c.AutoQuoteMaxAttempts != 3 {
		t.Fatalf("autoquote defaults: %+v", c)
	}
	if c.IdempTTLSecs != 300 {
		t.Fatalf("IdempTTLSecs=%d", c.IdempTTLSecs)
	}
	if len(c.AdminIdentities) != 0 {
		t.Fatalf("AdminIdentities=%v", c.AdminIdentities)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_DB", "3")
	t.Setenv("STARTING_CREDITS", "12")
	t.Setenv("ADMIN_IDENTITIES", " auth0|a , ,auth0|b")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "not-a-number")

	c := Load()
	if c.RedisDB != 3 {
		t.Fatalf("RedisDB=%d", c.RedisDB)
	}
	if c.StartingCredits != 12 {
		t.Fatalf("StartingCredits=%d", c.StartingCredits)
	}
	if !reflect.DeepEqual(c.AdminIdentities, []string{"auth0|a", "auth0|b"}) {
		t.Fatalf("AdminIdentities=%v", c.AdminIdentities)
	}
	if c.IdempTTLSecs != 300 {
		t.Fatalf("bad int should keep default, got %d", c.IdempTTLSecs)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AppPort: "8080", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "m", MySQLUser: "u",
			JWTSecret: "s", HospitalCodeMaxAttempts: 10, AutoQuoteMaxAttempts: 3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing host", func(c *Config) { c.MySQLHost = "" }, "missing MySQL config"},
		{"bad port", func(c *Config) { c.MySQLPort = "abc" }, "invalid MYSQL_PORT"},
		{"missing jwt", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"negative credits", func(c *Config) { c.StartingCredits = -1 }, "STARTING_CREDITS"},
		{"zero attempts", func(c *Config) { c.HospitalCodeMaxAttempts = 0 }, "HOSPITAL_CODE_MAX_ATTEMPTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err=%v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "h", MySQLPort: "3306", MySQLDB: "d"}
	if got := c.MySQLDSN(); !strings.HasPrefix(got, "u:p@tcp(h:3306)/d?parseTime=true") {
		t.Fatalf("dsn=%s", got)
	}
}
