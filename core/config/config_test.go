package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123456:test-token"},
		Ledger:   LedgerConfig{URL: "https://ledger.example/exec"},
		Access: AccessConfig{
			AllowedIDs: []int64{1, 2, 3},
			OwnerIDs:   []int64{1},
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll default", cfg.Telegram.RunMode)
	}
	if cfg.Ledger.TimeoutSeconds != DefaultLedgerTimeoutSeconds {
		t.Errorf("ledger timeout = %d, want %d", cfg.Ledger.TimeoutSeconds, DefaultLedgerTimeoutSeconds)
	}
}

func TestNormalizeFatal(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "token"},
		{"missing ledger url", func(c *Config) { c.Ledger.URL = " " }, "ledger.url"},
		{"empty allow list", func(c *Config) { c.Access.AllowedIDs = nil }, "allowed_ids"},
		{"owner outside allow list", func(c *Config) { c.Access.OwnerIDs = []int64{99} }, "owner_ids"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "run_mode"},
		{"webhook without url", func(c *Config) {
			c.Telegram.RunMode = RunModeWebhook
			c.Webhook = WebhookConfig{Listen: "0.0.0.0", Port: 8443}
		}, "webhook.url"},
		{"webhook without listen", func(c *Config) {
			c.Telegram.RunMode = RunModeWebhook
			c.Webhook = WebhookConfig{URL: "https://bot.example", Port: 8443}
		}, "webhook.listen"},
		{"webhook bad port", func(c *Config) {
			c.Telegram.RunMode = RunModeWebhook
			c.Webhook = WebhookConfig{URL: "https://bot.example", Listen: "0.0.0.0"}
		}, "webhook.port"},
		{"negative longpoll timeout", func(c *Config) { c.Telegram.LongPollTimeoutSeconds = -1 }, "longpoll"},
		{"bad rate limit exclude", func(c *Config) {
			c.RateLimit.ExcludeUpdates = []string{"inline_query"}
		}, "exclude_updates"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Normalize(cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "Polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeWebhookPathDerived(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	cfg.Webhook = WebhookConfig{URL: "https://bot.example", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.HasPrefix(cfg.Webhook.Path, "tg/") || len(cfg.Webhook.Path) != len("tg/")+24 {
		t.Errorf("derived path = %q", cfg.Webhook.Path)
	}

	other := validConfig()
	other.Telegram.Token = "another:token"
	other.Telegram.RunMode = RunModeWebhook
	other.Webhook = WebhookConfig{URL: "https://bot.example", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(other); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if other.Webhook.Path == cfg.Webhook.Path {
		t.Error("path must depend on the token")
	}
}

func TestNormalizeRateLimitExcludeLowered(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "MESSAGE"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []string{"callback", "message"}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		if v != want[i] {
			t.Errorf("exclude[%d] = %q, want %q", i, v, want[i])
		}
	}
}

func TestAccessHelpers(t *testing.T) {
	a := AccessConfig{AllowedIDs: []int64{1, 2}, OwnerIDs: []int64{1}}
	if !a.IsAllowed(2) || a.IsAllowed(3) {
		t.Error("IsAllowed mismatch")
	}
	if !a.IsOwner(1) || a.IsOwner(2) {
		t.Error("IsOwner mismatch")
	}
}
