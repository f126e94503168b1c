package redis

import "testing"

func TestKeys(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{sportsKey(), "sportsarb:sports"},
		{eventsKey("soccer_epl:us:h2h"), "sportsarb:events:soccer_epl:us:h2h"},
		{lockKey("scan:soccer_epl"), "sportsarb:lock:scan:soccer_epl"},
		{rateLimitKey("api:10.0.0.1"), "sportsarb:ratelimit:api:10.0.0.1"},
		{busChannel("arb"), "sportsarb:arb"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestHasPattern(t *testing.T) {
	for ch, want := range map[string]bool{"arb": false, "scans": false, "*": true, "scan?": true, "s[ab]": true} {
		if got := hasPattern(ch); got != want {
			t.Errorf("hasPattern(%q) = %v, want %v", ch, got, want)
		}
	}
}

func TestSlidingWindowScriptEmbedded(t *testing.T) {
	if slidingWindowLua == "" {
		t.Fatal("sliding window script not embedded")
	}
}

func TestOptions(t *testing.T) {
	opts, err := options(ClientConfig{Addr: "localhost:6379", DB: 2, PoolSize: 5, TLSEnabled: true})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.PoolSize != 5 || opts.TLSConfig == nil {
		t.Errorf("discrete options = %+v", opts)
	}

	opts, err = options(ClientConfig{Addr: "redis://:pw@cache:6380/3", PoolSize: 7})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 3 || opts.Password != "pw" || opts.PoolSize != 7 {
		t.Errorf("url options = %+v", opts)
	}

	if _, err := options(ClientConfig{Addr: "redis://cache:6379/notadb"}); err == nil {
		t.Error("bad url accepted")
	}
}
