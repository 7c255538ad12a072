package service

import "testing"

func TestRateLimiterRegistry_Allow(t *testing.T) {
	reg := NewRateLimiterRegistry(2)

	if !reg.Allow("10.0.0.1") || !reg.Allow("10.0.0.1") {
		t.Fatal("first two requests should be allowed")
	}
	if reg.Allow("10.0.0.1") {
		t.Error("third request within the burst window should be denied")
	}
	if !reg.Allow("10.0.0.2") {
		t.Error("a different key has its own bucket")
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRateLimiterRegistry_GetOrCreateReuses(t *testing.T) {
	reg := NewRateLimiterRegistry(5)
	a := reg.GetOrCreate("k")
	b := reg.GetOrCreate("k")
	if a != b {
		t.Error("GetOrCreate should return the same limiter for a key")
	}
	reg.Delete("k")
	if reg.Len() != 0 {
		t.Errorf("Len() after Delete = %d", reg.Len())
	}
}
