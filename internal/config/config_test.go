package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORAGE", "WATCHLIST", "SCHEDULER_INTERVAL_MS", "DEDUPE_INFLIGHT", "UPSTREAM_MAX_RETRIES", "FETCH_CONCURRENCY"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "pg", cfg.Storage)
	require.Equal(t, time.Minute, cfg.SchedulerInterval)
	require.True(t, cfg.DedupeInflight)
	require.Equal(t, 2, cfg.UpstreamMaxRetries)
	require.Zero(t, cfg.FetchConcurrency)
	require.Equal(t, []string{"bitcoin", "ethereum", "solana", "cardano", "ripple", "dogecoin"}, cfg.Watchlist)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WATCHLIST", " bitcoin , ,monero")
	t.Setenv("SCHEDULER_INTERVAL_MS", "1500")
	t.Setenv("DEDUPE_INFLIGHT", "false")
	t.Setenv("UPSTREAM_MAX_RETRIES", "0")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("FETCH_CONCURRENCY", "4")

	cfg := Load()
	require.Equal(t, []string{"bitcoin", "monero"}, cfg.Watchlist)
	require.Equal(t, 1500*time.Millisecond, cfg.SchedulerInterval)
	require.False(t, cfg.DedupeInflight)
	require.Equal(t, 0, cfg.UpstreamMaxRetries)
	require.Equal(t, "memory", cfg.CacheBackend)
	require.Equal(t, 4, cfg.FetchConcurrency)
}
