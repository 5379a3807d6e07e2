package announce

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/namnhcntt/BingoMaster/internal/config"
)

// FromServer builds the announcer config from server env settings. Targets
// come from ANNOUNCE_TARGETS_PATH when set, otherwise from the inline
// ANNOUNCE_TARGETS_JSON value.
func FromServer(cfg config.ServerConfig) (Config, error) {
	out := Config{
		Enabled:        cfg.AnnounceEnabled,
		Workers:        cfg.AnnounceWorkers,
		RetryMax:       cfg.AnnounceRetryMax,
		RetryBase:      time.Duration(cfg.AnnounceRetryBaseMS) * time.Millisecond,
		RequestTimeout: 5 * time.Second,
		DispatchBuffer: 256,
	}
	if !out.Enabled {
		return out, nil
	}

	if out.Workers <= 0 {
		out.Workers = 2
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}
	if out.RetryBase <= 0 {
		out.RetryBase = 500 * time.Millisecond
	}

	jsonRaw, err := loadTargetsJSON(cfg)
	if err != nil {
		return Config{}, err
	}
	if jsonRaw == "" {
		return out, nil
	}
	targets, err := parseTargets(jsonRaw)
	if err != nil {
		return Config{}, err
	}
	out.Targets = targets
	return out, nil
}

func loadTargetsJSON(cfg config.ServerConfig) (string, error) {
	path := strings.TrimSpace(cfg.AnnounceTargetsPath)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read announce targets path %q: %w", path, err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return strings.TrimSpace(cfg.AnnounceTargetsJSON), nil
}

func parseTargets(jsonRaw string) ([]Target, error) {
	var targets []Target
	if err := json.Unmarshal([]byte(jsonRaw), &targets); err != nil {
		return nil, fmt.Errorf("parse announce targets: %w", err)
	}
	filtered := make([]Target, 0, len(targets))
	for _, target := range targets {
		target.Platform = strings.ToLower(strings.TrimSpace(target.Platform))
		target.ScopeType = strings.ToLower(strings.TrimSpace(target.ScopeType))
		if target.ScopeType == "" {
			target.ScopeType = "all"
		}
		if target.ScopeType != "all" && target.ScopeType != "game" {
			continue
		}
		target.Endpoint = strings.TrimSpace(target.Endpoint)
		if target.Endpoint == "" {
			continue
		}
		if !target.Enabled {
			continue
		}
		for i := range target.EventAllowlist {
			target.EventAllowlist[i] = strings.TrimSpace(strings.ToLower(target.EventAllowlist[i]))
		}
		filtered = append(filtered, target)
	}
	return filtered, nil
}
