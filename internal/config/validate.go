package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CheckConfigValidity reports every problem found in v as one error.
func CheckConfigValidity(v *viper.Viper) error {
	var msgs []string
	add := func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		add("data_dir is required")
	}
	if strings.TrimSpace(v.GetString("http_addr")) == "" {
		add("http_addr is required")
	}

	raw := strings.TrimSpace(v.GetString("server_url"))
	if u, err := url.Parse(raw); raw == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("server_url must be an http(s) URL")
	}

	if d, err := time.ParseDuration(v.GetString("request_timeout")); err != nil || d <= 0 {
		add("request_timeout must be a positive duration")
	}

	if out := v.GetString("output"); !slices.Contains(OutputModes, out) {
		add("output must be one of %s", strings.Join(OutputModes, "|"))
	}

	switch p := v.GetString("auth.key_provider"); p {
	case "", "config", "keyring":
	default:
		add("auth.key_provider must be config or keyring")
	}

	if v.GetInt("retrieval.max_chunks") <= 0 {
		add("retrieval.max_chunks must be greater than 0")
	}
	size := v.GetInt("ingest.chunk_size")
	if size <= 0 {
		add("ingest.chunk_size must be greater than 0")
	}
	overlap := v.GetInt("ingest.chunk_overlap")
	if overlap < 0 || (size > 0 && overlap >= size) {
		add("ingest.chunk_overlap must be between 0 and chunk_size-1")
	}
	if v.GetInt64("server.max_body_bytes") <= 0 {
		add("server.max_body_bytes must be greater than 0")
	}
	if v.GetInt("history.limit") <= 0 {
		add("history.limit must be greater than 0")
	}

	if len(msgs) == 0 {
		return nil
	}
	return errors.New("invalid config: " + strings.Join(msgs, "; "))
}
