package llm

import (
	"net"
	"net/http"
	"time"

	"folio-assistant/internal/infra/config"
)

const (
	defaultConnTimeout     = 10 * time.Second
	defaultRespTimeout     = 30 * time.Second
	defaultMaxIdleConns    = 20
	defaultMaxConnsPerHost = 20
	defaultIdleConnTimeout = 2 * time.Minute
)

// newTransport builds a pooled transport for a single model API host.
func newTransport(cfg config.ProviderConfig) *http.Transport {
	pool := cfg.Pool
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   orDefault(cfg.ConnTimeout, defaultConnTimeout),
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: orDefault(cfg.RespTimeout, defaultRespTimeout),
		MaxIdleConns:          positive(pool.MaxIdleConns, defaultMaxIdleConns),
		MaxIdleConnsPerHost:   positive(pool.MaxIdleConnsPerHost, defaultMaxIdleConns/2),
		MaxConnsPerHost:       positive(pool.MaxConnsPerHost, defaultMaxConnsPerHost),
		IdleConnTimeout:       orDefault(pool.IdleConnTimeout, defaultIdleConnTimeout),
		ForceAttemptHTTP2:     true,
	}
}

// NewHTTPClient returns a client whose overall timeout covers connecting and
// waiting for the first response byte.
func NewHTTPClient(cfg config.ProviderConfig) *http.Client {
	return &http.Client{
		Transport: newTransport(cfg),
		Timeout:   orDefault(cfg.ConnTimeout, defaultConnTimeout) + orDefault(cfg.RespTimeout, defaultRespTimeout),
	}
}

func positive(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
