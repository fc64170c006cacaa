package glitchy

import (
	"net/http"
	"testing"
	"time"
)

func TestNewServer_Options(t *testing.T) {
	testCases := []struct {
		name        string
		opts        []ServerOption
		expAddr     string
		expRead     time.Duration
		expWrite    time.Duration
		expIdle     time.Duration
		expShutdown time.Duration
	}{
		{
			name:        "Defaults",
			expAddr:     ":8080",
			expRead:     5 * time.Second,
			expWrite:    30 * time.Second,
			expIdle:     120 * time.Second,
			expShutdown: 20 * time.Second,
		},
		{
			name: "Overrides",
			opts: []ServerOption{
				WithAddr("127.0.0.1:9000"),
				WithReadTimeout(time.Second),
				WithWriteTimeout(2 * time.Second),
				WithIdleTimeout(3 * time.Second),
				WithShutdownTimeout(4 * time.Second),
			},
			expAddr:     "127.0.0.1:9000",
			expRead:     time.Second,
			expWrite:    2 * time.Second,
			expIdle:     3 * time.Second,
			expShutdown: 4 * time.Second,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewServer(http.NotFoundHandler(), tc.opts...)

			if s.srv.Addr != tc.expAddr {
				t.Errorf("exp addr %q, got %q", tc.expAddr, s.srv.Addr)
			}
			if s.srv.ReadTimeout != tc.expRead || s.srv.WriteTimeout != tc.expWrite || s.srv.IdleTimeout != tc.expIdle {
				t.Errorf("exp timeouts %v/%v/%v, got %v/%v/%v",
					tc.expRead, tc.expWrite, tc.expIdle,
					s.srv.ReadTimeout, s.srv.WriteTimeout, s.srv.IdleTimeout)
			}
			if s.shutdownTimeout != tc.expShutdown {
				t.Errorf("exp shutdown timeout %v, got %v", tc.expShutdown, s.shutdownTimeout)
			}
		})
	}
}
