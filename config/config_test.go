package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, "8080", cfg.ServerPort)
				require.Equal(t, 24*time.Hour, cfg.JWTTTL)
				require.Equal(t, 5*time.Second, cfg.TxTimeout)
				require.Equal(t, 1000, cfg.SignupCredits)
				require.False(t, cfg.IsProduction())
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"SERVER_PORT":    "9090",
				"JWT_TTL":        "15m",
				"SIGNUP_CREDITS": "250",
				"ENVIRONMENT":    "production",
			},
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, "9090", cfg.ServerPort)
				require.Equal(t, 15*time.Minute, cfg.JWTTTL)
				require.Equal(t, 250, cfg.SignupCredits)
				require.True(t, cfg.IsProduction())
			},
		},
		{
			name: "unparsable values fall back",
			env: map[string]string{
				"TX_TIMEOUT":     "soon",
				"SIGNUP_CREDITS": "lots",
			},
			check: func(t *testing.T, cfg Config) {
				require.Equal(t, 5*time.Second, cfg.TxTimeout)
				require.Equal(t, 1000, cfg.SignupCredits)
			},
		},
	}

	keys := []string{"SERVER_PORT", "JWT_TTL", "TX_TIMEOUT", "SIGNUP_CREDITS", "ENVIRONMENT"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			tt.check(t, LoadConfig())
		})
	}
}

func TestPostgresConnStr(t *testing.T) {
	cfg := Config{
		DatabaseHost:     "localhost",
		DatabasePort:     "5432",
		DatabaseUser:     "u",
		DatabasePassword: "p",
		DatabaseName:     "market",
		DatabaseSSLMode:  "disable",
	}
	require.Equal(t,
		"host=localhost port=5432 user=u password=p dbname=market sslmode=disable",
		cfg.PostgresConnStr(),
	)
}
