package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"cors-proxy-go/internal/config"
)

// LoadTLSConfig reads the certificate/key pair named in cfg.
func LoadTLSConfig(cfg config.TLSConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load key pair (cert %s, key %s): %w", cfg.CertFile, cfg.KeyFile, err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Listen loads the key pair and binds the TLS endpoint at cfg.Server.Addr().
// Key material is read before the socket is bound.
func Listen(cfg *config.Config) (net.Listener, error) {
	tlsCfg, err := LoadTLSConfig(cfg.Server.TLS)
	if err != nil {
		return nil, err
	}

	addr := cfg.Server.Addr()
	ln, err := tls.Listen("tcp", addr, tlsCfg)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return ln, nil
}
