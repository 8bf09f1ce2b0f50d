/*
Package tls provides TLS and mTLS configuration for the budgetd listeners.

# Server Configuration

	reloader := tls.NewCertificateReloader(&cfg.Server.TLS, logger)
	if err := reloader.Load(); err != nil {
		return err
	}

	tlsConfig, err := tls.ServerConfig(&cfg.Server.TLS, reloader)
	if err != nil {
		return err
	}

The same *crypto/tls.Config serves the HTTP listener and, wrapped in
gRPC transport credentials, the gRPC listener.

# Mutual TLS

Setting client_ca_file makes the listeners request client certificates.
client_auth selects whether one is required. PeerIdentity names the
authenticated caller in request logs.

# Certificate Reload

Run polls the certificate and key files and swaps the served certificate
when either changes, so renewals do not need a restart. Check fails once
the served certificate has expired.
*/
package tls
