package tls

import "crypto/tls"

// PeerIdentity names the verified client of a connection: the leaf
// certificate's common name, else its first DNS name. It returns "" when
// the client presented no certificate.
func PeerIdentity(state *tls.ConnectionState) string {
	if state == nil || len(state.PeerCertificates) == 0 {
		return ""
	}
	leaf := state.PeerCertificates[0]
	if leaf.Subject.CommonName != "" {
		return leaf.Subject.CommonName
	}
	if len(leaf.DNSNames) > 0 {
		return leaf.DNSNames[0]
	}
	return ""
}
