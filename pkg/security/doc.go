/*
Package security groups the transport security used by budgetd.

Subpackage tls builds server and client TLS configurations, including
mutual TLS and certificate reloading, for both the HTTP and gRPC listeners.
*/
package security
