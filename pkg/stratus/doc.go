// Package stratus provides the public API surface for the Stratus
// fabrication-tracking REST client.
//
// The package contains the typed resource definitions (projects,
// packages, assemblies, attachments, users, activity logs), the error
// taxonomy used to classify transport failures, query-parameter and
// pagination helpers for the page/pagesize list protocol, an optional
// TTL response cache with pluggable backends, and the Workspace
// controller that keeps filtered views and selections consistent across
// the project → package → assembly → attachment resource tree.
//
// Concrete clients live in internal/client and are constructed through
// the configuration in this package:
//
//	cfg := &stratus.Config{
//	    APIEndpoint: "https://api.gtpstratus.com",
//	    AppKey:      os.Getenv("STRATUS_APP_KEY"),
//	}
//
// All operations are synchronous and take a context.Context; retries on
// rate limiting and transient server errors happen inside the transport
// layer and honor context cancellation.
package stratus
