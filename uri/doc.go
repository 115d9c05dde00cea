// Package uri provides the URI values produced by the SIP grammar.
//
// [SIP] represents SIP and SIPS URIs (sip:, sips:) with user credentials, host:port address,
// parameters and headers as defined in RFC 3261. It is built by the validating constructor
// [NewSIP] from the [Parts] matched by the grammar; the constructor is the place where
// structurally impossible field combinations are rejected.
//
// [Any] is a generic URI type based on [net/url.URL] for absolute URIs of other schemes
// (e.g., http:, tel:, urn:) that appear in Request-Line or digest domain lists.
//
// All URI types implement the [URI] interface, providing uniform access to rendering,
// cloning, validation, and equality comparison.
//
// SIP URI equality follows RFC 3261 Section 19.1.4 rules, where special parameters
// (transport, user, method, maddr, ttl, lr) must match, but non-special parameters
// are optional for equality.
//
// Parameters and headers are stored decoded in [Values] with lower-cased keys
// and escaped again on rendering. The password is kept as it was matched.
package uri
