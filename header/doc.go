// Package header provides the values of SIP header fields produced by the grammar,
// as defined by RFC 3261 and the extensions the grammar knows
// (RFC 3326 Reason, RFC 3515 Refer-To, RFC 3891 Replaces, RFC 4028 Session-Expires,
// RFC 6665 Event and Subscription-State).
//
// Header parameters of every value live in its Params map ([Values]): keys are lower-cased,
// values are kept as they were matched and valueless parameters hold an empty string.
// The parameters the grammar recognizes are validated while parsing and exposed through typed
// accessors, e.g. [ViaHop.Branch], [ViaHop.TTL], [NameAddr.Tag] or [NameAddr.Q].
//
// [NameAddr] values are built by the validating constructor [NewNameAddr].
// Multi-instance header fields are slices of instances ([Via], [Route], [RecordRoute])
// or, for [Contact], a slice with the wildcard flag.
//
// Header names are canonicalized with [CanonicName], which also expands the compact forms:
//
//	"c" → "Content-Type"
//	"e" → "Content-Encoding"
//	"f" → "From"
//	"i" → "Call-ID"
//	"k" → "Supported"
//	"l" → "Content-Length"
//	"m" → "Contact"
//	"o" → "Event"
//	"r" → "Refer-To"
//	"s" → "Subject"
//	"t" → "To"
//	"u" → "Allow-Events"
//	"v" → "Via"
//	"x" → "Session-Expires"
package header
