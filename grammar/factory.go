package grammar

import (
	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/uri"
)

// Factory builds the values that validate themselves on construction.
// The grammar calls it after the corresponding text matched,
// a returned error rejects the whole parse with a [*SemanticError].
type Factory interface {
	NewSIP(p uri.Parts) (*uri.SIP, error)
	NewNameAddr(displayName string, u uri.URI, params header.Values) (header.NameAddr, error)
}

// DefaultFactory builds values with [uri.NewSIP] and [header.NewNameAddr].
var DefaultFactory Factory = defaultFactory{}

type defaultFactory struct{}

func (defaultFactory) NewSIP(p uri.Parts) (*uri.SIP, error) {
	return errtrace.Wrap2(uri.NewSIP(p))
}

func (defaultFactory) NewNameAddr(displayName string, u uri.URI, params header.Values) (header.NameAddr, error) {
	return errtrace.Wrap2(header.NewNameAddr(displayName, u, params))
}
