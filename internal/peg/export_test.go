package peg

// FailHook registers fn to be called on every recorded failure, including the ones
// behind the rightmost offset.
func FailHook(fn func(off int)) Option {
	return func(p *Parser) { p.onFail = fn }
}

var Position = position
