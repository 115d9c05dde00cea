package grammar

import (
	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/internal/peg"
)

const (
	RuleCRLF              Rule = "CRLF"
	RuleLWS               Rule = "LWS"
	RuleToken             Rule = "token"
	RuleWord              Rule = "word"
	RuleQuotedString      Rule = "quoted_string"
	RuleQuotedStringClean Rule = "quoted_string_clean"
	RuleComment           Rule = "comment"
	RuleTextUTF8Trim      Rule = "TEXT_UTF8_TRIM"
)

var notTokenChar = peg.NotFollowedBy(chars.IsTokenChar)

var (
	crlf = def(RuleCRLF, peg.Lit("\r\n"))

	digit        = lex("DIGIT", peg.Class("DIGIT", chars.IsDigit))
	alpha        = lex("ALPHA", peg.Class("ALPHA", chars.IsAlpha))
	hexdig       = lex("HEXDIG", peg.Class("HEXDIG", chars.IsHexDigit))
	sp           = lex("SP", peg.Lit(" "))
	htab         = lex("HTAB", peg.Lit("\t"))
	wsp          = lex("WSP", peg.Class("WSP", chars.IsWSP))
	octet        = lex("OCTET", peg.Class("OCTET", func(r rune) bool { return r <= 0xFF }))
	dquote       = lex("DQUOTE", peg.Lit(`"`))
	alnum        = lex("alphanum", peg.Class("alphanum", chars.IsAlphanum))
	lhex         = lex("LHEX", peg.Class("LHEX", func(r rune) bool { return chars.IsDigit(r) || 'a' <= r && r <= 'f' }))
	utf8NonASCII = lex("UTF8_NONASCII", peg.Class("UTF8_NONASCII", chars.IsUTF8NonASCII))

	reserved   = lex("reserved", peg.Class("reserved", chars.IsReserved))
	unreserved = lex("unreserved", peg.Class("unreserved", chars.IsUnreserved))
	mark       = lex("mark", peg.Class("mark", chars.IsMark))
	escaped    = lex("escaped", text(peg.Lit("%"), hexdig, hexdig))

	// LWS collapses to a single space.
	lws = lex(RuleLWS, peg.Val(peg.Seq(peg.Opt(peg.Seq(peg.Star(wsp), crlf)), peg.Plus(wsp)), " "))
	sws = lex("SWS", peg.Opt(lws))

	hcolon = lex("HCOLON", peg.Val(peg.Seq(peg.Star(wsp), peg.Lit(":"), sws), ":"))

	textUTF8Char = lex("TEXT_UTF8char", peg.Class("TEXT_UTF8char", chars.IsTextUTF8Char))
	textUTF8Trim = def(RuleTextUTF8Trim, text(peg.Plus(textUTF8Char), peg.Star(peg.Seq(peg.Star(lws), textUTF8Char))))

	token      = def(RuleToken, text(peg.Plus(peg.Class("token character", chars.IsTokenChar))))
	tokenNoDot = def("token_nodot", text(peg.Plus(peg.Class("token character except dot", chars.IsTokenNoDotChar))))
	separator  = lex("separators", peg.Class("separator", chars.IsSeparator))
	word       = def(RuleWord, text(peg.Plus(peg.Class("word character", chars.IsWordChar))))

	star   = lex("STAR", sepOf("*"))
	slash  = lex("SLASH", sepOf("/"))
	equal  = lex("EQUAL", sepOf("="))
	lparen = lex("LPAREN", sepOf("("))
	rparen = lex("RPAREN", sepOf(")"))
	raquot = lex("RAQUOT", peg.Val(peg.Seq(peg.Lit(">"), sws), ">"))
	laquot = lex("LAQUOT", peg.Val(peg.Seq(sws, peg.Lit("<")), "<"))
	comma  = lex("COMMA", sepOf(","))
	semi   = lex("SEMI", sepOf(";"))
	colon  = lex("COLON", sepOf(":"))
	ldquot = lex("LDQUOT", peg.Val(peg.Seq(sws, dquote), `"`))
	rdquot = lex("RDQUOT", peg.Val(peg.Seq(dquote, sws), `"`))

	ctext      = lex("ctext", peg.Choice(peg.Class("ctext", chars.IsCtext), lws))
	qdtext     = lex("qdtext", peg.Choice(lws, peg.Class("qdtext", chars.IsQdtext)))
	quotedPair = lex("quoted_pair", text(peg.Lit(`\`), peg.Class("quoted-pair character", chars.IsQuotedPairChar)))

	quotedBody = text(dquote, peg.Star(peg.Choice(qdtext, quotedPair)), dquote)

	// quoted_string keeps the quotes and the quoted pairs.
	quotedString = def(RuleQuotedString, peg.Map(peg.Seq(sws, quotedBody), func(v any) any { return at(v, 1) }))
	// quoted_string_clean strips the quotes and the backslashes of quoted pairs.
	quotedStringClean = def(RuleQuotedStringClean, peg.Map(peg.Seq(sws, quotedBody), func(v any) any {
		return chars.Unquote(str(at(v, 1)))
	}))
)

var commentRef peg.Expr

// comment nests, so it refers to itself through commentRef.
var comment = def(RuleComment, text(lparen, peg.Star(peg.Choice(ctext, quotedPair, peg.Ref(&commentRef))), rparen))

func init() {
	commentRef = comment
}

// sepOf matches SWS c SWS and produces c.
func sepOf(c string) peg.Expr {
	return peg.Val(peg.Seq(sws, peg.Lit(c), sws), c)
}
