package message

import (
	"context"
	"log/slog"
	"strings"

	"braces.dev/errtrace"
	"github.com/qmuntal/stateless"

	"github.com/ghettovoice/sipabnf/grammar"
	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/log"
	"github.com/ghettovoice/sipabnf/internal/util"
)

var fieldRules = map[header.Name]grammar.Rule{
	"Via":                 grammar.RuleVia,
	"From":                grammar.RuleFrom,
	"To":                  grammar.RuleTo,
	"Contact":             grammar.RuleContact,
	"Route":               grammar.RuleRoute,
	"Record-Route":        grammar.RuleRecordRoute,
	"Refer-To":            grammar.RuleReferTo,
	"CSeq":                grammar.RuleCSeq,
	"Call-ID":             grammar.RuleCallID,
	"Content-Length":      grammar.RuleContentLength,
	"Max-Forwards":        grammar.RuleMaxForwards,
	"Expires":             grammar.RuleExpires,
	"Min-Expires":         grammar.RuleMinExpires,
	"Content-Type":        grammar.RuleContentType,
	"Content-Disposition": grammar.RuleContentDisposition,
	"Content-Encoding":    grammar.RuleContentEncoding,
	"Event":               grammar.RuleEvent,
	"Allow-Events":        grammar.RuleAllowEvents,
	"Allow":               grammar.RuleAllow,
	"Supported":           grammar.RuleSupported,
	"Require":             grammar.RuleRequire,
	"Proxy-Require":       grammar.RuleProxyRequire,
	"Unsupported":         grammar.RuleUnsupported,
	"Subscription-State":  grammar.RuleSubscriptionState,
	"Session-Expires":     grammar.RuleSessionExpires,
	"Replaces":            grammar.RuleReplaces,
	"Reason":              grammar.RuleReason,
	"Subject":             grammar.RuleSubject,
	"User-Agent":          grammar.RuleUserAgent,
	"Server":              grammar.RuleServer,
	"Organization":        grammar.RuleOrganization,
	"WWW-Authenticate":    grammar.RuleWWWAuthenticate,
	"Proxy-Authenticate":  grammar.RuleProxyAuthenticate,
}

// FieldRule returns the start rule used for the header field value.
// Fields without a dedicated rule are parsed as header_value into [header.Extension].
func FieldRule(name string) (grammar.Rule, bool) {
	r, ok := fieldRules[header.CanonicName(name)]
	return r, ok
}

// Parser parses complete buffered SIP messages.
// The zero value is ready to use.
type Parser struct {
	// Lenient keeps a field whose value fails to parse instead of failing the message.
	Lenient bool
	// Logger receives warnings about skipped fields, nil disables logging.
	Logger *slog.Logger
	// GrammarOptions are passed to every grammar call.
	GrammarOptions []grammar.Option
}

// Parse parses a complete message with the default [Parser].
func Parse[T ~string | ~[]byte](data T) (*Message, error) {
	var p Parser
	return errtrace.Wrap2(p.parse(string(data)))
}

// Parse parses a complete message.
//
// The header section must end with an empty line. When the message has a Content-Length field,
// the body is cut to its value and a shorter body is an error, otherwise the rest of the input is the body.
func (p *Parser) Parse(data []byte) (*Message, error) {
	return errtrace.Wrap2(p.parse(string(data)))
}

func (p *Parser) parse(s string) (*Message, error) {
	sp := newSplitter()
	body, err := sp.split(s)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	startLine, err := grammar.Parse(sp.startLine, grammar.RuleRequestResponse, p.GrammarOptions...)
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrStartLine, err))
	}

	msg := &Message{StartLine: startLine, Fields: make([]Field, 0, len(sp.fields))}
	for _, rf := range sp.fields {
		f, err := p.parseField(rf)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		msg.Fields = append(msg.Fields, f)
	}

	if msg.Body, err = p.cutBody(msg, body); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return msg, nil
}

func (p *Parser) parseField(rf rawField) (Field, error) {
	f := Field{Name: header.CanonicName(rf.name), Raw: rf.value}
	rule, ok := fieldRules[f.Name]
	if !ok {
		rule = grammar.RuleHeaderValue
	}

	v, err := grammar.Parse(rf.value, rule, p.GrammarOptions...)
	if err != nil {
		ferr := &FieldError{Name: f.Name, Value: rf.value, Err: err}
		if !p.Lenient {
			return f, errtrace.Wrap(ferr)
		}
		log.Or(p.Logger).LogAttrs(context.Background(), slog.LevelWarn, "keep malformed header field",
			slog.String("field", string(f.Name)),
			slog.Any("value", log.StringValue(rf.value)),
			slog.Any("error", err),
		)
		f.Err = ferr
		return f, nil
	}
	if !ok {
		v = header.Extension{Name: rf.name, Value: v.(string)}
	}
	log.Or(p.Logger).LogAttrs(context.Background(), slog.LevelDebug, "parsed header field",
		slog.String("field", string(f.Name)),
		slog.Any("value", log.FmtValue(v, false)),
	)
	f.Value = v
	return f, nil
}

func (p *Parser) cutBody(msg *Message, body string) ([]byte, error) {
	lens := msg.Header("Content-Length")
	if len(lens) == 0 {
		return []byte(body), nil
	}

	n, _ := lens[0].(int)
	for _, v := range lens[1:] {
		if v != n {
			return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrContentLength, "conflicting Content-Length fields"))
		}
	}
	if n > len(body) {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrContentLength, "got %d body bytes, want %d", len(body), n))
	}
	if n < len(body) {
		log.Or(p.Logger).LogAttrs(context.Background(), slog.LevelDebug, "truncate body to Content-Length",
			slog.Int("content_length", n),
			slog.Int("body_len", len(body)),
		)
	}
	return []byte(body[:n]), nil
}

type rawField struct {
	name, value string
}

type splitState uint8

const (
	stateStartLine splitState = iota
	stateHeaders
	stateBody
)

type splitTrigger uint8

const (
	triggerLine splitTrigger = iota
	triggerFold
	triggerEmpty
)

// splitter walks the lines of the head: start line, header fields with continuation lines, empty line.
type splitter struct {
	fsm       *stateless.StateMachine
	startLine string
	fields    []rawField
}

func newSplitter() *splitter {
	s := &splitter{}
	s.fsm = stateless.NewStateMachine(stateStartLine)
	// empty lines before the start line are ignored
	s.fsm.Configure(stateStartLine).
		Ignore(triggerEmpty).
		Permit(triggerLine, stateHeaders)
	s.fsm.Configure(stateHeaders).
		OnEntryFrom(triggerLine, s.setStartLine).
		InternalTransition(triggerLine, s.addField).
		InternalTransition(triggerFold, s.foldField).
		Permit(triggerEmpty, stateBody)
	return s
}

// split feeds the lines to the state machine and returns the rest of the input after the empty line.
func (s *splitter) split(data string) (string, error) {
	for num := 1; s.fsm.MustState() != stateBody; num++ {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			return "", errtrace.Wrap(ErrIncomplete)
		}
		line := strings.TrimSuffix(data[:i], "\r")
		data = data[i+1:]

		if err := s.fsm.Fire(triggerOf(line), line); err != nil {
			return "", errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedLine, "line %d: %v", num, err))
		}
	}
	return data, nil
}

func triggerOf(line string) splitTrigger {
	switch {
	case line == "":
		return triggerEmpty
	case line[0] == ' ' || line[0] == '\t':
		return triggerFold
	default:
		return triggerLine
	}
}

func (s *splitter) setStartLine(_ context.Context, args ...any) error {
	s.startLine = args[0].(string)
	return nil
}

func (s *splitter) addField(_ context.Context, args ...any) error {
	line := args[0].(string)
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return errtrace.Wrap(errorutil.Errorf("no colon in %q", line))
	}
	name := util.TrimSP(line[:i])
	if !chars.IsToken(name) {
		return errtrace.Wrap(errorutil.Errorf("invalid field name %q", name))
	}
	s.fields = append(s.fields, rawField{name: name, value: util.TrimSP(line[i+1:])})
	return nil
}

func (s *splitter) foldField(_ context.Context, args ...any) error {
	if len(s.fields) == 0 {
		return errtrace.Wrap(errorutil.Errorf("continuation line before the first field"))
	}
	f := &s.fields[len(s.fields)-1]
	if cont := util.TrimSP(args[0].(string)); cont != "" {
		f.value += " " + cont
	}
	return nil
}
