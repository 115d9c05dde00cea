package header

import (
	"io"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/ioutil"
	"github.com/ghettovoice/sipabnf/internal/util"
)

// MediaType represents the Content-Type header field value.
// Type and Subtype are lower-cased.
type MediaType struct {
	Type    string
	Subtype string
	Params  Values
}

func (mt MediaType) RenderTo(w io.Writer) (num int, err error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(mt.Type, "/", mt.Subtype)
	cw.Call(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrParams(w, mt.Params)) })
	return errtrace.Wrap2(cw.Result())
}

func (mt MediaType) String() string { return stringOf(mt.RenderTo) }

// Equal compares media types, parameter values are compared case-insensitively unless quoted.
func (mt MediaType) Equal(val any) bool {
	var other MediaType
	switch v := val.(type) {
	case MediaType:
		other = v
	case *MediaType:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return util.EqFold(mt.Type, other.Type) &&
		util.EqFold(mt.Subtype, other.Subtype) &&
		len(mt.Params) == len(other.Params) &&
		compareHdrParams(mt.Params, other.Params, nil)
}

func (mt MediaType) Clone() MediaType {
	mt.Params = mt.Params.Clone()
	return mt
}

// Charset returns the unquoted charset parameter.
func (mt MediaType) Charset() (string, bool) { return lastParam(mt.Params, "charset") }

// ContentDisposition represents the Content-Disposition header field value.
type ContentDisposition struct {
	Type   string
	Params Values
}

func (cd ContentDisposition) RenderTo(w io.Writer) (num int, err error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(cd.Type)
	cw.Call(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrParams(w, cd.Params)) })
	return errtrace.Wrap2(cw.Result())
}

func (cd ContentDisposition) String() string { return stringOf(cd.RenderTo) }

func (cd ContentDisposition) Clone() ContentDisposition {
	cd.Params = cd.Params.Clone()
	return cd
}

// Handling returns the handling parameter, "optional" or "required" or an extension token.
func (cd ContentDisposition) Handling() (string, bool) { return cd.Params.Last("handling") }
