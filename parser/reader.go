package parser

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/ilerr"
)

// sexp is one datum read from the source: an atom, a string literal, or a list
type sexp struct {
	ast.Range
	atom   string
	str    string
	isStr  bool
	isList bool
	list   []sexp
}

func (s sexp) String() string {
	switch {
	case s.isStr:
		return ast.QuoteString(s.str)
	case s.isList:
		parts := make([]string, 0, len(s.list))
		for _, elem := range s.list {
			parts = append(parts, elem.String())
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return s.atom
	}
}

func (s sexp) isAtom() bool {
	return !s.isList && !s.isStr
}

// head returns the atom a list starts with, if any
func (s sexp) head() (string, bool) {
	if !s.isList || len(s.list) == 0 || !s.list[0].isAtom() {
		return "", false
	}
	return s.list[0].atom, true
}

type reader struct {
	src  string
	off  int
	file *token.File
}

func newReader(file *token.File, src string) *reader {
	return &reader{src: src, file: file}
}

func (r *reader) pos(offset int) token.Pos {
	return r.file.Pos(offset)
}

func (r *reader) rangeOf(start, end int) ast.Range {
	return ast.Range{PosStart: r.pos(start), PosEnd: r.pos(end)}
}

func (r *reader) errorAt(start, end int, format string, args ...any) ilerr.IleError {
	return ilerr.New(ilerr.NewParse{
		Positioner:    r.rangeOf(start, end),
		ParserMessage: fmt.Sprintf(format, args...),
	})
}

// skipSpace moves past whitespace and comments
func (r *reader) skipSpace() {
	for r.off < len(r.src) {
		c, size := utf8.DecodeRuneInString(r.src[r.off:])
		switch {
		case c == ';':
			for r.off < len(r.src) && r.src[r.off] != '\n' {
				r.off++
			}
		case unicode.IsSpace(c):
			r.off += size
		default:
			return
		}
	}
}

func (r *reader) atEOF() bool {
	r.skipSpace()
	return r.off >= len(r.src)
}

// readAll reads every datum until the end of the source
func (r *reader) readAll() ([]sexp, ilerr.IleError) {
	var res []sexp
	for !r.atEOF() {
		s, err := r.read()
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}

// readOne reads exactly one datum, failing if anything follows it
func (r *reader) readOne(what string) (sexp, ilerr.IleError) {
	if r.atEOF() {
		return sexp{}, r.errorAt(r.off, r.off, "expected %s, found end of input", what)
	}
	s, err := r.read()
	if err != nil {
		return sexp{}, err
	}
	if !r.atEOF() {
		return sexp{}, r.errorAt(r.off, len(r.src), "unexpected input after %s", what)
	}
	return s, nil
}

func (r *reader) read() (sexp, ilerr.IleError) {
	r.skipSpace()
	if r.off >= len(r.src) {
		return sexp{}, r.errorAt(r.off, r.off, "unexpected end of input")
	}
	switch r.src[r.off] {
	case '(':
		return r.readList()
	case ')':
		return sexp{}, r.errorAt(r.off, r.off+1, "unexpected ')'")
	case '"':
		return r.readString()
	default:
		return r.readAtom(), nil
	}
}

func (r *reader) readList() (sexp, ilerr.IleError) {
	start := r.off
	r.off++ // (
	var elems []sexp
	for {
		r.skipSpace()
		if r.off >= len(r.src) {
			return sexp{}, r.errorAt(start, r.off, "unclosed '('")
		}
		if r.src[r.off] == ')' {
			r.off++
			return sexp{Range: r.rangeOf(start, r.off), isList: true, list: elems}, nil
		}
		elem, err := r.read()
		if err != nil {
			return sexp{}, err
		}
		elems = append(elems, elem)
	}
}

func (r *reader) readString() (sexp, ilerr.IleError) {
	start := r.off
	r.off++ // "
	sb := strings.Builder{}
	for r.off < len(r.src) {
		c, size := utf8.DecodeRuneInString(r.src[r.off:])
		r.off += size
		switch c {
		case '"':
			return sexp{Range: r.rangeOf(start, r.off), isStr: true, str: sb.String()}, nil
		case '\\':
			if r.off >= len(r.src) {
				return sexp{}, r.errorAt(start, r.off, "unterminated string literal")
			}
			escaped := r.src[r.off]
			r.off++
			switch escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"', '\\':
				sb.WriteByte(escaped)
			default:
				return sexp{}, r.errorAt(r.off-2, r.off, "unknown escape sequence '\\%c'", escaped)
			}
		default:
			sb.WriteRune(c)
		}
	}
	return sexp{}, r.errorAt(start, r.off, "unterminated string literal")
}

func (r *reader) readAtom() sexp {
	start := r.off
	for r.off < len(r.src) {
		c, size := utf8.DecodeRuneInString(r.src[r.off:])
		if unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' || c == ';' {
			break
		}
		r.off += size
	}
	return sexp{Range: r.rangeOf(start, r.off), atom: r.src[start:r.off]}
}
