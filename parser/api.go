// Package parser reads the s-expression surface syntax into ast.Expr and types.Type.
//
// Every node records its source range as go/token positions within a token.File,
// so errors can be reported as file:line:column through a token.FileSet.
package parser

import (
	"go/token"

	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/frontend/types"
	"github.com/schemewasm/swc/internal/log"
)

var logger = log.DefaultLogger.With("section", "parser")

func newParser(fset *token.FileSet, filename, src string) *parser {
	if fset == nil {
		fset = token.NewFileSet()
	}
	file := fset.AddFile(filename, -1, len(src))
	file.SetLinesForContent([]byte(src))
	return &parser{reader: newReader(file, src)}
}

// ParseExpr parses src, which must hold exactly one expression
func ParseExpr(src string) (ast.Expr, ilerr.IleError) {
	p := newParser(nil, "<expr>", src)
	s, err := p.readOne("an expression")
	if err != nil {
		return nil, err
	}
	return p.parseExpr(s)
}

// ParseType parses src, which must hold exactly one type
func ParseType(src string) (types.Type, ilerr.IleError) {
	p := newParser(nil, "<type>", src)
	s, err := p.readOne("a type")
	if err != nil {
		return nil, err
	}
	return p.parseType(s)
}

// ParseProgram parses every top-level form of the file named filename, with contents src.
// The file is added to fset, which may be nil.
func ParseProgram(fset *token.FileSet, filename, src string) ([]ast.Expr, ilerr.IleError) {
	p := newParser(fset, filename, src)
	data, err := p.readAll()
	if err != nil {
		return nil, err
	}
	forms, err := p.parseExprs(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed program", "file", filename, "forms", len(forms))
	return forms, nil
}

// ParseTypes parses every top-level type of the file named filename, with contents src
func ParseTypes(fset *token.FileSet, filename, src string) ([]types.Type, ilerr.IleError) {
	p := newParser(fset, filename, src)
	data, err := p.readAll()
	if err != nil {
		return nil, err
	}
	return p.parseTypes(data)
}
