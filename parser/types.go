package parser

import (
	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/frontend/types"
)

func (p *parser) parseType(s sexp) (types.Type, ilerr.IleError) {
	if s.isStr {
		return nil, p.errorf(s, "expected a type, found string %s", s)
	}
	if s.isAtom() {
		switch s.atom {
		case "int":
			return types.IntType, nil
		case "bool":
			return types.BoolType, nil
		case "string":
			return types.StrType, nil
		}
		if isNumeric(s.atom) {
			return nil, p.errorf(s, "expected a type, found %s", s.atom)
		}
		return types.TypeVar{Name: s.atom}, nil
	}

	head, ok := s.head()
	if !ok {
		return nil, p.errorf(s, "expected a type, found %s", s)
	}
	args := s.list[1:]
	switch head {
	case "list":
		if len(args) != 1 {
			return nil, p.errorf(s, "list type takes exactly one element type")
		}
		elem, err := p.parseType(args[0])
		if err != nil {
			return nil, err
		}
		return types.List{Elem: elem}, nil
	case "tuple":
		elems, err := p.parseTypes(args)
		if err != nil {
			return nil, err
		}
		return types.Tuple{Elems: elems}, nil
	case "record":
		fields := make([]types.Field, 0, len(args))
		for _, arg := range args {
			name, annot, err := p.parseAnnotated(arg, "record field")
			if err != nil {
				return nil, err
			}
			fields = append(fields, types.Field{Name: name, Type: annot})
		}
		return types.Record{Fields: fields}, nil
	case "->":
		if len(args) == 0 {
			return nil, p.errorf(s, "function type needs a return type")
		}
		all, err := p.parseTypes(args)
		if err != nil {
			return nil, err
		}
		return types.Func{Params: all[:len(all)-1], Ret: all[len(all)-1]}, nil
	case "exists":
		return p.parseExists(s)
	default:
		return nil, p.errorf(s, "unknown type constructor %s", head)
	}
}

func (p *parser) parseTypes(ss []sexp) ([]types.Type, ilerr.IleError) {
	res := make([]types.Type, 0, len(ss))
	for _, s := range ss {
		t, err := p.parseType(s)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}

func (p *parser) parseExists(s sexp) (types.Exists, ilerr.IleError) {
	if head, _ := s.head(); head != "exists" || len(s.list) != 3 {
		return types.Exists{}, p.errorf(s, "expected an existential type (exists X T), found %s", s)
	}
	name, err := p.parseName(s.list[1], "type variable")
	if err != nil {
		return types.Exists{}, err
	}
	body, err := p.parseType(s.list[2])
	if err != nil {
		return types.Exists{}, err
	}
	return types.Exists{Var: name, Body: body}, nil
}

// parseAnnotated parses the (name : T) syntax of parameters and record fields
func (p *parser) parseAnnotated(s sexp, what string) (string, types.Type, ilerr.IleError) {
	if !s.isList || len(s.list) != 3 || !s.list[1].isAtom() || s.list[1].atom != ":" {
		return "", nil, p.errorf(s, "expected %s of the form (name : type), found %s", what, s)
	}
	name, err := p.parseName(s.list[0], what+" name")
	if err != nil {
		return "", nil, err
	}
	t, err := p.parseType(s.list[2])
	if err != nil {
		return "", nil, err
	}
	return name, t, nil
}
