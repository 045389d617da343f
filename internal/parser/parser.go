// Copyright 2024 The Nixeval Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parser builds an internal/ast expression tree from Nix-language
// source text. The core evaluator treats the AST as an externally supplied
// fixed point (spec.md §1); this package is the concrete producer of that
// fixed point, needed to make cmd/nix-eval usable from real source text
// rather than ASTs built by hand.
//
// It is a hand-written recursive-descent parser with an embedded scanner,
// in the structural spirit of cue/parser and cue/scanner but for a very
// different grammar. It does not support Nix's indented ('' ... '') string
// literals or URI atom literals; both are easy to add but add little value
// for an evaluator test harness.
package parser

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"nixlang.org/go/internal/ast"
	"nixlang.org/go/token"
)

// ParseExpr parses src as a single Nix expression.
func ParseExpr(src []byte) (ast.Expr, error) {
	p := &Parser{src: src}
	p.next()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok != tEOF {
		return nil, p.errorf("unexpected trailing input at offset %d", p.tokStart)
	}
	return e, nil
}

type tokKind int8

const (
	tEOF tokKind = iota
	tIdent
	tInt
	tQuote // the opening " of a string literal; the body is scanned by hand
	tPathLit
	tSPath // <...>
	tLParen
	tRParen
	tLBrace
	tRBrace
	tLBrack
	tRBrack
	tSemi
	tComma
	tColon
	tDot
	tEllipsis
	tQMark
	tAt
	tBang
	tEqual
	tDollarBrace // ${ outside a string literal, e.g. in a.${x} or {${x} = 1;}
	tPlus
	tMinus
	tStar
	tSlash
	tSlashSlash
	tPlusPlus
	tEqEq
	tNotEq
	tLt
	tLte
	tGt
	tGte
	tAndAnd
	tOrOr
	tImpl
)

// Parser is both the scanner and the recursive-descent parser: it holds the
// source text directly so that string-literal scanning can fall in and out
// of the normal token stream around ${...} interpolations.
type Parser struct {
	src []byte

	offset int // byte offset of the next unscanned byte

	tok      tokKind
	tokText  string
	tokStart int
	tokEnd   int
}

type state struct {
	offset   int
	tok      tokKind
	tokText  string
	tokStart int
	tokEnd   int
}

func (p *Parser) save() state {
	return state{p.offset, p.tok, p.tokText, p.tokStart, p.tokEnd}
}

func (p *Parser) restore(s state) {
	p.offset, p.tok, p.tokText, p.tokStart, p.tokEnd = s.offset, s.tok, s.tokText, s.tokStart, s.tokEnd
}

func (p *Parser) pos(off int) token.Pos { return token.Pos(off + 1) }

func (p *Parser) tokPos() token.Pos { return p.pos(p.tokStart) }

func (p *Parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("parse error at offset %d: %s", p.tokStart, fmt.Sprintf(format, args...))
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '\'' || c == '-'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isPathChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.' || c == '_' || c == '+' || c == '-' || c == '/'
}

var keywords = map[string]bool{
	"if": true, "then": true, "else": true, "let": true, "in": true,
	"with": true, "assert": true, "rec": true, "inherit": true,
	"true": true, "false": true, "null": true, "or": true,
}

// next scans exactly one token starting at p.offset (after skipping
// whitespace and comments) and stores it as the current token. After next
// returns, p.offset is the end of the just-scanned token: nothing has been
// pre-skipped past it, so code that needs to fall out of the token stream
// (string interpolation) can resume raw scanning from p.offset directly.
func (p *Parser) next() {
	p.skipSpaceAndComments()
	start := p.offset
	if start >= len(p.src) {
		p.tok, p.tokText, p.tokStart, p.tokEnd = tEOF, "", start, start
		return
	}
	c := p.src[start]
	switch {
	case isIdentStart(c):
		i := start + 1
		for i < len(p.src) && isIdentCont(p.src[i]) {
			i++
		}
		p.setTok(tIdent, start, i)
	case isDigit(c):
		i := start + 1
		for i < len(p.src) && isDigit(p.src[i]) {
			i++
		}
		p.setTok(tInt, start, i)
	case c == '"':
		p.setTok(tQuote, start, start+1)
	case c == '.':
		if start+1 < len(p.src) && p.src[start+1] == '.' && start+2 < len(p.src) && p.src[start+2] == '.' {
			p.setTok(tEllipsis, start, start+3)
			return
		}
		if start+1 < len(p.src) && p.src[start+1] == '/' {
			p.scanPath(start)
			return
		}
		p.setTok(tDot, start, start+1)
	case c == '/':
		if start+1 < len(p.src) && p.src[start+1] == '/' {
			p.setTok(tSlashSlash, start, start+2)
			return
		}
		if start+1 < len(p.src) && isPathChar(p.src[start+1]) {
			p.scanPath(start)
			return
		}
		p.setTok(tSlash, start, start+1)
	case c == '~':
		if start+1 < len(p.src) && p.src[start+1] == '/' {
			p.scanPath(start)
			return
		}
		p.setTok(tEOF, start, start+1) // bare ~ is not meaningful here
	case c == '<':
		if j, ok := p.scanEnvPathEnd(start); ok {
			p.setTok(tSPath, start, j)
			return
		}
		if start+1 < len(p.src) && p.src[start+1] == '=' {
			p.setTok(tLte, start, start+2)
			return
		}
		p.setTok(tLt, start, start+1)
	case c == '>':
		if start+1 < len(p.src) && p.src[start+1] == '=' {
			p.setTok(tGte, start, start+2)
			return
		}
		p.setTok(tGt, start, start+1)
	case c == '=':
		if start+1 < len(p.src) && p.src[start+1] == '=' {
			p.setTok(tEqEq, start, start+2)
			return
		}
		p.setTok(tEqual, start, start+1)
	case c == '!':
		if start+1 < len(p.src) && p.src[start+1] == '=' {
			p.setTok(tNotEq, start, start+2)
			return
		}
		p.setTok(tBang, start, start+1)
	case c == '&':
		if start+1 < len(p.src) && p.src[start+1] == '&' {
			p.setTok(tAndAnd, start, start+2)
			return
		}
		p.setTok(tEOF, start, start+1)
	case c == '|':
		if start+1 < len(p.src) && p.src[start+1] == '|' {
			p.setTok(tOrOr, start, start+2)
			return
		}
		p.setTok(tEOF, start, start+1)
	case c == '-':
		if start+1 < len(p.src) && p.src[start+1] == '>' {
			p.setTok(tImpl, start, start+2)
			return
		}
		p.setTok(tMinus, start, start+1)
	case c == '+':
		if start+1 < len(p.src) && p.src[start+1] == '+' {
			p.setTok(tPlusPlus, start, start+2)
			return
		}
		p.setTok(tPlus, start, start+1)
	case c == '*':
		p.setTok(tStar, start, start+1)
	case c == '(':
		p.setTok(tLParen, start, start+1)
	case c == ')':
		p.setTok(tRParen, start, start+1)
	case c == '{':
		p.setTok(tLBrace, start, start+1)
	case c == '}':
		p.setTok(tRBrace, start, start+1)
	case c == '[':
		p.setTok(tLBrack, start, start+1)
	case c == ']':
		p.setTok(tRBrack, start, start+1)
	case c == ';':
		p.setTok(tSemi, start, start+1)
	case c == ',':
		p.setTok(tComma, start, start+1)
	case c == ':':
		p.setTok(tColon, start, start+1)
	case c == '?':
		p.setTok(tQMark, start, start+1)
	case c == '@':
		p.setTok(tAt, start, start+1)
	case c == '$':
		if start+1 < len(p.src) && p.src[start+1] == '{' {
			p.setTok(tDollarBrace, start, start+2)
			return
		}
		p.setTok(tEOF, start, start+1)
	default:
		p.setTok(tEOF, start, start+1)
	}
}

func (p *Parser) setTok(k tokKind, start, end int) {
	p.tok, p.tokStart, p.tokEnd = k, start, end
	p.tokText = string(p.src[start:end])
	p.offset = end
}

// scanPath consumes a maximal run of path characters starting at start,
// which must already look like the beginning of a path literal.
func (p *Parser) scanPath(start int) {
	i := start
	for i < len(p.src) && isPathChar(p.src[i]) {
		i++
	}
	p.setTok(tPathLit, start, i)
}

// scanEnvPathEnd reports whether a <...> env-path token starts at start,
// returning the offset just past the closing '>'.
func (p *Parser) scanEnvPathEnd(start int) (int, bool) {
	if start+1 >= len(p.src) || !(isIdentStart(p.src[start+1]) || isDigit(p.src[start+1])) {
		return 0, false
	}
	i := start + 1
	for i < len(p.src) && (isPathChar(p.src[i]) || p.src[i] == '-') {
		i++
	}
	if i < len(p.src) && p.src[i] == '>' {
		return i + 1, true
	}
	return 0, false
}

func (p *Parser) skipSpaceAndComments() {
	for p.offset < len(p.src) {
		c := p.src[p.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.offset++
		case c == '#':
			for p.offset < len(p.src) && p.src[p.offset] != '\n' {
				p.offset++
			}
		case c == '/' && p.offset+1 < len(p.src) && p.src[p.offset+1] == '*':
			p.offset += 2
			for p.offset+1 < len(p.src) && !(p.src[p.offset] == '*' && p.src[p.offset+1] == '/') {
				p.offset++
			}
			p.offset += 2
			if p.offset > len(p.src) {
				p.offset = len(p.src)
			}
		default:
			return
		}
	}
}

func (p *Parser) expect(k tokKind, what string) error {
	if p.tok != k {
		return p.errorf("expected %s", what)
	}
	return nil
}

// ---- expression grammar ----

func (p *Parser) parseExpr() (ast.Expr, error) {
	if p.tok == tIdent {
		switch p.tokText {
		case "if":
			return p.parseIf()
		case "let":
			return p.parseLet()
		case "with":
			return p.parseWith()
		case "assert":
			return p.parseAssert()
		}
	}
	return p.parseImpl()
}

func (p *Parser) parseIf() (ast.Expr, error) {
	pos := p.tokPos()
	p.next() // "if"
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	p.next()
	thenE, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	p.next()
	elseE, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.If{TokPos: pos, Cond: cond, Then: thenE, Else: elseE}, nil
}

func (p *Parser) expectKeyword(kw string) error {
	if p.tok != tIdent || p.tokText != kw {
		return p.errorf("expected %q", kw)
	}
	return nil
}

func (p *Parser) parseLet() (ast.Expr, error) {
	pos := p.tokPos()
	p.next() // "let"
	bindings, err := p.parseBindingsUntil(func() bool {
		return p.tok == tIdent && p.tokText == "in"
	})
	if err != nil {
		return nil, err
	}
	p.next() // "in"
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Let{TokPos: pos, Bindings: bindings, Body: body}, nil
}

func (p *Parser) parseWith() (ast.Expr, error) {
	pos := p.tokPos()
	p.next() // "with"
	scope, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tSemi, "';'"); err != nil {
		return nil, err
	}
	p.next()
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.With{TokPos: pos, Scope: scope, Body: body}, nil
}

func (p *Parser) parseAssert() (ast.Expr, error) {
	pos := p.tokPos()
	p.next() // "assert"
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tSemi, "';'"); err != nil {
		return nil, err
	}
	p.next()
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Assert{TokPos: pos, Cond: cond, Body: body}, nil
}

// binOpLevel is one precedence tier of left-to-right (or right-to-left)
// binary operator parsing.
type binOpLevel struct {
	ops      map[tokKind]ast.BinaryOp
	rightAssoc bool
	next     func(*Parser) (ast.Expr, error)
}

func (p *Parser) parseImpl() (ast.Expr, error) { return p.parseBin(implLevel) }

func (p *Parser) parseBin(lv binOpLevel) (ast.Expr, error) {
	x, err := lv.next(p)
	if err != nil {
		return nil, err
	}
	if lv.rightAssoc {
		if op, ok := lv.ops[p.tok]; ok {
			pos := p.tokPos()
			p.next()
			y, err := p.parseBin(lv)
			if err != nil {
				return nil, err
			}
			return &ast.Binary{TokPos: pos, Op: op, X: x, Y: y}, nil
		}
		return x, nil
	}
	for {
		op, ok := lv.ops[p.tok]
		if !ok {
			return x, nil
		}
		pos := p.tokPos()
		p.next()
		y, err := lv.next(p)
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{TokPos: pos, Op: op, X: x, Y: y}
	}
}

var implLevel, orLevel, andLevel, eqLevel, cmpLevel, updateLevel, addLevel, mulLevel binOpLevel

func init() {
	orLevel = binOpLevel{ops: map[tokKind]ast.BinaryOp{tOrOr: ast.NOr}, next: (*Parser).parseOrFn}
	andLevel = binOpLevel{ops: map[tokKind]ast.BinaryOp{tAndAnd: ast.NAnd}, next: (*Parser).parseAndFn}
	eqLevel = binOpLevel{ops: map[tokKind]ast.BinaryOp{tEqEq: ast.NEq, tNotEq: ast.NNEq}, next: (*Parser).parseEqFn}
	cmpLevel = binOpLevel{ops: map[tokKind]ast.BinaryOp{tLt: ast.NLt, tLte: ast.NLte, tGt: ast.NGt, tGte: ast.NGte}, next: (*Parser).parseCmpFn}
	updateLevel = binOpLevel{ops: map[tokKind]ast.BinaryOp{tSlashSlash: ast.NUpdate}, rightAssoc: true, next: (*Parser).parseUpdateFn}
	addLevel = binOpLevel{ops: map[tokKind]ast.BinaryOp{tPlus: ast.NPlus, tMinus: ast.NMinus}, next: (*Parser).parseAddFn}
	mulLevel = binOpLevel{ops: map[tokKind]ast.BinaryOp{tStar: ast.NMult, tSlash: ast.NDiv}, next: (*Parser).parseMulFn}
	implLevel = binOpLevel{ops: map[tokKind]ast.BinaryOp{tImpl: ast.NImpl}, rightAssoc: true, next: (*Parser).parseOrLevelFn}
}

func (p *Parser) parseOrLevelFn() (ast.Expr, error) { return p.parseBin(orLevel) }
func (p *Parser) parseOrFn() (ast.Expr, error)      { return p.parseBin(andLevel) }
func (p *Parser) parseAndFn() (ast.Expr, error)     { return p.parseBin(eqLevel) }
func (p *Parser) parseEqFn() (ast.Expr, error)      { return p.parseBin(cmpLevel) }
func (p *Parser) parseCmpFn() (ast.Expr, error)     { return p.parseBin(updateLevel) }
func (p *Parser) parseUpdateFn() (ast.Expr, error)  { return p.parseBin(addLevel) }
func (p *Parser) parseAddFn() (ast.Expr, error)     { return p.parseBin(mulLevel) }

func (p *Parser) parseMulFn() (ast.Expr, error) {
	x, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for p.tok == tStar || p.tok == tSlash {
		op := ast.NMult
		if p.tok == tSlash {
			op = ast.NDiv
		}
		pos := p.tokPos()
		p.next()
		y, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{TokPos: pos, Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) parseConcat() (ast.Expr, error) {
	x, err := p.parseHasAttr()
	if err != nil {
		return nil, err
	}
	if p.tok == tPlusPlus {
		pos := p.tokPos()
		p.next()
		y, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{TokPos: pos, Op: ast.NConcat, X: x, Y: y}, nil
	}
	return x, nil
}

func (p *Parser) parseHasAttr() (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.tok == tQMark {
		pos := p.tokPos()
		p.next()
		sel, err := p.parseOneSelector()
		if err != nil {
			return nil, err
		}
		return &ast.HasAttr{TokPos: pos, X: x, Path: []ast.Selector{sel}}, nil
	}
	return x, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.tok {
	case tMinus:
		pos := p.tokPos()
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{TokPos: pos, Op: ast.NNeg, X: x}, nil
	case tBang:
		pos := p.tokPos()
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{TokPos: pos, Op: ast.NNot, X: x}, nil
	}
	return p.parseApp()
}

// canStartArg reports whether the current token can begin another
// application argument or list element (select-level primary), stopping
// before statement keywords that terminate an enclosing construct.
func (p *Parser) canStartArg() bool {
	switch p.tok {
	case tIdent:
		switch p.tokText {
		case "then", "else", "in", "or":
			return false
		}
		return true
	case tInt, tQuote, tPathLit, tSPath, tLBrack, tLBrace, tLParen:
		return true
	}
	return false
}

func (p *Parser) parseApp() (ast.Expr, error) {
	x, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	for p.canStartArg() {
		pos := p.tokPos()
		arg, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		x = &ast.App{TokPos: pos, Fun: x, Arg: arg}
	}
	return x, nil
}

func (p *Parser) parseSelect() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok == tDot {
		var path []ast.Selector
		for p.tok == tDot {
			p.next()
			sel, err := p.parseOneSelector()
			if err != nil {
				return nil, err
			}
			path = append(path, sel)
		}
		var def ast.Expr
		if p.tok == tIdent && p.tokText == "or" {
			p.next()
			def, err = p.parseSelect()
			if err != nil {
				return nil, err
			}
		}
		return &ast.Select{TokPos: x.Pos(), X: x, Path: path, Default: def}, nil
	}
	return x, nil
}

func (p *Parser) parseOneSelector() (ast.Selector, error) {
	switch p.tok {
	case tIdent:
		if keywords[p.tokText] {
			return ast.Selector{}, p.errorf("keyword %q cannot be used as an attribute name", p.tokText)
		}
		name := p.tokText
		p.next()
		return ast.Selector{Name: name}, nil
	case tQuote:
		str, err := p.parseStringLiteral()
		if err != nil {
			return ast.Selector{}, err
		}
		if len(str.Parts) <= 1 && (len(str.Parts) == 0 || str.Parts[0].Expr == nil) {
			text := ""
			if len(str.Parts) == 1 {
				text = str.Parts[0].Text
			}
			return ast.Selector{Name: text}, nil
		}
		return ast.Selector{Dynamic: str}, nil
	case tDollarBrace:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return ast.Selector{}, err
		}
		if err := p.expect(tRBrace, "'}'"); err != nil {
			return ast.Selector{}, err
		}
		p.next()
		return ast.Selector{Dynamic: e}, nil
	}
	return ast.Selector{}, p.errorf("expected an attribute name")
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.tok {
	case tIdent:
		return p.parseIdentPrimary()
	case tInt:
		return p.parseIntLit()
	case tQuote:
		return p.parseStringLiteral()
	case tPathLit:
		pos, text := p.tokPos(), p.tokText
		p.next()
		return &ast.LiteralPath{TokPos: pos, Path: text}, nil
	case tSPath:
		pos, text := p.tokPos(), p.tokText
		p.next()
		// text is "<name>"; strip the angle brackets.
		name := text[1 : len(text)-1]
		return &ast.EnvPath{TokPos: pos, Name: name}, nil
	case tLBrack:
		return p.parseList()
	case tLBrace:
		return p.parseBraceExpr()
	case tLParen:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tRParen, "')'"); err != nil {
			return nil, err
		}
		p.next()
		return e, nil
	}
	return nil, p.errorf("unexpected token")
}

func (p *Parser) parseIntLit() (ast.Expr, error) {
	pos, text := p.tokPos(), p.tokText
	p.next()
	d, _, err := new(apd.Decimal).SetString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid integer literal %q: %w", text, err)
	}
	return &ast.Constant{TokPos: pos, Value: ast.Atom{Kind: ast.IntAtom, Int: d}}, nil
}

func (p *Parser) parseIdentPrimary() (ast.Expr, error) {
	pos := p.tokPos()
	switch p.tokText {
	case "true":
		p.next()
		return &ast.Constant{TokPos: pos, Value: ast.Atom{Kind: ast.BoolAtom, Bool: true}}, nil
	case "false":
		p.next()
		return &ast.Constant{TokPos: pos, Value: ast.Atom{Kind: ast.BoolAtom, Bool: false}}, nil
	case "null":
		p.next()
		return &ast.Constant{TokPos: pos, Value: ast.NullAtomValue}, nil
	case "rec":
		p.next()
		if err := p.expect(tLBrace, "'{'"); err != nil {
			return nil, err
		}
		bindings, err := p.parseSetBody()
		if err != nil {
			return nil, err
		}
		return &ast.RecSet{TokPos: pos, Bindings: bindings}, nil
	case "if", "let", "with", "assert":
		return p.parseExpr()
	case "then", "else", "in", "inherit":
		return nil, p.errorf("unexpected keyword %q", p.tokText)
	}

	name := p.tokText
	p.next()

	if p.tok == tColon {
		p.next()
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Abs{TokPos: pos, Params: ast.Params{Kind: ast.NamedParam, Name: name}, Body: body}, nil
	}
	if p.tok == tAt {
		p.next()
		if p.tok == tLBrace {
			p.next()
			fields, variadic, err := p.parseFormalsAfterBrace()
			if err == nil {
				if err2 := p.expect(tColon, "':'"); err2 == nil {
					p.next()
					body, err3 := p.parseExpr()
					if err3 != nil {
						return nil, err3
					}
					kind := ast.FixedParamSet
					if variadic {
						kind = ast.VariadicParamSet
					}
					return &ast.Abs{TokPos: pos, Params: ast.Params{Kind: kind, Fields: fields, SelfName: name}, Body: body}, nil
				}
			}
		}
		return nil, p.errorf("expected a parameter set after '@'")
	}

	return &ast.Sym{TokPos: pos, Name: name}, nil
}

// parseBraceExpr disambiguates a '{' ... '}' lambda parameter set from a
// plain attribute set literal by speculatively trying the formals grammar
// and backtracking on failure (the same ambiguity the real Nix grammar
// resolves with unbounded lookahead).
func (p *Parser) parseBraceExpr() (ast.Expr, error) {
	pos := p.tokPos()
	saved := p.save()
	p.next() // '{'

	fields, variadic, err := p.parseFormalsAfterBrace()
	if err == nil {
		selfName := ""
		if p.tok == tAt {
			p.next()
			if p.tok == tIdent && !keywords[p.tokText] {
				selfName = p.tokText
				p.next()
			} else {
				err = p.errorf("expected a name after '@'")
			}
		}
		if err == nil && p.tok == tColon {
			p.next()
			body, berr := p.parseExpr()
			if berr != nil {
				return nil, berr
			}
			kind := ast.FixedParamSet
			if variadic {
				kind = ast.VariadicParamSet
			}
			return &ast.Abs{TokPos: pos, Params: ast.Params{Kind: kind, Fields: fields, SelfName: selfName}, Body: body}, nil
		}
	}

	p.restore(saved)
	bindings, err := p.parseSetBody()
	if err != nil {
		return nil, err
	}
	return &ast.Set{TokPos: pos, Bindings: bindings}, nil
}

// parseFormalsAfterBrace assumes the opening '{' has already been consumed.
// On success p.tok is the token right after the matching '}'.
func (p *Parser) parseFormalsAfterBrace() ([]ast.Field, bool, error) {
	var fields []ast.Field
	if p.tok == tRBrace {
		p.next()
		return fields, false, nil
	}
	for {
		if p.tok == tEllipsis {
			p.next()
			if p.tok != tRBrace {
				return nil, false, p.errorf("expected '}' after '...'")
			}
			p.next()
			return fields, true, nil
		}
		if p.tok != tIdent || keywords[p.tokText] {
			return nil, false, p.errorf("expected a parameter name")
		}
		name := p.tokText
		p.next()
		var def ast.Expr
		if p.tok == tQMark {
			p.next()
			e, err := p.parseExpr()
			if err != nil {
				return nil, false, err
			}
			def = e
		}
		fields = append(fields, ast.Field{Name: name, Default: def})
		switch p.tok {
		case tComma:
			p.next()
			continue
		case tRBrace:
			p.next()
			return fields, false, nil
		default:
			return nil, false, p.errorf("expected ',' or '}' in parameter set")
		}
	}
}

// parseSetBody assumes p.tok == tLBrace and consumes through the matching
// '}'.
func (p *Parser) parseSetBody() ([]ast.Binding, error) {
	p.next() // '{'
	bindings, err := p.parseBindingsUntil(func() bool { return p.tok == tRBrace })
	if err != nil {
		return nil, err
	}
	p.next() // '}'
	return bindings, nil
}

func (p *Parser) parseBindingsUntil(stop func() bool) ([]ast.Binding, error) {
	var bindings []ast.Binding
	for !stop() {
		if p.tok == tEOF {
			return nil, p.errorf("unexpected end of input")
		}
		b, err := p.parseBinding()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func (p *Parser) parseBinding() (ast.Binding, error) {
	pos := p.tokPos()
	if p.tok == tIdent && p.tokText == "inherit" {
		p.next()
		var source ast.Expr
		if p.tok == tLParen {
			p.next()
			e, err := p.parseExpr()
			if err != nil {
				return ast.Binding{}, err
			}
			if err := p.expect(tRParen, "')'"); err != nil {
				return ast.Binding{}, err
			}
			p.next()
			source = e
		}
		var names []string
		for p.tok == tIdent && !keywords[p.tokText] {
			names = append(names, p.tokText)
			p.next()
		}
		if err := p.expect(tSemi, "';'"); err != nil {
			return ast.Binding{}, err
		}
		p.next()
		return ast.Binding{Kind: ast.InheritBinding, Pos: pos, Names: names, Source: source}, nil
	}

	first, err := p.parseOneSelector()
	if err != nil {
		return ast.Binding{}, err
	}
	path := []ast.Selector{first}
	for p.tok == tDot {
		p.next()
		sel, err := p.parseOneSelector()
		if err != nil {
			return ast.Binding{}, err
		}
		path = append(path, sel)
	}
	if err := p.expect(tEqual, "'='"); err != nil {
		return ast.Binding{}, err
	}
	p.next()
	value, err := p.parseExpr()
	if err != nil {
		return ast.Binding{}, err
	}
	if err := p.expect(tSemi, "';'"); err != nil {
		return ast.Binding{}, err
	}
	p.next()
	return ast.Binding{Kind: ast.NamedVarBinding, Pos: pos, Path: path, Value: value}, nil
}

func (p *Parser) parseList() (ast.Expr, error) {
	pos := p.tokPos()
	p.next() // '['
	var elems []ast.Expr
	for p.tok != tRBrack {
		if p.tok == tEOF {
			return nil, p.errorf("unexpected end of input in list")
		}
		e, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	p.next() // ']'
	return &ast.List{TokPos: pos, Elems: elems}, nil
}

// parseStringLiteral assumes p.tok == tQuote and scans the string body
// directly off the source bytes, falling into the ordinary token stream for
// each ${...} interpolation and resuming raw scanning right after its
// closing '}'.
func (p *Parser) parseStringLiteral() (*ast.Str, error) {
	pos := p.tokPos()
	var parts []ast.StrPart
	var buf []byte
	flush := func() {
		if len(buf) > 0 {
			parts = append(parts, ast.StrPart{Text: string(buf)})
			buf = nil
		}
	}
	for {
		if p.offset >= len(p.src) {
			return nil, p.errorf("unterminated string literal")
		}
		c := p.src[p.offset]
		switch {
		case c == '"':
			p.offset++
			flush()
			if len(parts) == 0 {
				parts = append(parts, ast.StrPart{Text: ""})
			}
			p.next()
			return &ast.Str{TokPos: pos, Parts: parts}, nil
		case c == '\\':
			p.offset++
			if p.offset >= len(p.src) {
				return nil, p.errorf("unterminated escape in string literal")
			}
			e := p.src[p.offset]
			p.offset++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			default:
				buf = append(buf, e)
			}
		case c == '$' && p.offset+1 < len(p.src) && p.src[p.offset+1] == '{':
			flush()
			p.offset += 2
			p.next()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tRBrace, "'}' to close string interpolation"); err != nil {
				return nil, err
			}
			parts = append(parts, ast.StrPart{Expr: e})
		default:
			buf = append(buf, c)
			p.offset++
		}
	}
}
