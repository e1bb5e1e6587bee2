package driver

import (
	"wgslln/internal/decl"
	"wgslln/internal/diag"
	"wgslln/internal/lexer"
	"wgslln/internal/source"
	"wgslln/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Decls   []decl.Decl
	Bag     *diag.Bag
}

// Tokenize lexes one host file into token trees and recognises its
// declarations, without registering or composing anything.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	tokens := lexer.Tree(file, lexer.Options{Reporter: rep})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Decls:   decl.Parse(tokens, rep),
		Bag:     bag,
	}, nil
}
