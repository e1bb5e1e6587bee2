package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексика хост-файлов (*.wgsln)
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexUnclosedDelimiter        Code = 1004
	LexUnexpectedCloser         Code = 1005
	LexMismatchedCloser         Code = 1006

	// Объявления shader / @export
	DeclInfo               Code = 2000
	DeclUnexpectedToken    Code = 2001
	DeclExpectName         Code = 2002
	DeclExpectBody         Code = 2003
	DeclBadExport          Code = 2004
	DeclUnknownAttribute   Code = 2005
	DeclDuplicateShader    Code = 2006
	DeclExportNameMismatch Code = 2007

	// Композиция фрагментов
	CmpInfo             Code = 3000
	CmpUnknownFragment  Code = 3001
	CmpDuplicateName    Code = 3002
	CmpPreprocessorText Code = 3003
	CmpFailed           Code = 3004

	// Грамматика/валидация WGSL
	WgslInfo         Code = 4000
	WgslGrammarError Code = 4001

	// I/O
	IOLoadFileError  Code = 5001
	IOWriteFileError Code = 5002

	// Проект / манифест
	ProjInfo            Code = 6000
	ProjNoSources       Code = 6001
	ProjVersionMismatch Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexUnclosedDelimiter:        "Unclosed delimiter",
	LexUnexpectedCloser:         "Unexpected closing delimiter",
	LexMismatchedCloser:         "Mismatched closing delimiter",
	DeclInfo:                    "Declaration information",
	DeclUnexpectedToken:         "Unexpected token",
	DeclExpectName:              "Expected shader name",
	DeclExpectBody:              "Expected shader body",
	DeclBadExport:               "Malformed @export attribute",
	DeclUnknownAttribute:        "Unknown attribute",
	DeclDuplicateShader:         "Duplicate shader name",
	DeclExportNameMismatch:      "Export name not declared by body",
	CmpInfo:                     "Composition information",
	CmpUnknownFragment:          "Unknown fragment",
	CmpDuplicateName:            "Duplicate fragment name",
	CmpPreprocessorText:         "Validation skipped for preprocessor text",
	CmpFailed:                   "Composition failed",
	WgslInfo:                    "WGSL information",
	WgslGrammarError:            "WGSL error",
	IOLoadFileError:             "Failed to load file",
	IOWriteFileError:            "Failed to write file",
	ProjInfo:                    "Project information",
	ProjNoSources:               "No sources",
	ProjVersionMismatch:         "Tool version does not satisfy manifest",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("WGS%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
