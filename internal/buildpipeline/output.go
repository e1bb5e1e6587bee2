package buildpipeline

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"wgslln/internal/driver"
)

func writeOutputs(res *driver.Result, req *BuildRequest) ([]string, error) {
	var outputs []string
	if req.OutDir != "" {
		written, err := WriteShaders(req.OutDir, res.Shaders)
		outputs = append(outputs, written...)
		if err != nil {
			return outputs, err
		}
	}
	if req.GoFile != "" {
		pkg := req.GoPackage
		if pkg == "" {
			pkg = filepath.Base(filepath.Dir(req.GoFile))
		}
		src, err := GoSource(pkg, res.Shaders, req.BaseDir)
		if err != nil {
			return outputs, err
		}
		if err := writeFile(req.GoFile, src); err != nil {
			return outputs, err
		}
		outputs = append(outputs, req.GoFile)
	}
	return outputs, nil
}

// OutputName is the file name of a shader's .wgsl output.
func OutputName(shader string) string {
	return strings.ToLower(shader) + ".wgsl"
}

// WriteShaders writes one .wgsl file per composed shader into dir.
func WriteShaders(dir string, shaders []*driver.Shader) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	owners := make(map[string]string, len(shaders))
	var written []string
	for _, sh := range shaders {
		if !sh.OK() {
			continue
		}
		name := OutputName(sh.Name)
		if other, dup := owners[name]; dup {
			return written, fmt.Errorf("shaders %s and %s both write %s", other, sh.Name, name)
		}
		owners[name] = sh.Name
		path := filepath.Join(dir, name)
		if err := writeFile(path, []byte(sh.Result.Text)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// GoSource renders composed shaders as string constants of package pkg.
func GoSource(pkg string, shaders []*driver.Shader, baseDir string) ([]byte, error) {
	if !isGoIdent(pkg) {
		return nil, fmt.Errorf("invalid Go package name %q", pkg)
	}
	if baseDir != "" {
		if abs, err := filepath.Abs(baseDir); err == nil {
			baseDir = abs
		}
	}
	var buf bytes.Buffer
	buf.WriteString("// Code generated by wgslln. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)

	owners := make(map[string]string, len(shaders))
	buf.WriteString("const (\n")
	for _, sh := range shaders {
		if !sh.OK() {
			continue
		}
		ident := GoConstName(sh.Name)
		if other, dup := owners[ident]; dup {
			return nil, fmt.Errorf("shaders %s and %s both map to Go constant %s", other, sh.Name, ident)
		}
		owners[ident] = sh.Name
		fmt.Fprintf(&buf, "// %s is shader %s from %s.\n", ident, sh.Name, displayPath(sh.Path, baseDir))
		fmt.Fprintf(&buf, "%s = %s\n", ident, goString(sh.Result.Text))
	}
	buf.WriteString(")\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated Go: %w", err)
	}
	return src, nil
}

// GoConstName turns SIN_COS_SQUARED into SinCosSquared.
func GoConstName(shader string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(shader, func(r rune) bool { return r == '_' }) {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	name := b.String()
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		name = "Shader" + name
	}
	return name
}

func goString(text string) string {
	if strings.ContainsAny(text, "`\r") {
		return strconv.Quote(text)
	}
	return "`" + text + "`"
}

func isGoIdent(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
