// Package driver runs a whole build: it loads host files, registers every
// exported fragment and composes every shader.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"wgslln/internal/compose"
	"wgslln/internal/decl"
	"wgslln/internal/diag"
	"wgslln/internal/lexer"
	"wgslln/internal/observ"
	"wgslln/internal/registry"
	"wgslln/internal/source"
	"wgslln/internal/token"
	"wgslln/internal/trace"
	"wgslln/internal/wgsl"
)

// BuiltinValidatorID names wgsl.Default in cache keys. It follows the naga
// version in go.mod.
const BuiltinValidatorID = "gogpu-naga/v0.19.0"

// Options configures Build.
type Options struct {
	Compose        compose.Options
	Jobs           int
	MaxDiagnostics int
	BaseDir        string

	// Validator defaults to wgsl.Default. ValidatorID keys the disk cache;
	// a custom validator without an ID is never cached.
	Validator   wgsl.Validator
	ValidatorID string
	// NoValidate accepts every composed text unchecked.
	NoValidate bool
	Cache      *DiskCache

	Observer PhaseObserver
	Timer    *observ.Timer
}

// Unit is one loaded host file.
type Unit struct {
	Path   string
	File   *source.File
	Tokens []token.Token
	Decls  []decl.Decl
	Bag    *diag.Bag
}

// Shader is the composition outcome of one `shader` declaration.
type Shader struct {
	Name   string
	Path   string
	Decl   decl.Decl
	Result compose.Result
	Bag    *diag.Bag
}

// OK reports whether the shader composed without errors.
func (s *Shader) OK() bool { return !s.Bag.HasErrors() }

// Result holds everything a build produced, in deterministic order: units
// in path order, shaders in declaration order.
type Result struct {
	FileSet   *source.FileSet
	Units     []*Unit
	Registry  *registry.Registry
	Shaders   []*Shader
	CacheHits int64
}

// Shader returns the shader declared as name.
func (r *Result) Shader(name string) (*Shader, bool) {
	for _, s := range r.Shaders {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// HasErrors reports whether any unit or shader has errors.
func (r *Result) HasErrors() bool {
	for _, u := range r.Units {
		if u.Bag.HasErrors() {
			return true
		}
	}
	for _, s := range r.Shaders {
		if s.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Diagnostics merges every bag into one sorted, deduplicated bag.
func (r *Result) Diagnostics(limit int) *diag.Bag {
	out := diag.NewBag(limit)
	for _, u := range r.Units {
		for _, d := range u.Bag.Items() {
			out.Add(d)
		}
	}
	for _, s := range r.Shaders {
		for _, d := range s.Bag.Items() {
			out.Add(d)
		}
	}
	out.Sort()
	out.Dedup()
	return out
}

// Build loads paths, registers every export and composes every shader.
// Findings are reported through the returned bags; the error is reserved
// for cancellation.
func Build(ctx context.Context, paths []string, opts *Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts == nil {
		opts = &Options{}
	}
	ctx, root := trace.Start(ctx, trace.ScopeDriver, "build")
	defer root.End("")

	res := &Result{
		FileSet:  source.NewFileSetWithBase(opts.BaseDir),
		Registry: registry.New(),
	}

	done := opts.Timer.Track(PhaseLex)
	if err := lexUnits(ctx, res, paths, opts); err != nil {
		done("cancelled")
		return res, err
	}
	done(fmt.Sprintf("%d files", len(res.Units)))

	done = opts.Timer.Track(PhaseRegister)
	jobs := registerUnits(ctx, res, opts)
	done(fmt.Sprintf("%d fragments", res.Registry.Len()))

	done = opts.Timer.Track(PhaseCompose)
	err := composeShaders(ctx, res, jobs, opts)
	done(fmt.Sprintf("%d shaders", len(res.Shaders)))
	return res, err
}

func jobLimit(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

// lexUnits loads every file sequentially and lexes them in parallel.
func lexUnits(ctx context.Context, res *Result, paths []string, opts *Options) error {
	ctx, span := trace.Start(ctx, trace.ScopePass, PhaseLex)
	defer span.End("")

	res.Units = make([]*Unit, len(paths))
	for i, path := range paths {
		u := &Unit{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
		id, err := res.FileSet.Load(path)
		if err != nil {
			// пустой виртуальный файл, чтобы у диагностики был путь
			id = res.FileSet.AddVirtual(path, nil)
			u.File = res.FileSet.Get(id)
			u.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: id}, fmt.Sprintf("failed to load %s: %v", path, err)))
			res.Units[i] = u
			continue
		}
		u.File = res.FileSet.Get(id)
		res.Units[i] = u
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(opts.Jobs, len(res.Units)))
	for _, u := range res.Units {
		if u.Bag.HasErrors() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			opts.Observer.emit(PhaseLex, u.Path, PhaseStart, 0)
			rep := diag.BagReporter{Bag: u.Bag}
			u.Tokens = lexer.Tree(u.File, lexer.Options{Reporter: rep})
			u.Decls = decl.Parse(u.Tokens, rep)
			opts.Observer.emit(PhaseLex, u.Path, endStatus(u.Bag), time.Since(start))
			return nil
		})
	}
	return g.Wait()
}

type shaderJob struct {
	unit *Unit
	decl decl.Decl
}

// registerUnits fills the registry before anything is composed. Files are
// visited in path order and declarations in source order, so the first
// registration of a name is stable across runs.
func registerUnits(ctx context.Context, res *Result, opts *Options) []shaderJob {
	_, span := trace.Start(ctx, trace.ScopePass, PhaseRegister)
	defer span.End("")

	var jobs []shaderJob
	shaders := make(map[string]source.Span)
	for _, u := range res.Units {
		start := time.Now()
		opts.Observer.emit(PhaseRegister, u.Path, PhaseStart, 0)
		rep := diag.BagReporter{Bag: u.Bag}
		for _, d := range u.Decls {
			if first, dup := shaders[d.Name]; dup {
				diag.ReportError(rep, diag.DeclDuplicateShader, d.NameSpan,
					fmt.Sprintf("shader %s is declared more than once", d.Name)).
					WithNote(first, "first declared here").
					Emit()
				continue
			}
			shaders[d.Name] = d.NameSpan
			jobs = append(jobs, shaderJob{unit: u, decl: d})

			if !d.Exported() {
				continue
			}
			registerExport(res.Registry, rep, d, opts)
		}
		opts.Observer.emit(PhaseRegister, u.Path, endStatus(u.Bag), time.Since(start))
	}
	span.WithExtra("fragments", strconv.Itoa(res.Registry.Len()))
	return jobs
}

func registerExport(reg *registry.Registry, rep diag.Reporter, d decl.Decl, opts *Options) {
	err := reg.Register(d.Export, d.Body, d.ExportSpan)
	var dup *registry.DuplicateError
	switch {
	case errors.As(err, &dup):
		diag.ReportError(rep, diag.CmpDuplicateName, d.ExportSpan,
			fmt.Sprintf("fragment %q is already registered", d.Export)).
			WithNote(dup.First, "first registered here").
			Emit()
		return
	case err != nil:
		diag.ReportError(rep, diag.CmpDuplicateName, d.ExportSpan, err.Error()).Emit()
		return
	}
	if decl.Declares(d.Body, d.Export) || compose.UsesDirectives(d.Body, opts.Compose) {
		return
	}
	diag.ReportWarning(rep, diag.DeclExportNameMismatch, d.ExportSpan,
		fmt.Sprintf("shader %s exports %q but declares no module-scope item of that name", d.Name, d.Export)).
		Emit()
}

func composeShaders(ctx context.Context, res *Result, jobs []shaderJob, opts *Options) error {
	ctx, pass := trace.Start(ctx, trace.ScopePass, PhaseCompose)
	defer pass.End("")

	validator := newValidator(opts)
	base := compose.Composer{
		Fragments: res.Registry,
		Options:   opts.Compose,
	}

	res.Shaders = make([]*Shader, len(jobs))
	for i, job := range jobs {
		res.Shaders[i] = &Shader{
			Name: job.decl.Name,
			Path: job.unit.Path,
			Decl: job.decl,
			Bag:  diag.NewBag(opts.MaxDiagnostics),
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(opts.Jobs, len(jobs)))
	for i := range jobs {
		sh := res.Shaders[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sctx, span := trace.StartShader(gctx, sh.Name)
			start := time.Now()
			opts.Observer.emit(PhaseCompose, sh.Path, PhaseStart, 0)

			c := base
			if validator != nil {
				c.Validator = observedValidator{next: validator, onStart: func() {
					opts.Observer.emit(PhaseValidate, sh.Path, PhaseStart, 0)
				}}
			}
			out, d := c.ComposeAs(sctx, sh.Decl.Export, sh.Decl.Body, sh.Decl.BodySpan)
			if d != nil {
				sh.Bag.Add(d)
				span.End("error")
				opts.Observer.emit(PhaseCompose, sh.Path, PhaseFailed, time.Since(start))
				return nil
			}
			sh.Result = out
			if out.Unchecked && validator != nil {
				sh.Bag.Add(diag.New(diag.SevInfo, diag.CmpPreprocessorText, sh.Decl.NameSpan,
					fmt.Sprintf("shader %s carries preprocessor directives; validation skipped", sh.Name)))
			}
			span.WithExtra("fragments", strconv.Itoa(len(out.Fragments))).End("")
			opts.Observer.emit(PhaseCompose, sh.Path, PhaseEnd, time.Since(start))
			return nil
		})
	}
	err := g.Wait()
	if v, ok := validator.(*cachedValidator); ok {
		res.CacheHits = v.hits.Load()
	}
	return err
}

func endStatus(bag *diag.Bag) PhaseStatus {
	if bag.HasErrors() {
		return PhaseFailed
	}
	return PhaseEnd
}
