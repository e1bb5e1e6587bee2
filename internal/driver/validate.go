package driver

import (
	"encoding/hex"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"wgslln/internal/project"
	"wgslln/internal/wgsl"
)

// newValidator picks the validator for a build; nil disables validation.
func newValidator(opts *Options) wgsl.Validator {
	if opts.NoValidate {
		return nil
	}
	v, id := opts.Validator, opts.ValidatorID
	if v == nil {
		v, id = wgsl.Default, BuiltinValidatorID
	}
	if id == "" {
		return v
	}
	return &cachedValidator{id: id, next: v, cache: opts.Cache}
}

// cachedValidator remembers verdicts on disk and validates identical texts
// that arrive at the same time only once.
type cachedValidator struct {
	id    string
	next  wgsl.Validator
	cache *DiskCache
	group singleflight.Group
	hits  atomic.Int64
}

func (v *cachedValidator) Validate(text string) error {
	sum := project.Sum(text)
	key := project.Combine(project.Sum(v.id), sum)
	_, err, _ := v.group.Do(hex.EncodeToString(key[:]), func() (any, error) {
		var p DiskPayload
		if ok, getErr := v.cache.Get(key, &p); getErr == nil && ok && p.Validator == v.id && p.TextHash == sum {
			v.hits.Add(1)
			return nil, p.verdict()
		}
		verr := v.next.Validate(text)
		p = DiskPayload{Validator: v.id, TextHash: sum, Accepted: verr == nil}
		if verr != nil {
			var werr *wgsl.Error
			if !errors.As(verr, &werr) {
				// без смещения вердикт не переиспользовать
				return nil, verr
			}
			p.Message, p.Offset = werr.Message, werr.Offset
		}
		// сбой записи кэша не влияет на результат
		_ = v.cache.Put(key, &p)
		return nil, verr
	})
	return err
}

func (p *DiskPayload) verdict() error {
	if p.Accepted {
		return nil
	}
	return &wgsl.Error{Message: p.Message, Offset: p.Offset}
}

// observedValidator reports the start of validation for progress output.
type observedValidator struct {
	next    wgsl.Validator
	onStart func()
}

func (v observedValidator) Validate(text string) error {
	if v.onStart != nil {
		v.onStart()
	}
	return v.next.Validate(text)
}
