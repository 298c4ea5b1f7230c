package prompts

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultKey = "default"

var (
	ErrNotFound     = errors.New("prompt not found")
	ErrRegistryFull = errors.New("prompt registry is full")
	ErrInvalidKey   = errors.New("prompt key must match ^[a-z0-9_-]{1,64}$")
	ErrTooLong      = errors.New("prompt template is too long")
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_\-]{1,64}$`)

type source int

const (
	sourceBuiltin source = iota
	sourceFile
	sourceRuntime
)

type entry struct {
	template string
	source   source
}

type Options struct {
	File       string
	MaxEntries int
	MaxLength  int
	Logger     *log.Logger
}

// Registry is a bounded, concurrency-safe set of named prompt templates.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	opts    Options
	logger  *log.Logger
}

// NewRegistry seeds the built-in prompts and, when configured, the prompts file.
func NewRegistry(opts Options) (*Registry, error) {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 32
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = 4000
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[PROMPTS] ", log.LstdFlags)
	}
	r := &Registry{entries: make(map[string]entry), opts: opts, logger: opts.Logger}
	for k, tpl := range Builtin() {
		r.entries[k] = entry{template: tpl, source: sourceBuiltin}
	}
	if opts.File != "" {
		if err := r.Reload(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Get returns the template stored under key.
func (r *Registry) Get(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return e.template, nil
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add stores template under key. Overwriting an existing key is allowed and does not count against the bound.
func (r *Registry) Add(key, template string) error {
	key = strings.TrimSpace(key)
	if err := r.check(key, template); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; !exists && len(r.entries) >= r.opts.MaxEntries {
		return ErrRegistryFull
	}
	r.entries[key] = entry{template: template, source: sourceRuntime}
	r.logger.Printf("added custom prompt: %s", key)
	return nil
}

func (r *Registry) check(key, template string) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	if strings.TrimSpace(template) == "" {
		return fmt.Errorf("prompt template is empty")
	}
	if len([]rune(template)) > r.opts.MaxLength {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, len([]rune(template)), r.opts.MaxLength)
	}
	return nil
}

// Render fills {placeholder} tokens from vars. Unknown placeholders are left untouched.
func (r *Registry) Render(key string, vars map[string]string) (string, error) {
	tpl, err := r.Get(key)
	if err != nil {
		return "", err
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl), nil
}

// Reload re-reads the prompts file. Runtime additions win over file entries with the same key.
func (r *Registry) Reload() error {
	if r.opts.File == "" {
		return nil
	}
	loaded, err := readFile(r.opts.File)
	if err != nil {
		return err
	}
	for k, tpl := range loaded {
		if err := r.check(k, tpl); err != nil {
			return fmt.Errorf("prompts file %s: key %q: %w", r.opts.File, k, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]entry, len(r.entries)+len(loaded))
	for k, e := range r.entries {
		if e.source != sourceFile {
			next[k] = e
		}
	}
	for k, tpl := range loaded {
		if e, ok := next[k]; ok && e.source == sourceRuntime {
			continue
		}
		next[k] = entry{template: tpl, source: sourceFile}
	}
	if len(next) > r.opts.MaxEntries {
		return fmt.Errorf("prompts file %s: %w (%d > %d)", r.opts.File, ErrRegistryFull, len(next), r.opts.MaxEntries)
	}
	r.entries = next
	r.logger.Printf("loaded %d prompts from %s", len(loaded), r.opts.File)
	return nil
}

func readFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	out := map[string]string{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}
	return out, nil
}
