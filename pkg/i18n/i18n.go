package i18n

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"errors"

	"github.com/valyala/fasttemplate"
)

var ErrNotFound = errors.New("not found")

type translation struct {
	template *fasttemplate.Template
	text     string
}

func (t *translation) UnmarshalJSON(data []byte) error {
	var text string
	err := json.Unmarshal(data, &text)
	if err != nil {
		return err
	}
	t.text = text
	t.template, err = fasttemplate.NewTemplate(text, "{{", "}}")
	return err
}

// Localies holds translations grouped by language code. Lookups for an unknown
// language fall back to the fallback language.
type Localies struct {
	mu       *sync.RWMutex
	fallback string
	defaults map[string]map[string]*translation
	cms      map[string]map[string]*translation // map[language_code]map[message_id]message
}

func New(fallback string) *Localies {
	return &Localies{
		mu:       &sync.RWMutex{},
		fallback: fallback,
	}
}

// Load merges the JSON file at path over the defaults.
// Used by watcher to hot-reload overrides.
func (l *Localies) Load(path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	return l.Read(f)
}

// SetDefaults installs the base catalog. Everything loaded later is merged
// over it per language and message id.
func (l *Localies) SetDefaults(data []byte) error {
	defaults, err := decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.defaults = defaults
	l.cms = merge(defaults, nil)
	return nil
}

// Read replaces the current translations with the defaults overridden by the
// content of r.
func (l *Localies) Read(r io.Reader) error {
	translations, err := decode(r)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.cms = merge(l.defaults, translations)
	return nil
}

func decode(r io.Reader) (map[string]map[string]*translation, error) {
	var translations map[string]map[string]*translation
	if err := json.NewDecoder(r).Decode(&translations); err != nil {
		return nil, err
	}
	return translations, nil
}

func merge(base, override map[string]map[string]*translation) map[string]map[string]*translation {
	merged := make(map[string]map[string]*translation, len(base))
	for _, src := range []map[string]map[string]*translation{base, override} {
		for lang, msgs := range src {
			if merged[lang] == nil {
				merged[lang] = make(map[string]*translation, len(msgs))
			}
			for id, tr := range msgs {
				merged[lang][id] = tr
			}
		}
	}
	return merged
}

func (l *Localies) Get(lang, id string) (string, error) {
	translation, ok := l.get(lang, id)
	if !ok {
		return "", ErrNotFound
	}
	return translation.text, nil
}

func (l *Localies) GetWithArgs(lang, id string, args map[string]string) (string, error) {
	translation, ok := l.get(lang, id)
	if !ok {
		return "", ErrNotFound
	}
	return translation.template.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		value, ok := args[tag]
		if !ok {
			return 0, fmt.Errorf("missing argument %s", tag)
		}
		return w.Write([]byte(value))
	})
}

func (l *Localies) get(lang, id string) (*translation, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if tr, ok := l.cms[lang][id]; ok {
		return tr, true
	}
	tr, ok := l.cms[l.fallback][id]
	return tr, ok
}
