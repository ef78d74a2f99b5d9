package junitxml

import (
	"bytes"
	"encoding/xml"
	"os"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
)

const defaultMaxFileBytes = 64 << 20 // 64MB

type Loader struct {
	maxFileBytes int64
}

type Option func(*Loader)

// WithMaxFileBytes rejects files larger than n bytes.
func WithMaxFileBytes(n int64) Option {
	return func(l *Loader) { l.maxFileBytes = n }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{maxFileBytes: defaultMaxFileBytes}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.SuiteLoader = (*Loader)(nil)

func (l *Loader) LoadSuite(path string) (domain.Suite, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Suite{}, &domain.OpError{
			Op:   "junit.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	if info.IsDir() {
		return domain.Suite{}, &domain.OpError{
			Op:   "junit.load",
			Kind: domain.KindInvalidInput,
			Path: path,
			Err:  domain.ErrInvalidInput,
		}
	}
	if l.maxFileBytes > 0 && info.Size() > l.maxFileBytes {
		return domain.Suite{}, &domain.OpError{
			Op:   "junit.load",
			Kind: domain.KindInvalidInput,
			Path: path,
			Err:  domain.ErrInvalidInput,
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Suite{}, &domain.OpError{
			Op:   "junit.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	return Parse(path, b)
}

// Parse decodes JUnit XML content. path is only used for error context.
func Parse(path string, content []byte) (domain.Suite, error) {
	var doc xmlDocument
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Strict = true
	if err := dec.Decode(&doc); err != nil {
		return domain.Suite{}, &domain.OpError{
			Op:   "junit.parse",
			Kind: domain.KindInvalidInput,
			Path: path,
			Err:  err,
		}
	}

	return mapDocument(path, doc)
}
