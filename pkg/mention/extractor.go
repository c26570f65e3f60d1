package mention

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/logger"
)

// Mention is a resolved username. It only lives while one comment is processed.
type Mention struct {
	Username string
	UserID   string
}

// Extractor turns comment text into the ids of mentioned users.
type Extractor struct {
	dir    Directory
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor backed by dir.
func NewExtractor(dir Directory, opts ...Option) (*Extractor, error) {
	if dir == nil {
		return nil, ErrDirectoryNil
	}
	e := &Extractor{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Usernames returns the distinct case-folded usernames in order of first
// appearance. It performs no lookups.
func (e *Extractor) Usernames(content string) []string {
	var (
		out  []string
		seen = make(map[string]struct{})
		// a Caser keeps state and cannot be shared across goroutines
		fold = cases.Fold()
	)
	for _, tok := range scan(content) {
		name := fold.String(tok)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Resolve extracts and resolves mentions, keeping the order in which the
// usernames first appear. The author is excluded.
func (e *Extractor) Resolve(ctx context.Context, content, authorID string) ([]Mention, error) {
	names := e.Usernames(content)
	if len(names) == 0 {
		return nil, nil
	}

	ids, err := e.dir.ResolveUsernames(ctx, names)
	if err != nil {
		return nil, apperr.New(apperr.OperationFailed, "mention.Resolve", errors.Join(ErrLookupFailed, err))
	}

	mentions := make([]Mention, 0, len(names))
	seenIDs := make(map[string]struct{}, len(names))
	for _, name := range names {
		id, ok := ids[name]
		if !ok || id == "" || id == authorID {
			continue
		}
		if _, dup := seenIDs[id]; dup {
			continue
		}
		seenIDs[id] = struct{}{}
		mentions = append(mentions, Mention{Username: name, UserID: id})
	}

	e.logger.LogAttrs(ctx, slog.LevelDebug, "mentions resolved",
		logger.UserID(authorID),
		slog.Int("candidates", len(names)),
		logger.Count(len(mentions)),
	)
	return mentions, nil
}

// Extract returns the ordered, distinct ids of existing users mentioned in
// content, excluding authorID.
func (e *Extractor) Extract(ctx context.Context, content, authorID string) ([]string, error) {
	mentions, err := e.Resolve(ctx, content, authorID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(mentions))
	for i, m := range mentions {
		ids[i] = m.UserID
	}
	return ids, nil
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scan returns raw @tokens. An '@' preceded by a word rune (as in an e-mail
// address) does not start a mention.
func scan(content string) []string {
	var tokens []string
	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '@' {
			continue
		}
		if i > 0 && (isWordRune(runes[i-1]) || runes[i-1] == '@') {
			continue
		}
		j := i + 1
		for j < len(runes) && isNameRune(runes[j]) {
			j++
		}
		tok := strings.TrimRight(string(runes[i+1:j]), ".-")
		if tok != "" {
			tokens = append(tokens, tok)
		}
		i = j - 1
	}
	return tokens
}
