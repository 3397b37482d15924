// Package skills turns natural-language requests into persisted SKILL.md
// artifacts and imports existing SKILL.md trees into the library.
package skills

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/sanitize"
	"github.com/skillbuilder/skillbuilder/pkg/telemetry"
	llmtypes "github.com/skillbuilder/skillbuilder/pkg/types/llm"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

// MinContentLength is the shortest generated document accepted
const MinContentLength = 50

// MsgInvalidContent is reported when the generated document is too short
const MsgInvalidContent = "Generated skill was invalid. Please try again."

// maxIDAttempts bounds identifier regeneration when uniqueness is enforced
const maxIDAttempts = 5

// State is a stage of the generation pipeline
type State string

// Pipeline states
const (
	StateReceived  State = "received"
	StateSanitized State = "sanitized"
	StateGenerated State = "generated"
	StateExtracted State = "extracted"
	StatePersisted State = "persisted"
	StateReturned  State = "returned"
	StateFailed    State = "failed"
)

// Store is the persistence the pipeline writes to
type Store interface {
	Put(ctx context.Context, record skilltypes.Record) error
	Get(ctx context.Context, id string) (skilltypes.Record, error)
}

// Builder runs the generation pipeline
type Builder struct {
	generator llmtypes.Generator
	store     Store
	uniqueIDs bool
	now       func() time.Time
	newID     func() string
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithUniqueIDs makes the builder check the store before assigning an id
func WithUniqueIDs(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.uniqueIDs = enabled
	}
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// WithIDGenerator overrides identifier generation
func WithIDGenerator(newID func() string) BuilderOption {
	return func(b *Builder) {
		b.newID = newID
	}
}

// NewBuilder creates a pipeline around generator and store
func NewBuilder(generator llmtypes.Generator, store Store, opts ...BuilderOption) *Builder {
	b := &Builder{
		generator: generator,
		store:     store,
		uniqueIDs: true,
		now:       time.Now,
		newID:     skilltypes.GenerateID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build sanitizes rawPrompt, generates a skill document, extracts its
// metadata and persists it as a published record. credential, when not
// empty, replaces the configured provider key for this call only.
func (b *Builder) Build(ctx context.Context, rawPrompt string, credential string) (skilltypes.Record, error) {
	var record skilltypes.Record

	err := telemetry.WithSpan(ctx, "skills.build", func(ctx context.Context) error {
		log := logger.G(ctx)
		transition(log, StateReceived)

		prompt, err := sanitize.ValidatePrompt(rawPrompt)
		if err != nil {
			return fail(log, err)
		}
		transition(log, StateSanitized)

		var content string
		err = telemetry.WithSpan(ctx, "skills.generate", func(ctx context.Context) error {
			var genErr error
			content, genErr = b.generator.Generate(ctx, prompt, credential)
			return genErr
		})
		if err != nil {
			return fail(log, err)
		}
		if utf8.RuneCountInString(content) < MinContentLength {
			return fail(log, skilltypes.NewError(skilltypes.KindGenerationFailed, MsgInvalidContent,
				errors.Errorf("generated content too short: %d characters", utf8.RuneCountInString(content))))
		}
		transition(log, StateGenerated)

		fields := ExtractFields(content)
		telemetry.SetAttributes(ctx, attribute.String("skill.name", fields.Name))
		transition(log, StateExtracted)

		id, err := b.assignID(ctx)
		if err != nil {
			return fail(log, err)
		}
		ctx = logger.WithFields(ctx, logrus.Fields{"skill_id": id})
		log = logger.G(ctx)

		record = skilltypes.Record{
			ID:          id,
			Name:        fields.Name,
			Description: fields.Description,
			Category:    fields.Category,
			Content:     content,
			Prompt:      prompt,
			CreatedAt:   b.now().UTC(),
			Published:   true,
		}

		if err := b.store.Put(ctx, record); err != nil {
			if skilltypes.KindOf(err) == "" {
				err = skilltypes.StorageError("Failed to save skill.", err)
			}
			return fail(log, err)
		}
		transition(log, StatePersisted)
		transition(log, StateReturned)
		return nil
	}, attribute.Int("prompt.length", len(rawPrompt)))
	if err != nil {
		return skilltypes.Record{}, err
	}

	return record, nil
}

// assignID returns a fresh identifier, optionally checked against the store
func (b *Builder) assignID(ctx context.Context) (string, error) {
	if !b.uniqueIDs {
		return b.newID(), nil
	}

	for range maxIDAttempts {
		id := b.newID()
		_, err := b.store.Get(ctx, id)
		if skilltypes.IsNotFound(err) {
			return id, nil
		}
		if err != nil {
			return "", skilltypes.StorageError("Failed to save skill.", err)
		}
		logger.G(ctx).WithField("skill_id", id).Warn("generated skill id already exists, retrying")
	}

	return "", skilltypes.StorageError("Failed to save skill.", errors.New("could not allocate a unique skill id"))
}

func transition(log *logrus.Entry, state State) {
	log.WithField("state", state).Debug("skill pipeline transition")
}

func fail(log *logrus.Entry, err error) error {
	log.WithError(err).WithFields(logrus.Fields{
		"state":  StateFailed,
		"reason": skilltypes.KindOf(err),
	}).Debug("skill pipeline transition")
	return err
}
