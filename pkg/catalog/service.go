// Package catalog provides the read, publish and update operations over
// the skill library, plus listing filters and bulk zip export.
package catalog

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/skillbuilder/skillbuilder/pkg/library"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/skills"
	"github.com/skillbuilder/skillbuilder/pkg/telemetry"
	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

// updatableFields are the record keys a caller may change
var updatableFields = map[string]bool{
	"name":        true,
	"description": true,
	"category":    true,
	"content":     true,
	"published":   true,
}

// Service provides catalog operations on top of a library store
type Service struct {
	store library.Store
}

// NewService creates a catalog service backed by store
func NewService(store library.Store) *Service {
	return &Service{store: store}
}

// ListPublished returns summaries of published records, newest first.
// An empty category is reported as the default category.
func (s *Service) ListPublished(ctx context.Context) ([]skilltypes.Summary, error) {
	var summaries []skilltypes.Summary
	err := telemetry.WithSpan(ctx, "catalog.list_published", func(ctx context.Context) error {
		records, err := s.store.List(ctx)
		if err != nil {
			return err
		}

		summaries = make([]skilltypes.Summary, 0, len(records))
		for _, r := range records {
			if r.Published {
				summaries = append(summaries, r.ToSummary())
			}
		}
		telemetry.SetAttributes(ctx, attribute.Int("skills.count", len(summaries)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// List returns summaries of every record, published or not
func (s *Service) List(ctx context.Context) ([]skilltypes.Summary, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]skilltypes.Summary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, r.ToSummary())
	}
	return summaries, nil
}

// GetByID returns the full record
func (s *Service) GetByID(ctx context.Context, id string) (skilltypes.Record, error) {
	return s.store.Get(ctx, id)
}

// GetRawContent returns only the generated document text
func (s *Service) GetRawContent(ctx context.Context, id string) (string, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return record.Content, nil
}

// Publish marks the record as published
func (s *Service) Publish(ctx context.Context, id string) (skilltypes.Record, error) {
	record, err := s.store.Update(ctx, id, skilltypes.Patch{"published": true})
	if err != nil {
		return skilltypes.Record{}, err
	}
	logger.G(ctx).WithField("skill_id", id).Info("published skill")
	return record, nil
}

// Update applies a partial update. Only name, description, category,
// content and published may change; other keys, including id, are ignored.
func (s *Service) Update(ctx context.Context, id string, patch skilltypes.Patch) (skilltypes.Record, error) {
	clean, err := sanitizePatch(patch)
	if err != nil {
		return skilltypes.Record{}, err
	}
	return s.store.Update(ctx, id, clean)
}

func sanitizePatch(patch skilltypes.Patch) (skilltypes.Patch, error) {
	clean := skilltypes.Patch{}
	for key, value := range patch {
		if !updatableFields[key] {
			continue
		}

		if key == "published" {
			b, ok := value.(bool)
			if !ok {
				return nil, skilltypes.ValidationError("Field \"published\" must be a boolean.")
			}
			clean[key] = b
			continue
		}

		str, ok := value.(string)
		if !ok {
			return nil, skilltypes.NewError(skilltypes.KindValidation, "Field \""+key+"\" must be a string.",
				errors.Errorf("unexpected %T for %s", value, key))
		}

		switch key {
		case "name":
			name := skills.NormalizeName(str)
			if name == "" {
				return nil, skilltypes.ValidationError("Skill name cannot be empty.")
			}
			clean[key] = name
		case "description":
			clean[key] = skills.TruncateDescription(str)
		case "category":
			if str == "" {
				clean[key] = ""
				continue
			}
			c, valid := skilltypes.ParseCategory(str)
			if !valid {
				return nil, skilltypes.ValidationError("Unknown category.")
			}
			clean[key] = string(c)
		case "content":
			clean[key] = str
		}
	}
	return clean, nil
}
