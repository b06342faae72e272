package resumes

import (
	"context"
	"errors"
	"time"

	"resumepro/internal/records"
	"resumepro/internal/shared/telemetry"
	"resumepro/resume/model"
	"resumepro/resume/templates"
)

// ErrInvalidResume is returned for stored rows or imports that fail validation.
var ErrInvalidResume = errors.New("invalid resume")

// Gateway is the remote surface the resume library needs.
type Gateway interface {
	InsertRow(ctx context.Context, table, userID string, payload any) (records.Record, error)
	SelectRows(ctx context.Context, table, userID string, limit, offset int) ([]records.Record, error)
	GetRow(ctx context.Context, table, userID, id string) (records.Record, error)
	DeleteRow(ctx context.Context, table, userID string, filter records.Filter) (int, error)
}

// Summary is a list entry.
type Summary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	TemplateID string    `json:"templateId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Resume is a stored resume with its document.
type Resume struct {
	Summary
	Document model.Document `json:"document"`
}

// Service reads and writes the user's saved resumes.
type Service struct {
	Gateway Gateway
	Catalog *templates.Catalog
}

func NewService(gw Gateway, catalog *templates.Catalog) *Service {
	if catalog == nil {
		catalog = templates.Default()
	}
	return &Service{Gateway: gw, Catalog: catalog}
}

// List returns saved resumes newest first. Rows that fail validation are skipped.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	rows, err := s.Gateway.SelectRows(ctx, records.TableResumes, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		r, err := decodeRow(row)
		if err != nil {
			telemetry.Warn("resumes.row_skip", map[string]any{"record_id": row.ID, "error": err})
			continue
		}
		out = append(out, r.Summary)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	row, err := s.Gateway.GetRow(ctx, records.TableResumes, userID, id)
	if err != nil {
		return Resume{}, err
	}
	return decodeRow(row)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	_, err := s.Gateway.DeleteRow(ctx, records.TableResumes, userID, records.Filter{ID: id})
	return err
}

// Download returns the pretty-printed document and its file name.
func (s *Service) Download(ctx context.Context, userID, id string) (string, []byte, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", nil, err
	}
	data, err := model.EncodeArtifact(r.Document)
	if err != nil {
		return "", nil, err
	}
	return model.ArtifactName(r.Document), data, nil
}

// Import stores a previously downloaded artifact as a new resume. An unknown
// template id falls back to the catalog's first entry.
func (s *Service) Import(ctx context.Context, userID, templateID string, data []byte) (Resume, error) {
	doc, err := model.DecodeArtifact(data)
	if err != nil {
		return Resume{}, errors.Join(ErrInvalidResume, err)
	}
	doc = model.Normalize(doc)
	tpl, err := s.Catalog.Get(templateID)
	if err != nil {
		tpl, _ = s.Catalog.First()
	}
	saved := model.SavedResume{Title: model.TitleFor(doc), TemplateID: tpl.ID, Document: doc}
	rec, err := s.Gateway.InsertRow(ctx, records.TableResumes, userID, saved)
	if err != nil {
		return Resume{}, err
	}
	return Resume{
		Summary:  Summary{ID: rec.ID, Title: saved.Title, TemplateID: saved.TemplateID, CreatedAt: rec.CreatedAt},
		Document: doc,
	}, nil
}

func decodeRow(row records.Record) (Resume, error) {
	saved, err := model.DecodeSaved(row.Payload)
	if err != nil {
		return Resume{}, errors.Join(ErrInvalidResume, err)
	}
	title := saved.Title
	if title == "" {
		title = model.TitleFor(saved.Document)
	}
	return Resume{
		Summary: Summary{
			ID:         row.ID,
			Title:      title,
			TemplateID: saved.TemplateID,
			CreatedAt:  row.CreatedAt,
		},
		Document: saved.Document,
	}, nil
}
