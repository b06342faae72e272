package diagrams

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resumepro/internal/records"
	"resumepro/internal/shared/metrics"
	"resumepro/internal/shared/telemetry"
)

// ExportFileName is the download name of an exported diagram.
const ExportFileName = "flowchart.json"

// Gateway is the remote surface diagram persistence needs.
type Gateway interface {
	InsertRow(ctx context.Context, table, userID string, payload any) (records.Record, error)
	SelectRows(ctx context.Context, table, userID string, limit, offset int) ([]records.Record, error)
	GetRow(ctx context.Context, table, userID, id string) (records.Record, error)
	DeleteRow(ctx context.Context, table, userID string, filter records.Filter) (int, error)
}

// Saved is a stored diagram row.
type Saved struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Diagram
}

// Service stores diagrams through the gateway.
type Service struct {
	Gateway Gateway
}

func NewService(gw Gateway) *Service {
	return &Service{Gateway: gw}
}

// Save inserts d as a new flowcharts row. Every call creates a new row.
func (s *Service) Save(ctx context.Context, userID string, d Diagram) (Saved, error) {
	clean, err := normalize(d)
	if err != nil {
		return Saved{}, err
	}
	rec, err := s.Gateway.InsertRow(ctx, records.TableFlowcharts, userID, clean)
	if err != nil {
		return Saved{}, err
	}
	metrics.IncDiagramSaved()
	telemetry.Info("diagram.saved", map[string]any{
		"user_id":   userID,
		"record_id": rec.ID,
		"nodes":     len(clean.Nodes),
		"edges":     len(clean.Edges),
	})
	return Saved{ID: rec.ID, CreatedAt: rec.CreatedAt, Diagram: clean}, nil
}

// Export encodes d as a pretty-printed download and saves it as a side effect.
// A failed save does not block the download; the returned Saved is then empty.
func (s *Service) Export(ctx context.Context, userID string, d Diagram) ([]byte, Saved, error) {
	clean, err := normalize(d)
	if err != nil {
		return nil, Saved{}, err
	}
	data, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return nil, Saved{}, fmt.Errorf("encode diagram: %w", err)
	}
	saved, err := s.Save(ctx, userID, clean)
	if err != nil {
		telemetry.Error("diagram.export_save_failed", map[string]any{"user_id": userID, "error": err})
		return data, Saved{}, nil
	}
	return data, saved, nil
}

// List returns the user's diagrams newest first. Unreadable rows are skipped.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Saved, error) {
	rows, err := s.Gateway.SelectRows(ctx, records.TableFlowcharts, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Saved, 0, len(rows))
	for _, row := range rows {
		saved, err := decodeRow(row)
		if err != nil {
			telemetry.Warn("diagram.row_skip", map[string]any{"record_id": row.ID, "error": err})
			continue
		}
		out = append(out, saved)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Saved, error) {
	row, err := s.Gateway.GetRow(ctx, records.TableFlowcharts, userID, id)
	if err != nil {
		return Saved{}, err
	}
	return decodeRow(row)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	_, err := s.Gateway.DeleteRow(ctx, records.TableFlowcharts, userID, records.Filter{ID: id})
	return err
}

func decodeRow(row records.Record) (Saved, error) {
	var d Diagram
	if err := json.Unmarshal(row.Payload, &d); err != nil {
		return Saved{}, fmt.Errorf("%w: %v", ErrInvalidDiagram, err)
	}
	return Saved{ID: row.ID, CreatedAt: row.CreatedAt, Diagram: d}, nil
}

// normalize runs d through an editor so stored blobs never carry dangling edges.
func normalize(d Diagram) (Diagram, error) {
	e, err := Load(State{Diagram: d})
	if err != nil {
		return Diagram{}, err
	}
	return e.Diagram(), nil
}
