package assistant

import (
	"context"
	"encoding/json"
	"time"

	"resumepro/internal/gateway"
	"resumepro/internal/llm"
	"resumepro/internal/records"
	"resumepro/internal/shared/telemetry"
)

// contextTurns is how many stored exchanges seed a conversation without client history.
const contextTurns = 10

// Gateway is the remote surface the chat flow needs.
type Gateway interface {
	InvokeFunction(ctx context.Context, name string, payload any) (json.RawMessage, error)
	InsertRow(ctx context.Context, table, userID string, payload any) (records.Record, error)
	SelectRows(ctx context.Context, table, userID string, limit, offset int) ([]records.Record, error)
	DeleteRow(ctx context.Context, table, userID string, filter records.Filter) (int, error)
}

// Exchange is one stored question and answer.
type Exchange struct {
	ID        string    `json:"id,omitempty"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service runs chat turns through the gateway and keeps history.
type Service struct {
	Gateway Gateway
}

// NewService constructs a Service.
func NewService(gw Gateway) *Service {
	return &Service{Gateway: gw}
}

// Send validates the message, asks the assistant and stores the exchange.
// With no client history the latest stored exchanges are used as context.
func (s *Service) Send(ctx context.Context, userID string, req Request) (Exchange, error) {
	if err := req.Validate(); err != nil {
		return Exchange{}, err
	}
	if req.History == nil {
		req.History = s.recentTurns(ctx, userID)
	}
	raw, err := s.Gateway.InvokeFunction(ctx, gateway.FunctionChatAssistant, req)
	if err != nil {
		return Exchange{}, err
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Exchange{}, ErrUnavailable
	}

	ex := Exchange{Message: req.Message, Reply: resp.Reply, CreatedAt: time.Now().UTC()}
	rec, err := s.Gateway.InsertRow(ctx, records.TableChatHistory, userID, ex)
	if err != nil {
		telemetry.Error("assistant.store_failed", map[string]any{"user_id": userID, "error": err})
		return ex, nil
	}
	ex.ID = rec.ID
	return ex, nil
}

// History lists stored exchanges newest first.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]Exchange, error) {
	rows, err := s.Gateway.SelectRows(ctx, records.TableChatHistory, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Exchange, 0, len(rows))
	for _, row := range rows {
		var ex Exchange
		if err := json.Unmarshal(row.Payload, &ex); err != nil {
			telemetry.Warn("assistant.history_skip", map[string]any{"record_id": row.ID, "error": err})
			continue
		}
		ex.ID = row.ID
		if ex.CreatedAt.IsZero() {
			ex.CreatedAt = row.CreatedAt
		}
		out = append(out, ex)
	}
	return out, nil
}

// Clear deletes all of the user's stored exchanges.
func (s *Service) Clear(ctx context.Context, userID string) (int, error) {
	return s.Gateway.DeleteRow(ctx, records.TableChatHistory, userID, records.Filter{})
}

func (s *Service) recentTurns(ctx context.Context, userID string) []llm.Message {
	recent, err := s.History(ctx, userID, contextTurns, 0)
	if err != nil {
		telemetry.Warn("assistant.history_unavailable", map[string]any{"user_id": userID, "error": err})
		return nil
	}
	turns := make([]llm.Message, 0, len(recent)*2)
	for i := len(recent) - 1; i >= 0; i-- {
		turns = append(turns,
			llm.Message{Role: llm.RoleUser, Content: recent[i].Message},
			llm.Message{Role: llm.RoleAssistant, Content: recent[i].Reply},
		)
	}
	return turns
}
