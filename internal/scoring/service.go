package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"resumepro/internal/extract"
	"resumepro/internal/gateway"
	"resumepro/internal/records"
	"resumepro/internal/shared/storage/object"
	"resumepro/internal/shared/telemetry"
)

// ErrInvalidFile is returned for uploads that cannot be scored.
var ErrInvalidFile = errors.New("invalid resume file")

// Gateway is the remote surface the upload flow needs.
type Gateway interface {
	UploadFile(ctx context.Context, bucket, objectPath, contentType string, r io.Reader) (int64, error)
	InvokeFunction(ctx context.Context, name string, payload any) (json.RawMessage, error)
	InsertRow(ctx context.Context, table, userID string, payload any) (records.Record, error)
}

// Report is a stored scoring of one uploaded file.
type Report struct {
	ID        string    `json:"id,omitempty"`
	FileName  string    `json:"fileName"`
	FilePath  string    `json:"filePath"`
	CreatedAt time.Time `json:"createdAt"`
	Result
}

// Service runs the upload, extract, score and store flow.
type Service struct {
	Gateway Gateway
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(gw Gateway) *Service {
	return &Service{Gateway: gw, now: time.Now}
}

// AnalyzeUpload stores the file, scores its text and records the scores.
func (s *Service) AnalyzeUpload(ctx context.Context, userID, fileName, contentType string, data []byte) (Report, error) {
	if len(data) == 0 {
		return Report{}, fmt.Errorf("%w: file is empty", ErrInvalidFile)
	}
	if !extract.Supported(contentType, fileName) {
		return Report{}, fmt.Errorf("%w: only PDF, DOCX and TXT files are supported", ErrInvalidFile)
	}
	key, err := object.UserKey(userID, fileName)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	text, err := extract.FromBytes(ctx, data, contentType, fileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) || errors.Is(err, extract.ErrEmpty) {
			return Report{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		return Report{}, fmt.Errorf("%w: could not read text from file", ErrInvalidFile)
	}

	if _, err := s.Gateway.UploadFile(ctx, gateway.BucketResumes, key, contentType, bytes.NewReader(data)); err != nil {
		return Report{}, err
	}

	raw, err := s.Gateway.InvokeFunction(ctx, gateway.FunctionAnalyzeResume, Request{ResumeText: text, FileName: fileName})
	if err != nil {
		return Report{}, err
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		res = Fallback()
	}

	report := Report{
		FileName:  fileName,
		FilePath:  gateway.BucketResumes + "/" + key,
		CreatedAt: s.now().UTC(),
		Result:    res.Clamp(),
	}
	rec, err := s.Gateway.InsertRow(ctx, records.TableResumeScores, userID, report)
	if err != nil {
		telemetry.Error("scoring.store_failed", map[string]any{
			"user_id": userID,
			"error":   err,
		})
		return report, nil
	}
	report.ID = rec.ID
	report.CreatedAt = rec.CreatedAt
	return report, nil
}
