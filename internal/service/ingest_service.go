package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"course-assistant-be/internal/constant"
	"course-assistant-be/internal/dto"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/events"
	"course-assistant-be/pkg/rag"
	"course-assistant-be/pkg/rag/normalize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IngestReport aggregates a directory run.
type IngestReport struct {
	Files       int
	FilesFailed int
	Total       int
	Created     int
	Skipped     int
	Failed      int
	DocumentIds []uuid.UUID
}

type IIngestService interface {
	IngestRecords(ctx context.Context, req *dto.IngestRequest, sourceType string) (*dto.IngestResponse, error)
	IngestFile(ctx context.Context, path string) (*dto.IngestResponse, error)
	IngestDirectory(ctx context.Context, dir string, workers int) (*IngestReport, error)
}

type ingestService struct {
	store            IDocumentStore
	publisherService IPublisherService
	eventPublisher   EventPublisher
	logger           logger.ILogger
}

// NewIngestService wires the store. publisherService and eventPublisher may be
// nil, in which case stored documents are neither queued for embedding nor announced.
func NewIngestService(
	store IDocumentStore,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	logger logger.ILogger,
) IIngestService {
	return &ingestService{
		store:            store,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func (s *ingestService) IngestRecords(ctx context.Context, req *dto.IngestRequest, sourceType string) (*dto.IngestResponse, error) {
	positions := make([]int, len(req.Records))
	for i := range positions {
		positions[i] = i
	}
	return s.ingestRecords(ctx, req, positions, sourceType)
}

// ingestRecords stores req.Records. positions[i] is the place of record i in
// its input, used for citation notes and error indexes.
func (s *ingestService) ingestRecords(ctx context.Context, req *dto.IngestRequest, positions []int, sourceType string) (*dto.IngestResponse, error) {
	sourceName := strings.TrimSpace(req.Source)
	if sourceName == "" {
		return nil, fmt.Errorf("%w: source name is required", rag.ErrInvalidArgument)
	}

	sourceId, err := s.store.EnsureSource(ctx, sourceName, sourceType, req.Url)
	if err != nil {
		return nil, err
	}

	res := &dto.IngestResponse{
		SourceId:  sourceId,
		Total:     len(req.Records),
		Documents: make([]dto.IngestedDocument, 0, len(req.Records)),
	}

	for i, record := range req.Records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		pos := positions[i]

		n := normalize.Normalize(record)
		result, err := s.store.InsertDocumentIfNew(ctx, NewDocument{
			SourceId:     &sourceId,
			Title:        n.Title,
			Content:      n.Content,
			RawMetadata:  record,
			CourseCode:   n.CourseCode,
			Department:   n.Department,
			Campus:       n.Campus,
			Units:        n.Units,
			CitationNote: fmt.Sprintf("%s item %d", sourceName, pos+1),
		})
		if err != nil {
			s.logger.Error("INGEST", "Failed to store record", map[string]interface{}{
				"source": sourceName,
				"index":  pos,
				"error":  err.Error(),
			})
			res.Failed++
			res.Errors = append(res.Errors, dto.IngestRecordError{Index: pos, Error: "failed to store record"})
			continue
		}

		res.Documents = append(res.Documents, dto.IngestedDocument{
			DocumentId: result.Document.Id,
			Title:      result.Document.Title,
			Created:    result.Created,
			ChunkCount: result.ChunkCount,
		})
		if !result.Created {
			res.Skipped++
			s.logger.Debug("INGEST", "Document already exists, skipping", map[string]interface{}{
				"document_id": result.Document.Id.String(),
			})
			continue
		}

		res.Created++
		s.announce(ctx, sourceName, result)
	}

	s.logger.Info("INGEST", "Records ingested", map[string]interface{}{
		"source":  sourceName,
		"total":   res.Total,
		"created": res.Created,
		"skipped": res.Skipped,
		"failed":  res.Failed,
	})
	return res, nil
}

// announce queues the new document for embedding and emits the ingested event.
// Both are best effort: the document is already committed.
func (s *ingestService) announce(ctx context.Context, sourceName string, result *InsertResult) {
	if s.publisherService != nil && result.ChunkCount > 0 {
		payload, err := json.Marshal(dto.EmbedDocumentMessage{DocumentId: result.Document.Id})
		if err == nil {
			err = s.publisherService.Publish(ctx, payload)
		}
		if err != nil {
			s.logger.Warn("INGEST", "Failed to queue document for embedding", map[string]interface{}{
				"document_id": result.Document.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewDocumentIngested(result.Document.Id, sourceName, result.Document.Title, result.ChunkCount)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("INGEST", "Failed to publish document ingested event", map[string]interface{}{
				"document_id": result.Document.Id.String(),
				"error":       err.Error(),
			})
		}
	}
}

// IngestFile loads a JSON file holding one object or an array of objects.
// Array elements that are not objects are counted as failed items.
func (s *ingestService) IngestFile(ctx context.Context, path string) (*dto.IngestResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	items, err := decodeItems(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	records := make([]map[string]any, 0, len(items))
	positions := make([]int, 0, len(items))
	var invalid []int
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			invalid = append(invalid, i)
			continue
		}
		records = append(records, record)
		positions = append(positions, i)
	}

	s.logger.Info("INGEST", "Ingesting file", map[string]interface{}{
		"path":  path,
		"items": len(items),
	})

	res, err := s.ingestRecords(ctx, &dto.IngestRequest{
		Source:  filepath.Base(path),
		Records: records,
	}, positions, constant.SourceTypeJSONFile)
	if err != nil {
		return res, err
	}

	for _, i := range invalid {
		s.logger.Warn("INGEST", "Skipping non-object item", map[string]interface{}{"path": path, "index": i})
		res.Total++
		res.Failed++
		res.Errors = append(res.Errors, dto.IngestRecordError{Index: i, Error: "record is not a JSON object"})
	}
	sort.SliceStable(res.Errors, func(a, b int) bool { return res.Errors[a].Index < res.Errors[b].Index })
	return res, nil
}

func decodeItems(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		return []any{t}, nil
	default:
		return nil, errors.New("top-level JSON value must be an object or an array")
	}
}

// ListJSONFiles returns the *.json files directly under dir, sorted by name.
func ListJSONFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: data directory not found: %s", rag.ErrInvalidArgument, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", rag.ErrInvalidArgument, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// IngestDirectory ingests every JSON file in dir. A failing file is logged and
// counted; it never aborts the run.
func (s *ingestService) IngestDirectory(ctx context.Context, dir string, workers int) (*IngestReport, error) {
	files, err := ListJSONFiles(dir)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	report := &IngestReport{Files: len(files)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, file := range files {
		g.Go(func() error {
			res, err := s.IngestFile(gctx, file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Error("INGEST", "Failed to ingest file", map[string]interface{}{
					"path":  file,
					"error": err.Error(),
				})
				report.FilesFailed++
				return nil
			}
			report.Total += res.Total
			report.Created += res.Created
			report.Skipped += res.Skipped
			report.Failed += res.Failed
			for _, d := range res.Documents {
				if d.Created {
					report.DocumentIds = append(report.DocumentIds, d.DocumentId)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}
