package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"chatrag/internal/database"
	"chatrag/internal/models"
	"chatrag/internal/rag"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQueue struct {
	pending []database.PendingJob
	listErr error

	marked  []string
	deleted []string
}

func (s *stubQueue) ListPending(_ context.Context, _ int) ([]database.PendingJob, error) {
	return s.pending, s.listErr
}

func (s *stubQueue) MarkAttempt(_ context.Context, jobID string) error {
	s.marked = append(s.marked, jobID)
	return nil
}

func (s *stubQueue) Delete(_ context.Context, jobID string) error {
	s.deleted = append(s.deleted, jobID)
	return nil
}

type stubWriter struct {
	err     error
	updated map[string]pgvector.Vector
}

func (s *stubWriter) UpdateEmbedding(_ context.Context, id string, embedding pgvector.Vector) error {
	if s.err != nil {
		return s.err
	}
	if s.updated == nil {
		s.updated = make(map[string]pgvector.Vector)
	}
	s.updated[id] = embedding
	return nil
}

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return s.vector, s.err
}

func pendingJob(jobID, messageID, text string, attempts int) database.PendingJob {
	return database.PendingJob{
		EmbeddingJob: models.EmbeddingJob{
			ID:        jobID,
			MessageID: messageID,
			Attempts:  attempts,
			CreatedAt: time.Now().UTC(),
		},
		Text: text,
	}
}

func TestProcessBatchSuccess(t *testing.T) {
	queue := &stubQueue{pending: []database.PendingJob{
		pendingJob("job-1", "msg-1", "hello world", 0),
		pendingJob("job-2", "msg-2", "second message", 0),
	}}
	writer := &stubWriter{}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2, 0.3}}

	worker := NewWorker(queue, writer, embedder, time.Second, 5)
	err := worker.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, embedder.calls)
	assert.Len(t, writer.updated, 2)
	assert.ElementsMatch(t, []string{"job-1", "job-2"}, queue.deleted)
	assert.Empty(t, queue.marked)
}

func TestProcessBatchListFailure(t *testing.T) {
	queue := &stubQueue{listErr: errors.New("connection refused")}
	worker := NewWorker(queue, &stubWriter{}, &stubEmbedder{}, time.Second, 5)

	err := worker.ProcessBatch(context.Background())

	assert.Error(t, err)
}

func TestProcessBatchRetriesProviderFailure(t *testing.T) {
	queue := &stubQueue{pending: []database.PendingJob{
		pendingJob("job-1", "msg-1", "hello", 0),
	}}
	embedder := &stubEmbedder{err: fmt.Errorf("%w: provider down", rag.ErrEmbeddingUnavailable)}

	worker := NewWorker(queue, &stubWriter{}, embedder, time.Second, 5)
	err := worker.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, queue.marked)
	assert.Empty(t, queue.deleted)
}

func TestProcessBatchDropsAfterMaxRetries(t *testing.T) {
	queue := &stubQueue{pending: []database.PendingJob{
		pendingJob("job-1", "msg-1", "hello", 4),
	}}
	embedder := &stubEmbedder{err: fmt.Errorf("%w: provider down", rag.ErrEmbeddingUnavailable)}

	worker := NewWorker(queue, &stubWriter{}, embedder, time.Second, 5)
	err := worker.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, queue.deleted)
	assert.Empty(t, queue.marked)
}

func TestProcessBatchDropsUnembeddableText(t *testing.T) {
	queue := &stubQueue{pending: []database.PendingJob{
		pendingJob("job-1", "msg-1", "", 0),
	}}
	embedder := &stubEmbedder{err: fmt.Errorf("%w: text is empty", rag.ErrInvalidInput)}

	worker := NewWorker(queue, &stubWriter{}, embedder, time.Second, 5)
	err := worker.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, queue.deleted)
	assert.Empty(t, queue.marked)
}

func TestProcessBatchRetriesStoreFailure(t *testing.T) {
	queue := &stubQueue{pending: []database.PendingJob{
		pendingJob("job-1", "msg-1", "hello", 0),
	}}
	writer := &stubWriter{err: errors.New("deadlock detected")}
	embedder := &stubEmbedder{vector: []float32{0.5}}

	worker := NewWorker(queue, writer, embedder, time.Second, 5)
	err := worker.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, queue.marked)
	assert.Empty(t, queue.deleted)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	queue := &stubQueue{}
	worker := NewWorker(queue, &stubWriter{}, &stubEmbedder{}, 10*time.Millisecond, 5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
