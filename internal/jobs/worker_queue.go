package jobs

import (
	"github.com/vytor/studyrpg/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	generationPool *worker.Pool
	processor      worker.DocumentProcessor
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(generationPool *worker.Pool, processor worker.DocumentProcessor) JobQueue {
	return &WorkerQueue{
		generationPool: generationPool,
		processor:      processor,
	}
}

func (q *WorkerQueue) EnqueueGeneration(documentID int64) error {
	return q.generationPool.Submit(&worker.GenerateQuestionsJob{
		Processor:  q.processor,
		DocumentID: documentID,
	})
}
