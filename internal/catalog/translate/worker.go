// Copyright (c) 2026 Vitrine. All rights reserved.

package translate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	queueCapacity = 256
	jobTimeout    = 45 * time.Second
)

// Translator performs one translation call. Satisfied by [*Client].
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// DescriptionStore writes a translated description back to storage.
// Satisfied by the app repository.
type DescriptionStore interface {
	SetDescription(ctx context.Context, id int, description string) error
}

// Worker translates app descriptions in the background. Jobs are queued by
// the submission path and processed by a single consumer goroutine; every job
// ends in either a persisted translation or a logged failure, never silence.
type Worker struct {
	translator     Translator
	store          DescriptionStore
	targetLanguage string
	logger         *slog.Logger

	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	appID       int
	description string
}

// NewWorker creates a translation worker. Call [Worker.Start] before
// enqueueing.
func NewWorker(translator Translator, store DescriptionStore, targetLanguage string, logger *slog.Logger) *Worker {
	return &Worker{
		translator:     translator,
		store:          store,
		targetLanguage: targetLanguage,
		logger:         logger,
		jobs:           make(chan job, queueCapacity),
	}
}

// Start launches the consumer goroutine. It drains until ctx is cancelled,
// then finishes the in-flight job and exits.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case j := <-w.jobs:
				w.process(j)
			}
		}
	}()
}

// Stop waits for the consumer goroutine to exit. Call after cancelling the
// context passed to [Worker.Start].
func (w *Worker) Stop() {
	w.wg.Wait()
}

// Enqueue queues a description for translation and reports whether the job
// was accepted. It never blocks the caller: when the queue is full the job
// is rejected, since a missing translation is recoverable and a stalled
// submission is not.
func (w *Worker) Enqueue(appID int, description string) bool {
	select {
	case w.jobs <- job{appID: appID, description: description}:
		return true
	default:
		w.logger.Warn("translation queue full, job rejected",
			slog.Int("app_id", appID))
		return false
	}
}

func (w *Worker) process(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	translated, err := w.translator.Translate(ctx, j.description, w.targetLanguage)
	if err != nil {
		w.logger.Error("translation failed",
			slog.Int("app_id", j.appID),
			slog.Any("error", err),
		)
		return
	}

	// The model may legitimately return the input unchanged.
	if translated == j.description {
		w.logger.Info("translation unchanged",
			slog.Int("app_id", j.appID))
		return
	}

	if err := w.store.SetDescription(ctx, j.appID, translated); err != nil {
		w.logger.Error("translated description not persisted",
			slog.Int("app_id", j.appID),
			slog.Any("error", err),
		)
		return
	}

	w.logger.Info("description translated",
		slog.Int("app_id", j.appID),
		slog.String("language", w.targetLanguage),
		slog.Duration("took", time.Since(started)),
	)
}
