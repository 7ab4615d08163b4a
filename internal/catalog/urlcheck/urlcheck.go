// Package urlcheck periodically probes every listed app URL and records
// whether it still responds. Dead links get flagged in the catalog instead
// of silently rotting.
package urlcheck

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vitrineapp/vitrine/internal/catalog/app"
)

const (
	probeTimeout     = 15 * time.Second
	maxConcurrency   = 8
	sweepPageSize    = 100
	sweepTimeLimit   = 10 * time.Minute
	checkerUserAgent = "VitrineLinkCheck/1.0 (+https://vitrine.app)"
)

// Store is the slice of the app repository the checker needs.
type Store interface {
	List(ctx context.Context, filter app.Filter, limit, offset int) ([]*app.App, int, error)
	SetURLStatus(ctx context.Context, id int, ok bool) error
}

// Checker sweeps the catalog's URLs on a cron schedule.
type Checker struct {
	store    Store
	schedule string
	client   *http.Client
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewChecker creates a URL checker. schedule uses cron syntax, including
// descriptors like "@every 6h".
func NewChecker(store Store, schedule string, logger *slog.Logger) *Checker {
	return &Checker{
		store:    store,
		schedule: schedule,
		client: &http.Client{
			Timeout: probeTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules recurring sweeps and kicks off an immediate one so fresh
// deployments do not wait a full interval for link data.
func (c *Checker) Start(ctx context.Context) error {
	_, err := c.cron.AddFunc(c.schedule, func() { c.Sweep(ctx) })
	if err != nil {
		return err
	}
	c.cron.Start()
	go c.Sweep(ctx)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (c *Checker) Stop() {
	<-c.cron.Stop().Done()
}

// Sweep probes every app in the catalog, approved or not, and persists the
// outcome per app. Individual probe or persist failures are logged and do
// not abort the sweep.
func (c *Checker) Sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeLimit)
	defer cancel()

	started := time.Now()
	var checked, healthy int

	semaphore := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for offset := 0; ; offset += sweepPageSize {
		apps, total, err := c.store.List(ctx, app.Filter{IncludeUnapproved: true}, sweepPageSize, offset)
		if err != nil {
			c.logger.ErrorContext(ctx, "url sweep listing failed", slog.Any("error", err))
			return
		}
		if len(apps) == 0 {
			break
		}

		for _, item := range apps {
			wg.Add(1)
			semaphore <- struct{}{}
			go func(id int, rawURL string) {
				defer wg.Done()
				defer func() { <-semaphore }()

				ok := c.probe(ctx, rawURL)
				if err := c.store.SetURLStatus(ctx, id, ok); err != nil {
					c.logger.WarnContext(ctx, "url status not persisted",
						slog.Int("app_id", id), slog.Any("error", err))
					return
				}

				mu.Lock()
				checked++
				if ok {
					healthy++
				}
				mu.Unlock()
			}(item.ID, item.URL)
		}

		if offset+sweepPageSize >= total {
			break
		}
	}
	wg.Wait()

	c.logger.InfoContext(ctx, "url sweep finished",
		slog.Int("checked", checked),
		slog.Int("healthy", healthy),
		slog.Duration("took", time.Since(started)),
	)
}

// probe issues a HEAD request, retrying as GET for servers that reject HEAD.
// Any response below 400 counts as alive; redirect chains are followed.
func (c *Checker) probe(ctx context.Context, rawURL string) bool {
	status, err := c.request(ctx, http.MethodHead, rawURL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = c.request(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return false
	}
	return status < 400
}

func (c *Checker) request(ctx context.Context, method, rawURL string) (int, error) {
	request, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	request.Header.Set("User-Agent", checkerUserAgent)

	response, err := c.client.Do(request)
	if err != nil {
		return 0, err
	}
	response.Body.Close()
	return response.StatusCode, nil
}
