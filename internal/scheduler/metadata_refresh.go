package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/kashidashi/internal/config"
	"github.com/mrlokans/kashidashi/internal/tasks"
)

// MetadataRefreshScheduler periodically enqueues a metadata refresh task so
// that books registered while OpenBD was missing data eventually pick up
// their descriptions.
type MetadataRefreshScheduler struct {
	taskClient *tasks.Client
	cfg        config.MetadataRefresh

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewMetadataRefreshScheduler(taskClient *tasks.Client, cfg config.MetadataRefresh) *MetadataRefreshScheduler {
	return &MetadataRefreshScheduler{
		taskClient: taskClient,
		cfg:        cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if refresh is enabled.
func (s *MetadataRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Metadata refresh scheduler: disabled")
		return nil
	}
	if s.taskClient == nil {
		log.Printf("Metadata refresh scheduler: task queue not available, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, s.enqueueRefresh)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Metadata refresh scheduler: started with schedule '%s'", s.cfg.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *MetadataRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Metadata refresh scheduler: stopped")
}

// RunNow enqueues an immediate refresh.
func (s *MetadataRefreshScheduler) RunNow() {
	s.enqueueRefresh()
}

func (s *MetadataRefreshScheduler) enqueueRefresh() {
	if _, err := s.taskClient.Add(tasks.RefreshMetadataTask{}).Save(); err != nil {
		log.Printf("Metadata refresh scheduler: failed to enqueue task: %v", err)
	}
}
