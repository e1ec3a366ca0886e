package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nypc/nypc-perf-backend/pkg/distributed"
)

const recalcLockKey = "perf:recalc:lock"

// RecalcService 주기적으로 전체 레이팅을 재계산하는 백그라운드 서비스
// Redis가 설정된 경우 분산 락으로 인스턴스 하나만 재계산하도록 보장함
type RecalcService struct {
	ratingService *RatingService
	lockManager   *distributed.RedisLockManager
	instanceID    string
	logger        *zap.Logger
	interval      time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup
	running       bool
	mu            sync.Mutex
}

func NewRecalcService(
	ratingService *RatingService,
	redisClient *redis.Client,
	interval time.Duration,
) *RecalcService {
	logger, _ := zap.NewProduction()

	var lockManager *distributed.RedisLockManager
	if redisClient != nil {
		lockManager = distributed.NewRedisLockManager(redisClient)
	}

	return &RecalcService{
		ratingService: ratingService,
		lockManager:   lockManager,
		instanceID:    uuid.New().String(),
		logger:        logger,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start 재계산 루프 시작
func (s *RecalcService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Starting RecalcService",
		zap.Duration("interval", s.interval),
		zap.String("instanceId", s.instanceID))

	s.wg.Add(1)
	go s.recalcLoop()
}

// Stop 재계산 루프 중지
func (s *RecalcService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping RecalcService")
	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("RecalcService stopped")
}

// recalcLoop 주기적 재계산 실행
func (s *RecalcService) recalcLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

// runOnce 단일 재계산 수행 (분산 락 획득 시도 포함)
func (s *RecalcService) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	// 다른 인스턴스가 재계산 중이면 이번 주기는 건너뜀
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLock(ctx, recalcLockKey, s.instanceID, s.interval)
		if err != nil {
			if errors.Is(err, distributed.ErrLockNotAcquired) {
				s.logger.Debug("Recalc lock held by another instance, skipping")
			} else {
				s.logger.Error("Failed to acquire recalc lock", zap.Error(err))
			}
			return
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				s.logger.Warn("Failed to release recalc lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	summary, err := s.ratingService.Recalculate()
	if err != nil {
		if errors.Is(err, ErrNoPlayers) || errors.Is(err, ErrRecalcInProgress) {
			s.logger.Debug("Recalc skipped", zap.Error(err))
			return
		}
		s.logger.Error("Rating recalculation failed", zap.Error(err))
		return
	}

	s.logger.Info("Rating recalculation completed",
		zap.Int("players", summary.Players),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
		zap.Duration("elapsed", time.Since(start)))
}
