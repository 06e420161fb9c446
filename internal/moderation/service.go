// internal/moderation/service.go

package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

var (
	ErrSelfReport      = errors.New("cannot report yourself")
	ErrSelfBlock       = errors.New("cannot block yourself")
	ErrTooManyReports  = errors.New("report limit reached, try again later")
	ErrInvalidAction   = errors.New("invalid moderation action")
	ErrStatusDowngrade = errors.New("action would lower the current status")
)

var (
	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amoria_reports_total",
		Help: "Reports filed, by category",
	}, []string{"category"})

	escalationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amoria_escalations_total",
		Help: "Automatic escalation actions applied, by action",
	}, []string{"action"})
)

// Notifier tells a user their account status changed. Implemented by
// the notifications package.
type Notifier interface {
	AccountStatusChanged(ctx context.Context, userID int64, status, action string)
}

type Service interface {
	ReportUser(ctx context.Context, reporterID int64, req *ReportRequest) (*Report, error)
	BlockUser(ctx context.Context, blockerID, blockedID int64) error
	UnblockUser(ctx context.Context, blockerID, blockedID int64) error
	GetBlocks(ctx context.Context, blockerID int64) ([]*Block, error)

	// IsBlockedEither satisfies the block checks of the profile and
	// matching packages.
	IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error)

	// Admin surface
	GetReportQueue(ctx context.Context, status string, limit, offset int) ([]*Report, error)
	ReviewReport(ctx context.Context, adminID, reportID int64, status string) error
	GetUserRecord(ctx context.Context, userID int64) (*UserRecord, error)
	ApplyManualAction(ctx context.Context, adminID, userID int64, action string, reason string) error
	ReinstateUser(ctx context.Context, adminID, userID int64) error

	StartBanExpiry(ctx context.Context, interval time.Duration)
}

// UserRecord bundles a user's moderation history for the back office
type UserRecord struct {
	UserID  int64     `json:"user_id"`
	Status  string    `json:"status"`
	Reports []*Report `json:"reports"`
	Actions []*Action `json:"actions"`
}

type Config struct {
	ReportWindow   time.Duration // rolling window for distinct-reporter counts
	ReportsPerHour int
}

type service struct {
	repo     Repository
	redis    *redis.Client
	notifier Notifier
	cfg      Config
}

func NewService(repo Repository, redisClient *redis.Client, notifier Notifier, cfg Config) Service {
	if cfg.ReportWindow <= 0 {
		cfg.ReportWindow = 30 * 24 * time.Hour
	}
	if cfg.ReportsPerHour <= 0 {
		cfg.ReportsPerHour = 10
	}
	return &service{repo: repo, redis: redisClient, notifier: notifier, cfg: cfg}
}

func (s *service) ReportUser(ctx context.Context, reporterID int64, req *ReportRequest) (*Report, error) {
	if req.ReportedID == reporterID {
		return nil, ErrSelfReport
	}

	if err := s.checkReportRate(ctx, reporterID); err != nil {
		return nil, err
	}

	report := &Report{
		ReporterID: reporterID,
		ReportedID: req.ReportedID,
		Category:   req.Category,
	}
	if req.Details != "" {
		report.Details = &req.Details
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	reportsTotal.WithLabelValues(req.Category).Inc()

	if err := s.escalate(ctx, req.ReportedID, req.Category); err != nil {
		// The report itself stands even if escalation fails
		log.Printf("moderation: escalate user %d: %v", req.ReportedID, err)
	}

	return report, nil
}

// checkReportRate caps reports per reporter per hour in Redis
func (s *service) checkReportRate(ctx context.Context, reporterID int64) error {
	key := fmt.Sprintf("reports:rate:%d", reporterID)

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check report rate: %w", err)
	}
	if count == 1 {
		s.redis.Expire(ctx, key, time.Hour)
	}
	if count > int64(s.cfg.ReportsPerHour) {
		return ErrTooManyReports
	}
	return nil
}

// escalate applies the category's tier for the current distinct
// reporter count, if it raises the account status.
func (s *service) escalate(ctx context.Context, reportedID int64, category string) error {
	since := time.Now().Add(-s.cfg.ReportWindow)
	reporters, err := s.repo.CountDistinctReporters(ctx, reportedID, category, since)
	if err != nil {
		return err
	}

	action := escalationFor(category, reporters)
	if action == "" {
		return nil
	}

	now := time.Now()
	nextStatus, until := statusFor(action, now)

	current, _, err := s.repo.GetUserStatus(ctx, reportedID)
	if err != nil {
		return err
	}
	if !isUpgrade(current, nextStatus) {
		return nil
	}

	reason := fmt.Sprintf("%d reports for %s", reporters, category)
	if err := s.repo.SetUserStatus(ctx, reportedID, nextStatus, until, &reason); err != nil {
		return err
	}

	record := &Action{
		UserID:      reportedID,
		Action:      action,
		Category:    &category,
		ReportCount: reporters,
		Reason:      &reason,
		Until:       until,
	}
	if err := s.repo.CreateAction(ctx, record); err != nil {
		return err
	}
	escalationsTotal.WithLabelValues(action).Inc()

	if err := s.repo.ResolveReports(ctx, reportedID, category, ReportActioned); err != nil {
		log.Printf("moderation: resolve reports for user %d: %v", reportedID, err)
	}

	s.notifier.AccountStatusChanged(ctx, reportedID, nextStatus, action)
	log.Printf("moderation: user %d escalated to %s (%s)", reportedID, nextStatus, reason)
	return nil
}

func (s *service) BlockUser(ctx context.Context, blockerID, blockedID int64) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	err := s.repo.CreateBlock(ctx, &Block{BlockerID: blockerID, BlockedID: blockedID})
	if errors.Is(err, ErrAlreadyBlocked) {
		return nil // idempotent
	}
	return err
}

func (s *service) UnblockUser(ctx context.Context, blockerID, blockedID int64) error {
	return s.repo.DeleteBlock(ctx, blockerID, blockedID)
}

func (s *service) GetBlocks(ctx context.Context, blockerID int64) ([]*Block, error) {
	return s.repo.GetBlockedUsers(ctx, blockerID)
}

func (s *service) IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error) {
	return s.repo.IsBlockedEither(ctx, userA, userB)
}

func (s *service) GetReportQueue(ctx context.Context, status string, limit, offset int) ([]*Report, error) {
	if status == "" {
		status = ReportPending
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetReportsByStatus(ctx, status, limit, offset)
}

func (s *service) ReviewReport(ctx context.Context, adminID, reportID int64, status string) error {
	if status != ReportReviewed && status != ReportDismissed {
		return ErrInvalidAction
	}
	return s.repo.UpdateReportStatus(ctx, reportID, status, &adminID)
}

func (s *service) GetUserRecord(ctx context.Context, userID int64) (*UserRecord, error) {
	status, _, err := s.repo.GetUserStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	reports, err := s.repo.GetReportsAgainst(ctx, userID)
	if err != nil {
		return nil, err
	}

	actions, err := s.repo.GetUserActions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserRecord{UserID: userID, Status: status, Reports: reports, Actions: actions}, nil
}

// ApplyManualAction lets an admin impose any escalation action
// directly. Manual actions follow the same no-downgrade rule.
func (s *service) ApplyManualAction(ctx context.Context, adminID, userID int64, action string, reason string) error {
	now := time.Now()
	nextStatus, until := statusFor(action, now)
	if nextStatus == "" {
		return ErrInvalidAction
	}

	current, _, err := s.repo.GetUserStatus(ctx, userID)
	if err != nil {
		return err
	}
	if !isUpgrade(current, nextStatus) {
		return ErrStatusDowngrade
	}

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	if err := s.repo.SetUserStatus(ctx, userID, nextStatus, until, reasonPtr); err != nil {
		return err
	}

	record := &Action{
		UserID:    userID,
		Action:    action,
		Reason:    reasonPtr,
		Until:     until,
		CreatedBy: &adminID,
	}
	if err := s.repo.CreateAction(ctx, record); err != nil {
		return err
	}

	s.notifier.AccountStatusChanged(ctx, userID, nextStatus, action)
	return nil
}

// ReinstateUser is the one path that lowers a status: an explicit
// admin decision, recorded like any other action.
func (s *service) ReinstateUser(ctx context.Context, adminID, userID int64) error {
	if err := s.repo.SetUserStatus(ctx, userID, auth.StatusActive, nil, nil); err != nil {
		return err
	}

	record := &Action{
		UserID:    userID,
		Action:    "reinstate",
		CreatedBy: &adminID,
	}
	if err := s.repo.CreateAction(ctx, record); err != nil {
		return err
	}

	s.notifier.AccountStatusChanged(ctx, userID, auth.StatusActive, "reinstate")
	return nil
}

// StartBanExpiry lifts expired temporary bans on a ticker
func (s *service) StartBanExpiry(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if lifted, err := s.repo.ExpireBans(ctx, time.Now()); err != nil {
					log.Printf("moderation: expire bans: %v", err)
				} else if lifted > 0 {
					log.Printf("moderation: lifted %d expired bans", lifted)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
