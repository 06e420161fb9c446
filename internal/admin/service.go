// internal/admin/service.go

package admin

import (
	"context"

	"github.com/amoria-app/amoria-backend/internal/moderation"
)

// OnlineCounter reports current websocket connections. Implemented by
// the chat hub.
type OnlineCounter interface {
	ActiveConnections() int
}

type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
	SearchUsers(ctx context.Context, query, status string, limit, offset int) ([]*UserSummary, error)
	GetUser(ctx context.Context, userID int64) (*UserSummary, error)

	GetReportQueue(ctx context.Context, status string, limit, offset int) ([]*moderation.Report, error)
	ReviewReport(ctx context.Context, adminID, reportID int64, status string) error
	GetUserRecord(ctx context.Context, userID int64) (*moderation.UserRecord, error)
	ApplyAction(ctx context.Context, adminID, userID int64, action, reason string) error
	ReinstateUser(ctx context.Context, adminID, userID int64) error
}

type service struct {
	repo   Repository
	mod    moderation.Service
	online OnlineCounter
}

func NewService(repo Repository, mod moderation.Service, online OnlineCounter) Service {
	return &service{repo: repo, mod: mod, online: online}
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.OnlineNow = s.online.ActiveConnections()
	return stats, nil
}

func (s *service) SearchUsers(ctx context.Context, query, status string, limit, offset int) ([]*UserSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.SearchUsers(ctx, query, status, limit, offset)
}

func (s *service) GetUser(ctx context.Context, userID int64) (*UserSummary, error) {
	return s.repo.GetUserSummary(ctx, userID)
}

func (s *service) GetReportQueue(ctx context.Context, status string, limit, offset int) ([]*moderation.Report, error) {
	return s.mod.GetReportQueue(ctx, status, limit, offset)
}

func (s *service) ReviewReport(ctx context.Context, adminID, reportID int64, status string) error {
	return s.mod.ReviewReport(ctx, adminID, reportID, status)
}

func (s *service) GetUserRecord(ctx context.Context, userID int64) (*moderation.UserRecord, error) {
	return s.mod.GetUserRecord(ctx, userID)
}

func (s *service) ApplyAction(ctx context.Context, adminID, userID int64, action, reason string) error {
	return s.mod.ApplyManualAction(ctx, adminID, userID, action, reason)
}

func (s *service) ReinstateUser(ctx context.Context, adminID, userID int64) error {
	return s.mod.ReinstateUser(ctx, adminID, userID)
}
