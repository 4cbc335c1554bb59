package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/cache"
	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/queue"
	"github.com/yeisme/dataroom/pkg/rule"
)

const msgUserNotFound = "User not found"

// UserService 用户资料、用户查询与角色管理.
type UserService struct {
	deps
}

// NewUserService 从 context 构造 UserService.
func NewUserService(ctx context.Context) *UserService {
	return &UserService{deps: depsFromContext(ctx)}
}

func profileKey(userID string) string {
	return "profile:" + userID
}

// findUser 按 ID 查询用户，不存在时返回 404.
func (s *UserService) findUser(ctx context.Context, userID string) (*model.User, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgUserNotFound)
		}

		return nil, fmt.Errorf("find user: %w", err)
	}

	return &user, nil
}

// Profile 返回当前用户资料，启用缓存时经由 KV 缓存读取.
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if s.cache == nil || !s.cfg.Cache.Enabled {
		return s.findUser(ctx, userID)
	}

	user, err := cache.GetOrSet(ctx, s.cache, profileKey(userID), func() (model.User, error) {
		u, err := s.findUser(ctx, userID)
		if err != nil {
			return model.User{}, err
		}

		return *u, nil
	}, s.cfg.Cache.ProfileTTL)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// invalidateProfile 删除资料缓存，失败只记录日志.
func (s *UserService) invalidateProfile(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, profileKey(userID)); err != nil {
		l := ctxPkg.Logger(ctx)
		l.Warn().Err(err).Str("profile", userID).Msg("invalidate profile cache failed")
	}
}

// UpdateProfile 部分更新姓名与年龄.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *types.UpdateProfileRequest) (*model.User, error) {
	if req.Empty() {
		return nil, badRequest("At least one field (name or age) is required")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	if err := rule.ValidateStruct(req); err != nil {
		return nil, invalid(err)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}

	if req.Age != nil {
		updates["age"] = *req.Age
	}

	db, _ := s.dbx(ctx)
	if err := db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.invalidateProfile(ctx, userID)

	return s.findUser(ctx, userID)
}

// List 返回全部用户，按创建时间排序.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0)
	if err := db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// Get 按 ID 返回用户.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.findUser(ctx, userID)
}

// UpdateRole 修改用户角色，actorID 为执行操作的管理员.
func (s *UserService) UpdateRole(ctx context.Context, actorID, userID string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, &Error{Status: http.StatusBadRequest, Message: "Invalid role", Err: ErrInvalidRole}
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldRole := user.Role

	db, _ := s.dbx(ctx)
	if err := db.Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.invalidateProfile(ctx, userID)

	queue.Emit(ctx, s.events, queue.TopicUserRoleChanged, queue.UserRoleChangedPayload{
		UserID:    userID,
		OldRole:   string(oldRole),
		NewRole:   string(role),
		ChangedBy: actorID,
	})

	return s.findUser(ctx, userID)
}

// Stats 返回用户总数与角色分布.
func (s *UserService) Stats(ctx context.Context) (*types.UserStats, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Role  model.Role
		Count int64
	}

	if err := db.Model(&model.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	stats := &types.UserStats{RoleDistribution: make(map[model.Role]int64, len(rows))}
	for _, r := range rows {
		stats.RoleDistribution[r.Role] = r.Count
		stats.TotalUsers += r.Count
	}

	return stats, nil
}
