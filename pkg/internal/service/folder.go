package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/queue"
	"github.com/yeisme/dataroom/pkg/tracing"
)

// maxFolderDepth 向上遍历父链时的最大深度，防止异常数据导致死循环.
const maxFolderDepth = 256

const (
	msgFolderNotFound       = "Folder not found"
	msgFolderNameRequired   = "Folder name is required"
	msgFolderNameConflict   = "A folder with this name already exists in this location"
	msgFolderHasContents    = "Cannot delete folder with contents. Please move or delete all contents first."
	msgFolderMoveNotFound   = "Folder not found or access denied"
	msgTargetParentNotFound = "Target parent folder not found or access denied"
	msgFolderMoveCycle      = "Cannot move folder into itself or its descendant"
)

// FolderService 文件夹树管理.
type FolderService struct {
	deps
}

// NewFolderService 从 context 构造 FolderService.
func NewFolderService(ctx context.Context) *FolderService {
	return &FolderService{deps: depsFromContext(ctx)}
}

func folderRef(f *model.Folder) queue.FolderRef {
	return queue.FolderRef{ID: f.ID, UserID: f.UserID, ParentID: f.ParentID, Name: f.Name}
}

// emptyToNil 将空字符串视为根目录.
func emptyToNil(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}

	return id
}

// scopeParent 按父目录过滤，nil 表示根目录.
func scopeParent(db *gorm.DB, parentID *string) *gorm.DB {
	if parentID == nil {
		return db.Where("parent_id IS NULL")
	}

	return db.Where("parent_id = ?", *parentID)
}

// scopeFolder 按所在文件夹过滤文件，nil 表示根目录.
func scopeFolder(db *gorm.DB, folderID *string) *gorm.DB {
	if folderID == nil {
		return db.Where("folder_id IS NULL")
	}

	return db.Where("folder_id = ?", *folderID)
}

// findOwned 查询属于 userID 的文件夹，不存在时返回 msg 对应的 404.
func findOwned(db *gorm.DB, userID, folderID, msg string) (*model.Folder, error) {
	folder, err := ownedFolder(db, userID, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msg)
		}

		return nil, fmt.Errorf("find folder: %w", err)
	}

	return folder, nil
}

// siblingExists 检查同一父目录下是否已有同名文件夹，excludeID 非空时排除自身.
func siblingExists(db *gorm.DB, userID string, parentID *string, name, excludeID string) (bool, error) {
	q := scopeParent(db.Model(&model.Folder{}).Where("user_id = ? AND name = ?", userID, name), parentID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check sibling: %w", err)
	}

	return n > 0, nil
}

// List 返回 parentID 下的直接子文件夹，nil 表示根目录，按名称排序.
func (s *FolderService) List(ctx context.Context, userID string, parentID *string) ([]model.Folder, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	folders := make([]model.Folder, 0)

	q := scopeParent(db.Where("user_id = ?", userID), emptyToNil(parentID))
	if err := q.Order("name ASC").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	return folders, nil
}

// RootContents 返回根目录下的文件夹与文件.
func (s *FolderService) RootContents(ctx context.Context, userID string) (*types.FolderContents, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	folders, files, err := s.loadLevel(ctx, db, userID, nil)
	if err != nil {
		return nil, err
	}

	return &types.FolderContents{
		CurrentFolder: nil,
		Folders:       folders,
		Files:         files,
		Breadcrumbs:   []types.Breadcrumb{},
	}, nil
}

// Contents 返回指定文件夹的内容与面包屑.
func (s *FolderService) Contents(ctx context.Context, userID, folderID string) (*types.FolderContents, error) {
	if folderID == "root" {
		return nil, badRequest("Use /folders/root/contents for root folder")
	}

	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	current, err := findOwned(db, userID, folderID, msgFolderNotFound)
	if err != nil {
		return nil, err
	}

	var (
		folders     []types.FolderWithCount
		files       []types.FileInfo
		breadcrumbs []types.Breadcrumb
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		folders, files, err = s.loadLevel(gctx, db, userID, &current.ID)

		return err
	})

	g.Go(func() error {
		var err error

		breadcrumbs, err = s.Breadcrumbs(gctx, userID, current)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.FolderContents{
		CurrentFolder: current,
		Folders:       folders,
		Files:         files,
		Breadcrumbs:   breadcrumbs,
	}, nil
}

// loadLevel 加载某一层级的子文件夹（带文件数）与文件.
func (s *FolderService) loadLevel(ctx context.Context, db *gorm.DB, userID string, parentID *string) ([]types.FolderWithCount, []types.FileInfo, error) {
	var (
		folders []model.Folder
		files   []model.File
		counts  map[string]int64
	)

	db = db.WithContext(ctx)

	if err := scopeParent(db.Where("user_id = ?", userID), parentID).Order("name ASC").Find(&folders).Error; err != nil {
		return nil, nil, fmt.Errorf("list folders: %w", err)
	}

	if err := scopeFolder(db.Where("user_id = ?", userID), parentID).Order("original_name ASC").Find(&files).Error; err != nil {
		return nil, nil, fmt.Errorf("list files: %w", err)
	}

	counts, err := fileCounts(db, folders)
	if err != nil {
		return nil, nil, err
	}

	out := make([]types.FolderWithCount, 0, len(folders))
	for _, f := range folders {
		out = append(out, types.FolderWithCount{Folder: f, FileCount: counts[f.ID]})
	}

	return out, types.NewFileInfos(files), nil
}

// fileCounts 统计每个文件夹的直接子文件数.
func fileCounts(db *gorm.DB, folders []model.Folder) (map[string]int64, error) {
	counts := make(map[string]int64, len(folders))
	if len(folders) == 0 {
		return counts, nil
	}

	ids := make([]string, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}

	var rows []struct {
		FolderID string
		Count    int64
	}

	err := db.Model(&model.File{}).
		Select("folder_id, COUNT(*) AS count").
		Where("folder_id IN ?", ids).
		Group("folder_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}

	for _, r := range rows {
		counts[r.FolderID] = r.Count
	}

	return counts, nil
}

// Breadcrumbs 从文件夹向上遍历到根目录，结果按根目录在前排列.
func (s *FolderService) Breadcrumbs(ctx context.Context, userID string, folder *model.Folder) ([]types.Breadcrumb, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	crumbs := []types.Breadcrumb{{ID: folder.ID, Name: folder.Name, Path: "/" + folder.Name}}
	parentID := folder.ParentID

	for depth := 0; parentID != nil && depth < maxFolderDepth; depth++ {
		var parent model.Folder
		if err := db.Where("id = ? AND user_id = ?", *parentID, userID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}

			return nil, fmt.Errorf("load breadcrumb: %w", err)
		}

		crumbs = append(crumbs, types.Breadcrumb{ID: parent.ID, Name: parent.Name, Path: "/" + parent.Name})
		parentID = parent.ParentID
	}

	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}

	return crumbs, nil
}

// Create 在 parentID 下创建文件夹.
func (s *FolderService) Create(ctx context.Context, userID string, req *types.CreateFolderRequest) (*model.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, badRequest(msgFolderNameRequired)
	}

	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	parentID := emptyToNil(req.ParentID)
	folder := &model.Folder{
		UserID:      userID,
		ParentID:    parentID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			if _, err := findOwned(tx, userID, *parentID, "Parent folder not found"); err != nil {
				return err
			}
		}

		exists, err := siblingExists(tx, userID, parentID, name, "")
		if err != nil {
			return err
		}

		if exists {
			return conflict(msgFolderNameConflict)
		}

		if err := tx.Create(folder).Error; err != nil {
			return fmt.Errorf("create folder: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	queue.Emit(ctx, s.events, queue.TopicFolderCreated, queue.FolderCreatedPayload{Folder: folderRef(folder)})

	return folder, nil
}

// Rename 重命名文件夹.
func (s *FolderService) Rename(ctx context.Context, userID, folderID string, req *types.UpdateFolderRequest) (*model.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, badRequest(msgFolderNameRequired)
	}

	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	var (
		folder  *model.Folder
		oldName string
	)

	err = db.Transaction(func(tx *gorm.DB) error {
		var err error

		folder, err = findOwned(tx, userID, folderID, msgFolderNotFound)
		if err != nil {
			return err
		}

		exists, err := siblingExists(tx, userID, folder.ParentID, name, folder.ID)
		if err != nil {
			return err
		}

		if exists {
			return conflict(msgFolderNameConflict)
		}

		oldName = folder.Name

		if err := tx.Model(folder).Update("name", name).Error; err != nil {
			return fmt.Errorf("rename folder: %w", err)
		}

		folder.Name = name

		return nil
	})
	if err != nil {
		return nil, err
	}

	queue.Emit(ctx, s.events, queue.TopicFolderRenamed, queue.FolderRenamedPayload{Folder: folderRef(folder), OldName: oldName})

	return folder, nil
}

// Delete 删除空文件夹，含子文件夹或文件时返回 409.
func (s *FolderService) Delete(ctx context.Context, userID, folderID string) error {
	db, err := s.dbx(ctx)
	if err != nil {
		return err
	}

	var folder *model.Folder

	err = db.Transaction(func(tx *gorm.DB) error {
		var err error

		folder, err = findOwned(tx, userID, folderID, msgFolderNotFound)
		if err != nil {
			return err
		}

		var subfolders, files int64
		if err := tx.Model(&model.Folder{}).Where("parent_id = ?", folder.ID).Count(&subfolders).Error; err != nil {
			return fmt.Errorf("count subfolders: %w", err)
		}

		if err := tx.Model(&model.File{}).Where("folder_id = ?", folder.ID).Count(&files).Error; err != nil {
			return fmt.Errorf("count files: %w", err)
		}

		if subfolders > 0 || files > 0 {
			return conflict(msgFolderHasContents)
		}

		if err := tx.Delete(&model.Folder{}, "id = ?", folder.ID).Error; err != nil {
			return fmt.Errorf("delete folder: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	queue.Emit(ctx, s.events, queue.TopicFolderDeleted, queue.FolderDeletedPayload{Folder: folderRef(folder)})

	return nil
}

// Move 将文件夹移动到 parentID 下，nil 表示根目录.
// 从目标父目录沿 parent_id 向上遍历，遇到被移动的文件夹即拒绝.
func (s *FolderService) Move(ctx context.Context, userID, folderID string, parentID *string) (_ *model.Folder, err error) {
	ctx, span := tracing.StartSpan(ctx, "folder.move")
	defer func() { tracing.EndSpan(span, err) }()

	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	parentID = emptyToNil(parentID)

	var (
		folder *model.Folder
		from   *string
	)

	err = db.Transaction(func(tx *gorm.DB) error {
		var err error

		folder, err = findOwned(tx, userID, folderID, msgFolderMoveNotFound)
		if err != nil {
			return err
		}

		if parentID != nil {
			if *parentID == folder.ID {
				return badRequest(msgFolderMoveCycle)
			}

			target, err := findOwned(tx, userID, *parentID, msgTargetParentNotFound)
			if err != nil {
				return err
			}

			descendant, err := isAncestor(tx, userID, folder.ID, target)
			if err != nil {
				return err
			}

			if descendant {
				return badRequest(msgFolderMoveCycle)
			}
		}

		exists, err := siblingExists(tx, userID, parentID, folder.Name, folder.ID)
		if err != nil {
			return err
		}

		if exists {
			return conflict(msgFolderNameConflict)
		}

		from = folder.ParentID

		if err := tx.Model(folder).Update("parent_id", parentID).Error; err != nil {
			return fmt.Errorf("move folder: %w", err)
		}

		folder.ParentID = parentID

		return nil
	})
	if err != nil {
		return nil, err
	}

	queue.Emit(ctx, s.events, queue.TopicFolderMoved, queue.FolderMovedPayload{
		Folder:       folderRef(folder),
		FromParentID: from,
		ToParentID:   parentID,
	})

	return folder, nil
}

// isAncestor 判断 ancestorID 是否位于 start 的父链上（含 start 自身）.
func isAncestor(db *gorm.DB, userID, ancestorID string, start *model.Folder) (bool, error) {
	current := start

	for depth := 0; depth < maxFolderDepth; depth++ {
		if current.ID == ancestorID {
			return true, nil
		}

		if current.ParentID == nil {
			return false, nil
		}

		var parent model.Folder
		if err := db.Where("id = ? AND user_id = ?", *current.ParentID, userID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}

			return false, fmt.Errorf("walk ancestors: %w", err)
		}

		current = &parent
	}

	return false, fmt.Errorf("folder tree deeper than %d levels", maxFolderDepth)
}
