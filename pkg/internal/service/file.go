package service

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
	"gorm.io/gorm"

	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/metrics"
	"github.com/yeisme/dataroom/pkg/queue"
	"github.com/yeisme/dataroom/pkg/tracing"
)

const (
	msgFileNotFound         = "File not found or access denied"
	msgTargetFolderNotFound = "Target folder not found or access denied"
)

var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(crand.Reader, 0)
)

// newBlobSuffix 生成对象键的随机部分.
func newBlobSuffix(t time.Time) string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	return strings.ToLower(ulid.MustNew(ulid.Timestamp(t), ulidEntropy).String())
}

// buildBlobKey 构建对象键: {userId}/{unixMillis}-{random}.{ext}，原文件名无扩展名时省略后缀.
func buildBlobKey(userID, originalName string, now time.Time) string {
	key := fmt.Sprintf("%s/%d-%s", userID, now.UnixMilli(), newBlobSuffix(now))

	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalName)), "."); ext != "" {
		key += "." + ext
	}

	return key
}

// formatLimitMB 以 MB 表示大小上限，例如 10485760 -> "10".
func formatLimitMB(size int64) string {
	return strconv.FormatFloat(float64(size)/(1024*1024), 'f', -1, 64)
}

// FileService 文件上传与元数据管理.
type FileService struct {
	deps
}

// NewFileService 从 context 构造 FileService.
func NewFileService(ctx context.Context) *FileService {
	return &FileService{deps: depsFromContext(ctx)}
}

func fileRef(f *model.File) queue.FileRef {
	return queue.FileRef{
		ID:           f.ID,
		UserID:       f.UserID,
		FolderID:     f.FolderID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		BlobPathname: f.BlobPathname,
	}
}

// validateMeta 校验描述与标签限制.
func (s *FileService) validateMeta(description *string, tags []string) error {
	limits := s.cfg.Upload

	if description != nil && len([]rune(*description)) > limits.MaxDescriptionLength {
		return badRequest(fmt.Sprintf("Description must be no more than %d characters", limits.MaxDescriptionLength))
	}

	if len(tags) > limits.MaxTags {
		return badRequest(fmt.Sprintf("No more than %d tags are allowed", limits.MaxTags))
	}

	for _, tag := range tags {
		if len([]rune(tag)) > limits.MaxTagLength {
			return badRequest(fmt.Sprintf("Tag must be no more than %d characters", limits.MaxTagLength))
		}
	}

	return nil
}

// ownedFolder 查询属于 userID 的文件夹.
func ownedFolder(db *gorm.DB, userID, folderID string) (*model.Folder, error) {
	var folder model.Folder

	err := db.Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error
	if err != nil {
		return nil, err
	}

	return &folder, nil
}

// ownedFile 查询属于 userID 的文件，不存在返回 404.
func (s *FileService) ownedFile(ctx context.Context, userID, fileID string) (*model.File, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	var file model.File
	if err := db.Where("id = ? AND user_id = ?", fileID, userID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgFileNotFound)
		}

		return nil, fmt.Errorf("find file: %w", err)
	}

	return &file, nil
}

// multipartOverhead 边界与其余表单字段的余量.
const multipartOverhead = 1 << 20

// MaxRequestBytes 上传请求体的上限，超出时不再继续读取.
func (s *FileService) MaxRequestBytes() int64 {
	return s.cfg.Upload.MaxSize + multipartOverhead
}

// FileTooLarge 超出上传大小限制时的 400.
func (s *FileService) FileTooLarge() *Error {
	return badRequest(fmt.Sprintf("File size exceeds limit of %sMB", formatLimitMB(s.cfg.Upload.MaxSize)))
}

// Upload 校验后写入对象存储并保存元数据. 元数据写入失败时删除已上传的对象.
func (s *FileService) Upload(ctx context.Context, userID string, in *types.UploadFileInput) (_ *model.File, err error) {
	ctx, span := tracing.StartSpan(ctx, "file.upload")
	defer func() { tracing.EndSpan(span, err) }()

	if in == nil || in.Reader == nil {
		return nil, badRequest("No file provided")
	}

	limits := s.cfg.Upload
	if in.Size > limits.MaxSize {
		return nil, s.FileTooLarge()
	}

	if !limits.IsAllowedMIME(in.MimeType) {
		return nil, badRequest(fmt.Sprintf("File type %s is not allowed", in.MimeType))
	}

	if err := s.validateMeta(&in.Description, in.Tags); err != nil {
		return nil, err
	}

	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	if s.blobs == nil {
		return nil, ErrNotConfigured
	}

	if in.FolderID != nil && *in.FolderID == "" {
		in.FolderID = nil
	}

	if in.FolderID != nil {
		if _, err := ownedFolder(db, userID, *in.FolderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("Folder not found")
			}

			return nil, fmt.Errorf("find folder: %w", err)
		}
	}

	key := buildBlobKey(userID, in.OriginalName, time.Now())

	obj, err := s.blobs.Put(ctx, key, in.Reader, in.Size, in.MimeType)
	if err != nil {
		return nil, fmt.Errorf("put blob: %w", err)
	}

	file := &model.File{
		UserID:       userID,
		FolderID:     in.FolderID,
		Filename:     key,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         obj.Size,
		BlobURL:      obj.URL,
		BlobPathname: obj.Key,
		Description:  in.Description,
	}
	file.SetPublic(in.IsPublic)

	if err := file.SetTags(in.Tags); err != nil {
		_ = s.blobs.Delete(ctx, key)
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	if err := db.Create(file).Error; err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			l := ctxPkg.Logger(ctx)
			l.Error().Err(delErr).Str("key", key).Msg("rollback blob failed")
		}

		return nil, fmt.Errorf("save file metadata: %w", err)
	}

	metrics.FilesUploaded.Inc()
	metrics.UploadBytes.Add(float64(file.Size))

	queue.Emit(ctx, s.events, queue.TopicFileUploaded, queue.FileUploadedPayload{
		File:     fileRef(file),
		IsPublic: file.Public(),
	})

	return file, nil
}

// ListMine 返回用户的全部文件，按创建时间倒序.
func (s *FileService) ListMine(ctx context.Context, userID string) ([]model.File, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]model.File, 0)
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return files, nil
}

// Get 返回公开文件或用户自己的文件.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*model.File, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	var file model.File

	err = db.Where("id = ? AND (user_id = ? OR is_public = 1)", fileID, userID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgFileNotFound)
		}

		return nil, fmt.Errorf("find file: %w", err)
	}

	return &file, nil
}

// PublicURL 返回公开文件的对象地址，匿名访问使用.
func (s *FileService) PublicURL(ctx context.Context, fileID string) (string, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return "", err
	}

	var file model.File
	if err := db.Where("id = ? AND is_public = 1", fileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", notFound("File not found or not public")
		}

		return "", fmt.Errorf("find file: %w", err)
	}

	return file.BlobURL, nil
}

// Update 部分更新描述、标签与可见性，仅文件所有者可操作.
func (s *FileService) Update(ctx context.Context, userID, fileID string, req *types.UpdateFileRequest) (*model.File, error) {
	file, err := s.ownedFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	var tags []string
	if req.Tags != nil {
		tags = normalizeTags(*req.Tags)
	}

	if err := s.validateMeta(req.Description, tags); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	fields := make([]string, 0, 3)

	if req.Description != nil {
		updates["description"] = *req.Description
		fields = append(fields, "description")
	}

	if req.Tags != nil {
		if err := file.SetTags(tags); err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}

		updates["tags"] = file.Tags
		fields = append(fields, "tags")
	}

	if req.IsPublic != nil {
		updates["is_public"] = model.BoolToInt(*req.IsPublic)
		fields = append(fields, "isPublic")
	}

	if len(updates) > 0 {
		db, _ := s.dbx(ctx)
		if err := db.Model(file).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update file: %w", err)
		}

		queue.Emit(ctx, s.events, queue.TopicFileUpdated, queue.FileUpdatedPayload{File: fileRef(file), Fields: fields})
	}

	return s.ownedFile(ctx, userID, fileID)
}

// Delete 删除对象与元数据，仅文件所有者可操作.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	file, err := s.ownedFile(ctx, userID, fileID)
	if err != nil {
		return err
	}

	if s.blobs == nil {
		return ErrNotConfigured
	}

	if err := s.blobs.Delete(ctx, file.BlobPathname); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}

	db, _ := s.dbx(ctx)
	if err := db.Delete(&model.File{}, "id = ?", file.ID).Error; err != nil {
		return fmt.Errorf("delete file metadata: %w", err)
	}

	queue.Emit(ctx, s.events, queue.TopicFileDeleted, queue.FileDeletedPayload{File: fileRef(file)})

	return nil
}

// Move 将文件移动到目标文件夹，folderID 为 nil 表示移到根目录.
func (s *FileService) Move(ctx context.Context, userID, fileID string, folderID *string) (*model.File, error) {
	file, err := s.ownedFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	if folderID != nil && *folderID == "" {
		folderID = nil
	}

	db, _ := s.dbx(ctx)

	if folderID != nil {
		if _, err := ownedFolder(db, userID, *folderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound(msgTargetFolderNotFound)
			}

			return nil, fmt.Errorf("find folder: %w", err)
		}
	}

	from := file.FolderID

	if err := db.Model(file).Update("folder_id", folderID).Error; err != nil {
		return nil, fmt.Errorf("move file: %w", err)
	}

	file.FolderID = folderID

	queue.Emit(ctx, s.events, queue.TopicFileMoved, queue.FileMovedPayload{
		File:         fileRef(file),
		FromFolderID: from,
		ToFolderID:   folderID,
	})

	return s.ownedFile(ctx, userID, fileID)
}

// ParseTags 解析逗号分隔的标签.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	return normalizeTags(strings.Split(raw, ","))
}

// normalizeTags 去除空白并丢弃空标签.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}

	return out
}
