package types

import (
	"io"
	"time"

	"github.com/yeisme/dataroom/pkg/internal/model"
)

// UploadFileInput 上传文件的输入，由 handler 从 multipart 表单中解析.
type UploadFileInput struct {
	Reader       io.Reader
	OriginalName string
	MimeType     string
	Size         int64
	IsPublic     bool
	Description  string
	Tags         []string
	FolderID     *string
}

// UpdateFileRequest 更新文件元数据请求，字段为 nil 表示不修改.
type UpdateFileRequest struct {
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsPublic    *bool     `json:"isPublic,omitempty"`
}

// MoveFileRequest 移动文件请求，FolderID 为 nil 表示移到根目录.
type MoveFileRequest struct {
	FolderID *string `json:"folderId"`
}

// FileInfo 文件响应体，isPublic 为布尔值，tags 为数组.
type FileInfo struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	FolderID      *string   `json:"folderId"`
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"originalName"`
	MimeType      string    `json:"mimeType"`
	Size          int64     `json:"size"`
	FormattedSize string    `json:"formattedSize,omitempty"`
	BlobURL       string    `json:"blobUrl"`
	BlobPathname  string    `json:"blobPathname"`
	IsPublic      bool      `json:"isPublic"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewFileInfo 将模型转换为响应体.
func NewFileInfo(f *model.File) FileInfo {
	return FileInfo{
		ID:            f.ID,
		UserID:        f.UserID,
		FolderID:      f.FolderID,
		Filename:      f.Filename,
		OriginalName:  f.OriginalName,
		MimeType:      f.MimeType,
		Size:          f.Size,
		FormattedSize: FormatFileSize(f.Size),
		BlobURL:       f.BlobURL,
		BlobPathname:  f.BlobPathname,
		IsPublic:      f.Public(),
		Description:   f.Description,
		Tags:          f.TagList(),
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// NewFileInfos 批量转换.
func NewFileInfos(files []model.File) []FileInfo {
	out := make([]FileInfo, 0, len(files))
	for i := range files {
		out = append(out, NewFileInfo(&files[i]))
	}

	return out
}

// FileResponse 单个文件响应.
type FileResponse struct {
	Message string   `json:"message"`
	File    FileInfo `json:"file"`
}

// FileListResponse 文件列表响应.
type FileListResponse struct {
	Message string     `json:"message"`
	Files   []FileInfo `json:"files"`
	Count   int        `json:"count"`
}
