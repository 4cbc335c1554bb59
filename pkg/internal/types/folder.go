package types

import "github.com/yeisme/dataroom/pkg/internal/model"

// CreateFolderRequest 创建文件夹请求，ParentID 为 nil 表示根目录.
type CreateFolderRequest struct {
	Name        string  `json:"name"`
	ParentID    *string `json:"parentId,omitempty"`
	Description string  `json:"description,omitempty"`
}

// UpdateFolderRequest 重命名文件夹请求.
type UpdateFolderRequest struct {
	Name string `json:"name"`
}

// MoveFolderRequest 移动文件夹请求，ParentID 为 nil 表示移到根目录.
type MoveFolderRequest struct {
	ParentID *string `json:"parentId"`
}

// FolderWithCount 带直接子文件数量的文件夹.
type FolderWithCount struct {
	model.Folder
	FileCount int64 `json:"fileCount"`
}

// Breadcrumb 面包屑条目.
type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// FolderContents 文件夹内容，根目录时 CurrentFolder 为 nil.
type FolderContents struct {
	CurrentFolder *model.Folder     `json:"currentFolder"`
	Folders       []FolderWithCount `json:"folders"`
	Files         []FileInfo        `json:"files"`
	Breadcrumbs   []Breadcrumb      `json:"breadcrumbs"`
}

// FolderContentsResponse 文件夹内容响应.
type FolderContentsResponse struct {
	Message string `json:"message"`
	FolderContents
}

// FolderResponse 单个文件夹响应.
type FolderResponse struct {
	Message string        `json:"message"`
	Folder  *model.Folder `json:"folder"`
}

// FolderListResponse 文件夹列表响应.
type FolderListResponse struct {
	Message string         `json:"message"`
	Folders []model.Folder `json:"folders"`
}
