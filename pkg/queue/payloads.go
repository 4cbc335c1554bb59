package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪 ID，来自请求的 span.
	TraceID string `json:"trace_id,omitempty"`
	// RequestID 触发事件的 HTTP 请求 ID，定时任务产生的事件为空.
	RequestID string `json:"request_id,omitempty"`
	// ActorID 触发事件的用户.
	ActorID string `json:"actor_id,omitempty"`
	// Producer 生产者服务名.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 用户领域 --------------------------

// UserSignedUpPayload 新用户注册.
type UserSignedUpPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// UserRoleChangedPayload 用户角色变更.
type UserRoleChangedPayload struct {
	UserID    string `json:"user_id"`
	OldRole   string `json:"old_role"`
	NewRole   string `json:"new_role"`
	ChangedBy string `json:"changed_by,omitempty"`
}

// -------------------------- 文件领域 --------------------------

// FileRef 标识文件及其存储位置.
type FileRef struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	FolderID     *string `json:"folder_id"`
	OriginalName string  `json:"original_name"`
	MimeType     string  `json:"mime_type,omitempty"`
	Size         int64   `json:"size,omitempty"`
	BlobPathname string  `json:"blob_pathname"`
}

// FileUploadedPayload 文件上传完成.
type FileUploadedPayload struct {
	File     FileRef `json:"file"`
	IsPublic bool    `json:"is_public"`
}

// FileUpdatedPayload 文件元数据变更，Fields 为变更字段名.
type FileUpdatedPayload struct {
	File   FileRef  `json:"file"`
	Fields []string `json:"fields"`
}

// FileDeletedPayload 文件删除.
type FileDeletedPayload struct {
	File FileRef `json:"file"`
}

// FileMovedPayload 文件移动，nil 表示根目录.
type FileMovedPayload struct {
	File         FileRef `json:"file"`
	FromFolderID *string `json:"from_folder_id"`
	ToFolderID   *string `json:"to_folder_id"`
}

// -------------------------- 文件夹领域 --------------------------

// FolderRef 标识文件夹.
type FolderRef struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	ParentID *string `json:"parent_id"`
	Name     string  `json:"name"`
}

// FolderCreatedPayload 文件夹创建.
type FolderCreatedPayload struct {
	Folder FolderRef `json:"folder"`
}

// FolderRenamedPayload 文件夹重命名.
type FolderRenamedPayload struct {
	Folder  FolderRef `json:"folder"`
	OldName string    `json:"old_name"`
}

// FolderMovedPayload 文件夹移动.
type FolderMovedPayload struct {
	Folder       FolderRef `json:"folder"`
	FromParentID *string   `json:"from_parent_id"`
	ToParentID   *string   `json:"to_parent_id"`
}

// FolderDeletedPayload 文件夹删除.
type FolderDeletedPayload struct {
	Folder FolderRef `json:"folder"`
}
