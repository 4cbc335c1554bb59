// Package queue 定义消息主题常量与分组，供发布/订阅使用.
package queue

// 主题命名规范：dr.<域>.<动作>，发布后保持稳定.
// 域：user(用户)、file(文件)、folder(文件夹).

const (
	// 用户领域.
	TopicUserSignedUp    = "dr.user.signed_up"    // 新用户注册成功
	TopicUserRoleChanged = "dr.user.role_changed" // 管理员修改了用户角色

	// 文件领域.
	TopicFileUploaded = "dr.file.uploaded" // 对象已写入存储且元数据已入库
	TopicFileUpdated  = "dr.file.updated"  // 描述、标签或可见性变更
	TopicFileDeleted  = "dr.file.deleted"  // 对象与元数据已删除
	TopicFileMoved    = "dr.file.moved"    // 文件移动到其它文件夹

	// 文件夹领域.
	TopicFolderCreated = "dr.folder.created"
	TopicFolderRenamed = "dr.folder.renamed"
	TopicFolderMoved   = "dr.folder.moved"
	TopicFolderDeleted = "dr.folder.deleted"
)

// 主题分组，用于批量订阅.
var (
	UserTopics   = []string{TopicUserSignedUp, TopicUserRoleChanged}
	FileTopics   = []string{TopicFileUploaded, TopicFileUpdated, TopicFileDeleted, TopicFileMoved}
	FolderTopics = []string{TopicFolderCreated, TopicFolderRenamed, TopicFolderMoved, TopicFolderDeleted}
)

// AllTopics 返回全部主题.
func AllTopics() []string {
	all := make([]string, 0, len(UserTopics)+len(FileTopics)+len(FolderTopics))
	all = append(all, UserTopics...)
	all = append(all, FileTopics...)

	return append(all, FolderTopics...)
}
