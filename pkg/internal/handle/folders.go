package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/middleware"
)

// ListFolders 列出 parentId 下的文件夹，缺省为根目录.
//
//	@Summary		文件夹列表
//	@Tags			文件夹
//	@Produce		json
//	@Security		BearerAuth
//	@Param			parentId	query		string	false	"父文件夹 ID"
//	@Success		200			{object}	types.FolderListResponse
//	@Router			/folders [get]
func ListFolders(c *gin.Context) {
	ctx := c.Request.Context()

	var parentID *string
	if p := c.Query("parentId"); p != "" {
		parentID = &p
	}

	folders, err := service.NewFolderService(ctx).List(ctx, middleware.GetUserID(c), parentID)
	if err != nil {
		respondError(c, err, "list folders")
		return
	}

	c.JSON(http.StatusOK, types.FolderListResponse{Message: "Folders retrieved successfully", Folders: folders})
}

// RootContents 根目录内容.
//
//	@Summary		根目录内容
//	@Tags			文件夹
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	types.FolderContentsResponse
//	@Router			/folders/root/contents [get]
func RootContents(c *gin.Context) {
	ctx := c.Request.Context()

	contents, err := service.NewFolderService(ctx).RootContents(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "root contents")
		return
	}

	c.JSON(http.StatusOK, types.FolderContentsResponse{Message: "Root contents retrieved successfully", FolderContents: *contents})
}

// FolderContents 文件夹内容与面包屑.
//
//	@Summary		文件夹内容
//	@Tags			文件夹
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"文件夹 ID"
//	@Success		200	{object}	types.FolderContentsResponse
//	@Failure		400	{object}	types.ErrorResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/folders/{id}/contents [get]
func FolderContents(c *gin.Context) {
	ctx := c.Request.Context()

	contents, err := service.NewFolderService(ctx).Contents(ctx, middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "folder contents")
		return
	}

	c.JSON(http.StatusOK, types.FolderContentsResponse{Message: "Folder contents retrieved successfully", FolderContents: *contents})
}

// CreateFolder 创建文件夹.
//
//	@Summary		创建文件夹
//	@Tags			文件夹
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		types.CreateFolderRequest	true	"名称与父文件夹"
//	@Success		200		{object}	types.FolderResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Failure		409		{object}	types.ErrorResponse
//	@Router			/folders [post]
func CreateFolder(c *gin.Context) {
	var req types.CreateFolderRequest
	if !bindJSON(c, &req, false) {
		return
	}

	ctx := c.Request.Context()

	folder, err := service.NewFolderService(ctx).Create(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err, "create folder")
		return
	}

	c.JSON(http.StatusOK, types.FolderResponse{Message: "Folder created successfully", Folder: folder})
}

// UpdateFolder 重命名文件夹.
//
//	@Summary		重命名文件夹
//	@Tags			文件夹
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"文件夹 ID"
//	@Param			body	body		types.UpdateFolderRequest	true	"新名称"
//	@Success		200		{object}	types.FolderResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Failure		409		{object}	types.ErrorResponse
//	@Router			/folders/{id} [put]
func UpdateFolder(c *gin.Context) {
	var req types.UpdateFolderRequest
	if !bindJSON(c, &req, true) {
		return
	}

	ctx := c.Request.Context()

	folder, err := service.NewFolderService(ctx).Rename(ctx, middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "rename folder")
		return
	}

	c.JSON(http.StatusOK, types.FolderResponse{Message: "Folder updated successfully", Folder: folder})
}

// DeleteFolder 删除空文件夹.
//
//	@Summary		删除文件夹
//	@Tags			文件夹
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"文件夹 ID"
//	@Success		200	{object}	types.MessageResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Failure		409	{object}	types.ErrorResponse
//	@Router			/folders/{id} [delete]
func DeleteFolder(c *gin.Context) {
	ctx := c.Request.Context()

	if err := service.NewFolderService(ctx).Delete(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "delete folder")
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: "Folder deleted successfully"})
}

// MoveFolder 移动文件夹，parentId 为 null 时移到根目录.
//
//	@Summary		移动文件夹
//	@Tags			文件夹
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"文件夹 ID"
//	@Param			body	body		types.MoveFolderRequest	true	"目标父文件夹"
//	@Success		200		{object}	types.FolderResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Failure		409		{object}	types.ErrorResponse
//	@Router			/folders/{id}/move [patch]
func MoveFolder(c *gin.Context) {
	var req types.MoveFolderRequest
	if !bindJSON(c, &req, true) {
		return
	}

	ctx := c.Request.Context()

	folder, err := service.NewFolderService(ctx).Move(ctx, middleware.GetUserID(c), c.Param("id"), req.ParentID)
	if err != nil {
		respondError(c, err, "move folder")
		return
	}

	c.JSON(http.StatusOK, types.FolderResponse{Message: "Folder moved successfully", Folder: folder})
}
