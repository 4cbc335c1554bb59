package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/middleware"
)

// MyFiles 列出当前用户的全部文件.
//
//	@Summary		我的文件
//	@Tags			文件
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	types.FileListResponse
//	@Router			/files/my-files [get]
func MyFiles(c *gin.Context) {
	ctx := c.Request.Context()

	files, err := service.NewFileService(ctx).ListMine(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "list files")
		return
	}

	infos := types.NewFileInfos(files)
	c.JSON(http.StatusOK, types.FileListResponse{Message: "Files retrieved successfully", Files: infos, Count: len(infos)})
}

// GetFile 查询单个文件，公开文件或本人文件可读.
//
//	@Summary		文件详情
//	@Tags			文件
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"文件 ID"
//	@Success		200	{object}	types.FileResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/files/file/{id} [get]
func GetFile(c *gin.Context) {
	ctx := c.Request.Context()

	file, err := service.NewFileService(ctx).Get(ctx, middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "get file")
		return
	}

	c.JSON(http.StatusOK, types.FileResponse{Message: "File retrieved successfully", File: types.NewFileInfo(file)})
}

// UpdateFile 更新文件描述、标签或可见性.
//
//	@Summary		更新文件
//	@Tags			文件
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"文件 ID"
//	@Param			body	body		types.UpdateFileRequest	true	"要修改的字段"
//	@Success		200		{object}	types.FileResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/files/file/{id} [put]
func UpdateFile(c *gin.Context) {
	var req types.UpdateFileRequest
	if !bindJSON(c, &req, true) {
		return
	}

	ctx := c.Request.Context()

	file, err := service.NewFileService(ctx).Update(ctx, middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "update file")
		return
	}

	c.JSON(http.StatusOK, types.FileResponse{Message: "File updated successfully", File: types.NewFileInfo(file)})
}

// DeleteFile 删除文件.
//
//	@Summary		删除文件
//	@Tags			文件
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"文件 ID"
//	@Success		200	{object}	types.MessageResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/files/file/{id} [delete]
func DeleteFile(c *gin.Context) {
	ctx := c.Request.Context()

	if err := service.NewFileService(ctx).Delete(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "delete file")
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: "File deleted successfully"})
}

// MoveFile 移动文件，folderId 为 null 时移到根目录.
//
//	@Summary		移动文件
//	@Tags			文件
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"文件 ID"
//	@Param			body	body		types.MoveFileRequest	true	"目标文件夹"
//	@Success		200		{object}	types.FileResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/files/{id}/move [patch]
func MoveFile(c *gin.Context) {
	var req types.MoveFileRequest
	if !bindJSON(c, &req, true) {
		return
	}

	ctx := c.Request.Context()

	file, err := service.NewFileService(ctx).Move(ctx, middleware.GetUserID(c), c.Param("id"), req.FolderID)
	if err != nil {
		respondError(c, err, "move file")
		return
	}

	c.JSON(http.StatusOK, types.FileResponse{Message: "File moved successfully", File: types.NewFileInfo(file)})
}
