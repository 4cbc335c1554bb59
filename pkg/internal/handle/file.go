package handle

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/log"
	"github.com/yeisme/dataroom/pkg/middleware"
)

const defaultContentType = "application/octet-stream"

// detectContentType 取分片头中的媒体类型并去掉参数，缺失时按扩展名推断.
func detectContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			return strings.ToLower(mediaType)
		}
	}

	if byExt := mime.TypeByExtension(filepath.Ext(fh.Filename)); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}

	return defaultContentType
}

// UploadFile 上传单个文件.
//
//	@Summary		上传文件
//	@Description	multipart 上传文件到对象存储并保存元数据
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file		formData	file				true	"上传的文件"
//	@Param			isPublic	formData	string				false	"为 true 时公开"
//	@Param			description	formData	string				false	"文件描述"
//	@Param			tags		formData	string				false	"逗号分隔的标签"
//	@Param			folderId	formData	string				false	"目标文件夹 ID"
//	@Success		201			{object}	types.FileResponse	"上传成功"
//	@Failure		400			{object}	types.ErrorResponse	"参数错误"
//	@Failure		404			{object}	types.ErrorResponse	"文件夹不存在"
//	@Failure		500			{object}	types.ErrorResponse	"服务器内部错误"
//	@Router			/files/upload [post]
func UploadFile(c *gin.Context) {
	l := log.Logger()
	ctx := c.Request.Context()
	svc := service.NewFileService(ctx)

	limit := svc.MaxRequestBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || c.Request.ContentLength > limit {
			respondError(c, svc.FileTooLarge(), "upload file")
			return
		}

		l.Debug().Err(err).Msg("no file in upload form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})

		return
	}

	src, err := fh.Open()
	if err != nil {
		l.Error().Err(err).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})

		return
	}
	defer src.Close()

	in := &types.UploadFileInput{
		Reader:       src,
		OriginalName: fh.Filename,
		MimeType:     detectContentType(fh),
		Size:         fh.Size,
		IsPublic:     c.PostForm("isPublic") == "true",
		Description:  c.PostForm("description"),
		Tags:         service.ParseTags(c.PostForm("tags")),
	}

	if folderID := strings.TrimSpace(c.PostForm("folderId")); folderID != "" {
		in.FolderID = &folderID
	}

	file, err := svc.Upload(ctx, middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, err, "upload file")
		return
	}

	c.JSON(http.StatusCreated, types.FileResponse{Message: "File uploaded successfully", File: types.NewFileInfo(file)})
}

// PublicFile 重定向到公开文件的对象地址，无需认证.
//
//	@Summary		访问公开文件
//	@Tags			文件
//	@Param			id	path	string	true	"文件 ID"
//	@Success		302	"重定向到对象地址"
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/files/public/{id} [get]
func PublicFile(c *gin.Context) {
	ctx := c.Request.Context()

	url, err := service.NewFileService(ctx).PublicURL(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "public file")
		return
	}

	c.Redirect(http.StatusFound, url)
}
