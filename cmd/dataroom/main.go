// Package main 启动 dataroom 服务.
package main

import (
	"context"
	"os"

	"github.com/yeisme/dataroom/pkg/cmd"
)

//	@title			DataRoom API
//	@version		1.0
//	@description	DataRoom 是一个多租户文件与文件夹管理服务，提供注册登录、文件上传、文件夹树与基于角色的管理接口。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
