package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/auth"
	"github.com/yeisme/dataroom/pkg/internal/model"
	nlog "github.com/yeisme/dataroom/pkg/log"
)

// 演示数据默认值.
const (
	DefaultSeedUsers    = 20
	DefaultSeedFiles    = 50
	DefaultSeedPassword = "password123"
)

var seedMIMETypes = []string{"image/jpeg", "image/png", "application/pdf", "text/plain"}

// SeedOptions 演示数据参数.
type SeedOptions struct {
	Users    int
	Files    int
	Password string
}

// SeedResult 本次实际写入的数量.
type SeedResult struct {
	UsersCreated int `json:"usersCreated"`
	FilesCreated int `json:"filesCreated"`
}

// Seed 写入演示用户与文件元数据. 以邮箱与对象键判重，重复执行不会产生重复数据.
// 文件只写元数据，不写入对象存储.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions, bcryptCost int) (*SeedResult, error) {
	if db == nil {
		return nil, ErrNotConfigured
	}

	if opts.Users <= 0 {
		opts.Users = DefaultSeedUsers
	}

	if opts.Files < 0 {
		opts.Files = 0
	}

	if opts.Password == "" {
		opts.Password = DefaultSeedPassword
	}

	logger := nlog.Named("seed")
	db = db.WithContext(ctx)

	hash, err := auth.HashPassword(opts.Password, bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	// 固定种子，保证多次运行生成相同的数据.
	rng := rand.New(rand.NewPCG(20, 24))
	res := &SeedResult{}
	userIDs := make([]string, 0, opts.Users)

	for i := 1; i <= opts.Users; i++ {
		email := fmt.Sprintf("user%d@example.com", i)

		var user model.User

		err := db.Where("email = ?", email).First(&user).Error
		if err == nil {
			userIDs = append(userIDs, user.ID)
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find seed user: %w", err)
		}

		user = model.User{
			Name:     fmt.Sprintf("User %d", i),
			Email:    email,
			Password: hash,
			Age:      18 + rng.IntN(62),
			Role:     model.Roles[(i-1)%len(model.Roles)],
		}

		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create seed user: %w", err)
		}

		userIDs = append(userIDs, user.ID)
		res.UsersCreated++
	}

	for i := 1; i <= opts.Files; i++ {
		pathname := fmt.Sprintf("seed/file-%d.txt", i)
		mime := seedMIMETypes[rng.IntN(len(seedMIMETypes))]
		owner := userIDs[rng.IntN(len(userIDs))]
		size := int64(1024 + rng.IntN(10*1024*1024-1024))
		public := rng.IntN(2) == 1

		var n int64
		if err := db.Model(&model.File{}).Where("blob_pathname = ?", pathname).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("find seed file: %w", err)
		}

		if n > 0 {
			continue
		}

		file := model.File{
			UserID:       owner,
			Filename:     fmt.Sprintf("file-%d.txt", i),
			OriginalName: fmt.Sprintf("Original File %d", i),
			MimeType:     mime,
			Size:         size,
			BlobURL:      fmt.Sprintf("https://example.com/file-%d", i),
			BlobPathname: pathname,
			Description:  fmt.Sprintf("Description for file %d", i),
		}
		file.SetPublic(public)

		if err := file.SetTags([]string{"tag1", "tag2"}); err != nil {
			return nil, fmt.Errorf("encode seed tags: %w", err)
		}

		if err := db.Create(&file).Error; err != nil {
			return nil, fmt.Errorf("create seed file: %w", err)
		}

		res.FilesCreated++
	}

	logger.Info().Int("users", res.UsersCreated).Int("files", res.FilesCreated).Msg("seed completed")

	return res, nil
}
