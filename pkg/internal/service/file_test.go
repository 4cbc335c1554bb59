package service_test

import (
	"bytes"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/testenv"
	"github.com/yeisme/dataroom/pkg/internal/types"
)

func uploadInput(name, mime, body string) *types.UploadFileInput {
	return &types.UploadFileInput{
		Reader:       strings.NewReader(body),
		OriginalName: name,
		MimeType:     mime,
		Size:         int64(len(body)),
	}
}

func upload(t *testing.T, env *testenv.Env, userID string, in *types.UploadFileInput) *model.File {
	t.Helper()

	file, err := service.NewFileService(env.Ctx).Upload(env.Ctx, userID, in)
	if err != nil {
		t.Fatalf("upload %s: %v", in.OriginalName, err)
	}

	return file
}

// TestUpload 测试上传写入对象存储与元数据.
func TestUpload(t *testing.T) {
	env := testenv.New(t)
	alice := signup(t, env, "Alice", "alice@example.com")

	in := uploadInput("Report.PDF", "application/pdf", "%PDF-1.4")
	in.IsPublic = true
	in.Description = "quarterly"
	in.Tags = []string{"finance", "q1"}

	file := upload(t, env, alice.ID, in)

	pattern := regexp.MustCompile(`^` + alice.ID + `/\d+-[0-9a-z]{26}\.pdf$`)
	if !pattern.MatchString(file.BlobPathname) {
		t.Errorf("unexpected blob key %q", file.BlobPathname)
	}

	if file.Filename != file.BlobPathname || file.Size != 8 || !file.Public() {
		t.Errorf("unexpected file %+v", file)
	}

	if tags := file.TagList(); len(tags) != 2 || tags[0] != "finance" {
		t.Errorf("tags = %v", tags)
	}

	data, err := env.Blobs.Get(file.BlobPathname)
	if err != nil || !bytes.Equal(data, []byte("%PDF-1.4")) {
		t.Errorf("blob = %q, %v", data, err)
	}

	noExt := upload(t, env, alice.ID, uploadInput("README", "text/plain", "hi"))
	if strings.Contains(strings.TrimPrefix(noExt.BlobPathname, alice.ID+"/"), ".") {
		t.Errorf("blob key without extension should have no suffix: %q", noExt.BlobPathname)
	}
}

// TestUploadRollsBackBlob 测试元数据写入失败时删除已上传的对象.
func TestUploadRollsBackBlob(t *testing.T) {
	env := testenv.New(t)
	alice := signup(t, env, "Alice", "alice@example.com")

	errInsert := errors.New("insert rejected")

	err := env.Manager.DB.Callback().Create().Before("gorm:create").Register("dataroom:reject_file", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Model.(*model.File); ok {
			_ = tx.AddError(errInsert)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = service.NewFileService(env.Ctx).Upload(env.Ctx, alice.ID, uploadInput("notes.txt", "text/plain", "hello"))
	if !errors.Is(err, errInsert) {
		t.Fatalf("err = %v, want insert error", err)
	}

	if se := service.AsError(err); se != nil {
		t.Errorf("insert failure should surface as internal error, got %d %s", se.Status, se.Message)
	}

	objs, err := env.Blobs.List(env.Ctx, "")
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}

	if len(objs) != 0 {
		t.Errorf("blobs = %d, want 0 after rollback", len(objs))
	}
}

// TestUploadRejects 测试超限、类型不允许与元数据限制.
func TestUploadRejects(t *testing.T) {
	env := testenv.New(t, func(cfg *configs.AppConfig) {
		cfg.Upload.MaxSize = 10 * 1024 * 1024
	})
	alice := signup(t, env, "Alice", "alice@example.com")
	svc := service.NewFileService(env.Ctx)

	big := uploadInput("big.pdf", "application/pdf", "x")
	big.Size = 11 * 1024 * 1024

	_, err := svc.Upload(env.Ctx, alice.ID, big)
	if se := expectStatus(t, err, http.StatusBadRequest); se.Message != "File size exceeds limit of 10MB" {
		t.Errorf("message = %q", se.Message)
	}

	_, err = svc.Upload(env.Ctx, alice.ID, uploadInput("app.exe", "application/x-msdownload", "MZ"))
	if se := expectStatus(t, err, http.StatusBadRequest); se.Message != "File type application/x-msdownload is not allowed" {
		t.Errorf("message = %q", se.Message)
	}

	_, err = svc.Upload(env.Ctx, alice.ID, &types.UploadFileInput{})
	if se := expectStatus(t, err, http.StatusBadRequest); se.Message != "No file provided" {
		t.Errorf("message = %q", se.Message)
	}

	tooMany := uploadInput("a.txt", "text/plain", "a")
	tooMany.Tags = make([]string, 11)
	for i := range tooMany.Tags {
		tooMany.Tags[i] = "t"
	}

	_, err = svc.Upload(env.Ctx, alice.ID, tooMany)
	expectStatus(t, err, http.StatusBadRequest)

	longDesc := uploadInput("a.txt", "text/plain", "a")
	longDesc.Description = strings.Repeat("d", 501)

	_, err = svc.Upload(env.Ctx, alice.ID, longDesc)
	expectStatus(t, err, http.StatusBadRequest)

	objs, _ := env.Blobs.List(env.Ctx, "")
	if len(objs) != 0 {
		t.Errorf("rejected uploads must not write blobs, got %d", len(objs))
	}
}

// TestUploadForeignFolder 测试上传到他人文件夹返回 404.
func TestUploadForeignFolder(t *testing.T) {
	env := testenv.New(t)
	alice := signup(t, env, "Alice", "alice@example.com")
	bob := signup(t, env, "Bob", "bob@example.com")
	bobs := createFolder(t, env, bob.ID, "Bob's", nil)

	in := uploadInput("a.txt", "text/plain", "a")
	in.FolderID = &bobs.ID

	_, err := service.NewFileService(env.Ctx).Upload(env.Ctx, alice.ID, in)
	if se := expectStatus(t, err, http.StatusNotFound); se.Message != "Folder not found" {
		t.Errorf("message = %q", se.Message)
	}
}

// TestFileVisibility 测试公开文件他人可读，私有文件仅所有者可读.
func TestFileVisibility(t *testing.T) {
	env := testenv.New(t)
	alice := signup(t, env, "Alice", "alice@example.com")
	bob := signup(t, env, "Bob", "bob@example.com")
	svc := service.NewFileService(env.Ctx)

	private := upload(t, env, alice.ID, uploadInput("secret.txt", "text/plain", "s"))

	public := uploadInput("shared.txt", "text/plain", "p")
	public.IsPublic = true
	shared := upload(t, env, alice.ID, public)

	if _, err := svc.Get(env.Ctx, alice.ID, private.ID); err != nil {
		t.Errorf("owner get: %v", err)
	}

	_, err := svc.Get(env.Ctx, bob.ID, private.ID)
	if se := expectStatus(t, err, http.StatusNotFound); se.Message != "File not found or access denied" {
		t.Errorf("message = %q", se.Message)
	}

	if _, err := svc.Get(env.Ctx, bob.ID, shared.ID); err != nil {
		t.Errorf("public get: %v", err)
	}

	url, err := svc.PublicURL(env.Ctx, shared.ID)
	if err != nil || url != shared.BlobURL {
		t.Errorf("public url = %q, %v", url, err)
	}

	_, err = svc.PublicURL(env.Ctx, private.ID)
	if se := expectStatus(t, err, http.StatusNotFound); se.Message != "File not found or not public" {
		t.Errorf("message = %q", se.Message)
	}

	files, err := svc.ListMine(env.Ctx, bob.ID)
	if err != nil || len(files) != 0 {
		t.Errorf("bob files = %d, %v", len(files), err)
	}
}

// TestUpdateFile 测试部分更新与非所有者拒绝.
func TestUpdateFile(t *testing.T) {
	env := testenv.New(t)
	alice := signup(t, env, "Alice", "alice@example.com")
	bob := signup(t, env, "Bob", "bob@example.com")
	svc := service.NewFileService(env.Ctx)

	file := upload(t, env, alice.ID, uploadInput("a.txt", "text/plain", "a"))

	updated, err := svc.Update(env.Ctx, alice.ID, file.ID, &types.UpdateFileRequest{
		Tags:     ptr([]string{" x ", "", "y"}),
		IsPublic: ptr(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.Public() || strings.Join(updated.TagList(), ",") != "x,y" {
		t.Errorf("unexpected update result %+v", updated)
	}

	_, err = svc.Update(env.Ctx, bob.ID, file.ID, &types.UpdateFileRequest{IsPublic: ptr(false)})
	expectStatus(t, err, http.StatusNotFound)
}

// TestDeleteFile 测试删除对象与元数据.
func TestDeleteFile(t *testing.T) {
	env := testenv.New(t)
	alice := signup(t, env, "Alice", "alice@example.com")
	bob := signup(t, env, "Bob", "bob@example.com")
	svc := service.NewFileService(env.Ctx)

	file := upload(t, env, alice.ID, uploadInput("a.txt", "text/plain", "a"))

	expectStatus(t, svc.Delete(env.Ctx, bob.ID, file.ID), http.StatusNotFound)

	if err := svc.Delete(env.Ctx, alice.ID, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.Blobs.Get(file.BlobPathname); err == nil {
		t.Errorf("blob still exists")
	}

	_, err := svc.Get(env.Ctx, alice.ID, file.ID)
	expectStatus(t, err, http.StatusNotFound)
}

// TestMoveFile 测试移动文件以及拒绝移动到他人文件夹.
func TestMoveFile(t *testing.T) {
	env := testenv.New(t)
	alice := signup(t, env, "Alice", "alice@example.com")
	bob := signup(t, env, "Bob", "bob@example.com")
	svc := service.NewFileService(env.Ctx)

	docs := createFolder(t, env, alice.ID, "Docs", nil)
	bobs := createFolder(t, env, bob.ID, "Bob's", nil)
	file := upload(t, env, alice.ID, uploadInput("a.txt", "text/plain", "a"))

	moved, err := svc.Move(env.Ctx, alice.ID, file.ID, &docs.ID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if moved.FolderID == nil || *moved.FolderID != docs.ID {
		t.Errorf("folder = %v", moved.FolderID)
	}

	_, err = svc.Move(env.Ctx, alice.ID, file.ID, &bobs.ID)
	if se := expectStatus(t, err, http.StatusNotFound); se.Message != "Target folder not found or access denied" {
		t.Errorf("message = %q", se.Message)
	}

	_, err = svc.Move(env.Ctx, bob.ID, file.ID, &bobs.ID)
	if se := expectStatus(t, err, http.StatusNotFound); se.Message != "File not found or access denied" {
		t.Errorf("message = %q", se.Message)
	}

	root, err := svc.Move(env.Ctx, alice.ID, file.ID, nil)
	if err != nil || root.FolderID != nil {
		t.Errorf("move to root = %v, %v", root, err)
	}
}

// TestParseTags 测试逗号分隔标签解析.
func TestParseTags(t *testing.T) {
	got := service.ParseTags(" a, b ,,c ")
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("ParseTags = %v", got)
	}

	if tags := service.ParseTags("  "); len(tags) != 0 {
		t.Errorf("empty input = %v", tags)
	}
}
