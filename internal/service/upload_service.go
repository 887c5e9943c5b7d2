package service

import (
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// sniffLen http.DetectContentType 最多读取的字节数
const sniffLen = 512

// uploadPolicy 单个上传场景的限制
type uploadPolicy struct {
	maxSize      int64
	extensions   []string
	contentTypes []string
	image        bool
}

// UploadService 文件上传服务（预览图与图纸文件）
type UploadService struct {
	cfg config.UploadConfig
	now func() time.Time
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg config.UploadConfig) *UploadService {
	return &UploadService{cfg: cfg, now: time.Now}
}

func (s *UploadService) policy(scene string) uploadPolicy {
	if scene == constants.UploadSceneTakeoff {
		return uploadPolicy{maxSize: s.cfg.TakeoffMaxSize, extensions: s.cfg.TakeoffExtensions}
	}
	return uploadPolicy{
		maxSize:      s.cfg.MaxSize,
		extensions:   s.cfg.AllowedExtensions,
		contentTypes: s.cfg.AllowedTypes,
		image:        true,
	}
}

// SaveFile 按场景校验并保存上传文件，返回文件元数据
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (*models.FileMeta, error) {
	if file == nil {
		return nil, ErrInvalidRequest
	}
	scene = normalizeUploadScene(scene)
	ext := strings.ToLower(filepath.Ext(file.Filename))
	rule := s.policy(scene)

	if rule.maxSize > 0 && file.Size > rule.maxSize {
		return nil, ErrUploadTooLarge
	}
	// 图纸场景必须显式配置扩展名白名单
	if (len(rule.extensions) > 0 || !rule.image) && !matchExtension(ext, rule.extensions) {
		return nil, ErrUploadTypeInvalid
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if rule.image {
		if err := checkImage(src, rule.contentTypes); err != nil {
			return nil, err
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	filename := uuid.New().String() + ext
	dir := path.Join(scene, s.now().Format("2006/01"))
	savePath := filepath.Join(s.baseDir(), filepath.FromSlash(dir), filename)
	written, err := writeUpload(savePath, src)
	if err != nil {
		return nil, err
	}
	logger.Debugw("upload_saved", "scene", scene, "path", savePath, "size", written)

	// 返回相对路径，由前端根据环境配置拼接完整 URL
	return &models.FileMeta{
		Filename:     filename,
		OriginalName: filepath.Base(file.Filename),
		URL:          path.Join(s.publicPrefix(), dir, filename),
		Size:         written,
	}, nil
}

func writeUpload(savePath string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return 0, err
	}
	dst, err := os.Create(savePath)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(savePath)
		return 0, err
	}
	return written, nil
}

// checkImage 先嗅探 MIME，再解码图片头确认不是伪装文件
func checkImage(src io.ReadSeeker, allowedTypes []string) error {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return err
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return ErrUploadTypeInvalid
	}
	if len(allowedTypes) > 0 && !slices.ContainsFunc(allowedTypes, func(t string) bool {
		return strings.EqualFold(strings.TrimSpace(t), contentType)
	}) {
		return ErrUploadTypeInvalid
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, _, err := image.DecodeConfig(src); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadTypeInvalid, err)
	}
	return nil
}

func (s *UploadService) baseDir() string {
	if dir := strings.TrimSpace(s.cfg.Dir); dir != "" {
		return dir
	}
	return "uploads"
}

func (s *UploadService) publicPrefix() string {
	prefix := strings.TrimRight(strings.TrimSpace(s.cfg.PublicPrefix), "/")
	if prefix == "" {
		return "/uploads"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

func normalizeUploadScene(raw string) string {
	if strings.ToLower(strings.TrimSpace(raw)) == constants.UploadSceneTakeoff {
		return constants.UploadSceneTakeoff
	}
	return constants.UploadSceneImage
}

// matchExtension 白名单允许省略前导点，如 "jpg"
func matchExtension(ext string, allowed []string) bool {
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(allowed, func(item string) bool {
		item = strings.ToLower(strings.TrimSpace(item))
		return item != "" && "."+strings.TrimPrefix(item, ".") == ext
	})
}
