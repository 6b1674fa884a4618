package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/storage"
)

// Upload describes a received file. Open is called at most once, after
// the metadata checks pass. TooLarge marks a body that was cut off by the
// request size limit before the file could be read.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	TooLarge    bool
	Open        func() (io.ReadCloser, error)
}

// PhotoService validates bootcamp photos and hands them to a Mover.
type PhotoService struct {
	Bootcamps BootcampStore
	Mover     storage.Mover
	MaxSize   int64
}

// Upload stores f as the photo of bootcamp id and returns the stored
// filename, "photo_<id><ext>". Checks run in order: bootcamp exists, actor
// owns it, a file is present, it is an image, it fits MaxSize.
func (s *PhotoService) Upload(ctx context.Context, actor domain.Actor, id string, f *Upload) (string, error) {
	ctx, span := otel.Tracer("services/PhotoService").Start(ctx, "Upload")
	defer span.End()
	span.SetAttributes(attribute.String("bootcamp.id", id))

	if !domain.ValidID(id) {
		return "", invalidID(id)
	}
	b, err := s.Bootcamps.GetBootcamp(ctx, id)
	if err != nil {
		return "", lookupErr("Bootcamp", id, err)
	}
	if !actor.CanModify(b.UserID) {
		return "", forbidden(actor, "update", "bootcamp", id)
	}
	if f != nil && f.TooLarge {
		return "", s.tooLarge()
	}
	if f == nil || f.Open == nil {
		return "", ErrNoFile
	}

	rc, err := f.Open()
	if err != nil {
		return "", ErrNoFile.Wrap(err)
	}
	defer rc.Close()
	r := bufio.NewReaderSize(rc, 3072)

	ctype := mediaType(f.ContentType)
	if ctype == "" || ctype == "application/octet-stream" {
		head, _ := r.Peek(3072)
		ctype = mediaType(mimetype.Detect(head).String())
	}
	span.SetAttributes(attribute.String("content_type", ctype), attribute.Int64("size", f.Size))
	if !strings.HasPrefix(ctype, "image") {
		return "", ErrNotImage
	}
	if s.MaxSize > 0 && f.Size > s.MaxSize {
		return "", s.tooLarge()
	}

	name := fmt.Sprintf("photo_%s%s", b.ID, extension(f.Filename, ctype))
	if err := s.Mover.Move(ctx, name, io.LimitReader(r, sizeCap(f.Size, s.MaxSize)), f.Size, ctype); err != nil {
		return "", ErrUploadFailed.Wrap(err)
	}
	if err := s.Bootcamps.SetBootcampPhoto(ctx, b.ID, name); err != nil {
		return "", lookupErr("Bootcamp", id, err)
	}
	return name, nil
}

func (s *PhotoService) tooLarge() *apperr.Error {
	return apperr.BadRequest("Please upload an image less than %d bytes", s.MaxSize)
}

// mediaType strips parameters: "image/png; charset=x" -> "image/png".
func mediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// extension keeps the client's extension as sent and falls back to the one
// registered for ctype.
func extension(filename, ctype string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if ext != "" && !strings.ContainsAny(ext, `/\`) {
		return ext
	}
	if m := mimetype.Lookup(ctype); m != nil {
		return m.Extension()
	}
	return ""
}

func sizeCap(size, max int64) int64 {
	if max > 0 {
		return max
	}
	if size > 0 {
		return size
	}
	return 1 << 62
}
