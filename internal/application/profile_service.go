package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
	"github.com/oksasatya/go-social-graph/pkg/validation"
)

// sniffLen matches the amount of data mimetype inspects by default.
const sniffLen = 3072

var avatarTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type ProfileService struct {
	Users          repo.UserRepository
	Media          repo.MediaStore
	MaxAvatarBytes int64
	Logger         logrus.FieldLogger
}

func NewProfileService(users repo.UserRepository, media repo.MediaStore, maxAvatarBytes int64, logger logrus.FieldLogger) *ProfileService {
	return &ProfileService{Users: users, Media: media, MaxAvatarBytes: maxAvatarBytes, Logger: logger}
}

// AvatarUpload is an image stream owned by the caller, who closes it.
type AvatarUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// EditProfileInput carries optional changes; nil fields are left unchanged.
type EditProfileInput struct {
	Bio    *string
	Gender *string
	Avatar *AvatarUpload
}

func (s *ProfileService) GetProfile(ctx context.Context, targetID string) (UserView, error) {
	u, err := loadUser(ctx, s.Users, targetID)
	if err != nil {
		return UserView{}, err
	}
	return ToView(u), nil
}

// EditProfile updates the caller's own profile. The avatar, if any, is stored
// first; the record is only written once the upload succeeded, and a failed
// write removes the uploaded object again.
func (s *ProfileService) EditProfile(ctx context.Context, caller entity.Identity, in EditProfileInput) (UserView, error) {
	details := map[string]string{}
	if in.Bio != nil {
		if err := validation.Var(*in.Bio, "max=150"); err != nil {
			details["bio"] = validation.Message(err)
		}
	}
	if in.Gender != nil {
		if err := validation.Var(*in.Gender, "omitempty,gender"); err != nil {
			details["gender"] = validation.Message(err)
		}
	}
	if len(details) > 0 {
		return UserView{}, validationErr("invalid profile", details)
	}

	u, err := loadUser(ctx, s.Users, caller.UserID)
	if err != nil {
		return UserView{}, err
	}

	// Only the columns this edit owns are written; role, username and email
	// may be changed by an admin meanwhile.
	patch := repo.UserPatch{Bio: in.Bio}
	if in.Gender != nil {
		g := entity.Gender(*in.Gender)
		patch.Gender = &g
	}
	var objectPath string
	if in.Avatar != nil {
		url, path, err := s.storeAvatar(ctx, u.ID, in.Avatar)
		if err != nil {
			return UserView{}, err
		}
		patch.AvatarURL, objectPath = &url, path
	}

	updated, err := s.Users.Patch(ctx, u.ID, patch)
	if err != nil {
		if objectPath != "" {
			s.discardAvatar(objectPath, u.ID)
		}
		if errors.Is(err, repo.ErrNotFound) {
			return UserView{}, notFoundErr("user not found")
		}
		return UserView{}, internalErr("failed to update profile", err)
	}
	return ToView(updated), nil
}

func (s *ProfileService) storeAvatar(ctx context.Context, userID string, a *AvatarUpload) (url, objectPath string, err error) {
	if a.Content == nil {
		return "", "", validationErr("invalid profile", map[string]string{"profilePhoto": "is empty"})
	}
	if s.MaxAvatarBytes > 0 && a.Size > s.MaxAvatarBytes {
		return "", "", validationErr("invalid profile", map[string]string{
			"profilePhoto": fmt.Sprintf("must be at most %d bytes", s.MaxAvatarBytes),
		})
	}

	head := make([]byte, sniffLen)
	n, rerr := io.ReadFull(a.Content, head)
	if rerr != nil && !errors.Is(rerr, io.ErrUnexpectedEOF) && !errors.Is(rerr, io.EOF) {
		return "", "", storageErr(rerr)
	}
	head = head[:n]
	if n == 0 {
		return "", "", validationErr("invalid profile", map[string]string{"profilePhoto": "is empty"})
	}
	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), avatarTypes...) {
		return "", "", validationErr("invalid profile", map[string]string{"profilePhoto": "must be a jpeg, png, gif or webp image"})
	}

	body := &cappedReader{r: io.MultiReader(bytes.NewReader(head), a.Content), left: s.MaxAvatarBytes}
	if s.MaxAvatarBytes <= 0 {
		body.left = -1
	}

	objectPath = "avatars/" + userID + "/" + uuid.NewString() + mt.Extension()
	url, err = s.Media.Upload(ctx, objectPath, mt.String(), body)
	if body.over {
		// The store may or may not have kept what it read before the cap.
		if err == nil {
			s.discardAvatar(objectPath, userID)
		}
		return "", "", validationErr("invalid profile", map[string]string{
			"profilePhoto": fmt.Sprintf("must be at most %d bytes", s.MaxAvatarBytes),
		})
	}
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "object": objectPath}).Error("avatar upload failed")
		}
		return "", "", storageErr(err)
	}
	return url, objectPath, nil
}

var errAvatarTooLarge = errors.New("avatar exceeds size limit")

// cappedReader fails once more than left bytes are read. A negative left
// disables the cap.
type cappedReader struct {
	r    io.Reader
	left int64
	over bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.left < 0 {
		return c.r.Read(p)
	}
	if c.left == 0 {
		var one [1]byte
		n, err := c.r.Read(one[:])
		if n > 0 {
			c.over = true
			return 0, errAvatarTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}

// discardAvatar runs detached from the request so a cancelled request still
// cleans up.
func (s *ProfileService) discardAvatar(objectPath, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Media.Delete(ctx, objectPath); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "object": objectPath}).Error("failed to remove orphaned avatar")
	}
}

// loadUser maps lookup failures to service errors. Ids that are not UUIDs
// cannot exist and are reported as not found.
func loadUser(ctx context.Context, users repo.UserRepository, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFoundErr("user not found")
	}
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundErr("user not found")
		}
		return nil, internalErr("failed to load user", err)
	}
	return u, nil
}
