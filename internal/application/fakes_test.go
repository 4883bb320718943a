package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
)

var errInjected = errors.New("injected storage failure")

// memUsers is an in-memory UserRepository. Each method locks once, so like the
// real store it only serializes writes per call. fail makes the next n calls of
// a method return errInjected.
type memUsers struct {
	mu       sync.Mutex
	byID     map[string]*entity.User
	failures map[string]int
	calls    map[string]int
	seq      int
}

func newMemUsers(users ...*entity.User) *memUsers {
	m := &memUsers{byID: map[string]*entity.User{}, failures: map[string]int{}, calls: map[string]int{}}
	for _, u := range users {
		m.put(u)
	}
	return m
}

func (m *memUsers) put(u *entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cloneUser(u)
	if cp.Followers == nil {
		cp.Followers = []string{}
	}
	if cp.Following == nil {
		cp.Following = []string{}
	}
	if cp.CreatedAt.IsZero() {
		m.seq++
		cp.CreatedAt = time.Unix(int64(m.seq), 0)
	}
	m.byID[cp.ID] = cp
}

func (m *memUsers) fail(method string, n int) {
	m.mu.Lock()
	m.failures[method] = n
	m.mu.Unlock()
}

func (m *memUsers) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *memUsers) get(id string) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return cloneUser(u)
	}
	return nil
}

// hit records a call and must be called with mu held.
func (m *memUsers) hit(method string) error {
	m.calls[method]++
	if m.failures[method] > 0 {
		m.failures[method]--
		return errInjected
	}
	return nil
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	cp.Followers = slices.Clone(u.Followers)
	cp.Following = slices.Clone(u.Following)
	return &cp
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("Create"); err != nil {
		return err
	}
	for _, other := range m.byID {
		if other.Username == u.Username {
			return repo.ErrDuplicateUsername
		}
		if other.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	m.seq++
	u.CreatedAt = time.Unix(int64(m.seq), 0)
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = cloneUser(u)
	return nil
}

func (m *memUsers) find(method string, match func(*entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit(method); err != nil {
		return nil, err
	}
	for _, u := range m.byID {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.find("GetByID", func(u *entity.User) bool { return u.ID == id })
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.find("GetByUsername", func(u *entity.User) bool { return u.Username == username })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find("GetByEmail", func(u *entity.User) bool { return u.Email == email })
}

func (m *memUsers) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	if u, err := m.GetByUsername(ctx, login); !errors.Is(err, repo.ErrNotFound) {
		return u, err
	}
	return m.GetByEmail(ctx, login)
}

func (m *memUsers) sorted() []*entity.User {
	out := make([]*entity.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memUsers) List(context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("List"); err != nil {
		return nil, err
	}
	return m.sorted(), nil
}

func (m *memUsers) ListSuggested(_ context.Context, userID string, limit int) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListSuggested"); err != nil {
		return nil, err
	}
	var following []string
	if self, ok := m.byID[userID]; ok {
		following = self.Following
	}
	out := []*entity.User{}
	for _, u := range m.sorted() {
		if u.ID == userID || slices.Contains(following, u.ID) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) Patch(_ context.Context, id string, p repo.UserPatch) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("Patch"); err != nil {
		return nil, err
	}
	cur, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for _, other := range m.byID {
		if other.ID == id {
			continue
		}
		if p.Username != nil && other.Username == *p.Username {
			return nil, repo.ErrDuplicateUsername
		}
		if p.Email != nil && other.Email == *p.Email {
			return nil, repo.ErrDuplicateEmail
		}
	}
	next := cloneUser(cur)
	setIf(&next.Username, p.Username)
	setIf(&next.Email, p.Email)
	setIf(&next.Bio, p.Bio)
	setIf(&next.Gender, p.Gender)
	setIf(&next.AvatarURL, p.AvatarURL)
	setIf(&next.PhoneNumber, p.PhoneNumber)
	setIf(&next.Role, p.Role)
	setIf(&next.AccountType, p.AccountType)
	next.UpdatedAt = time.Now()
	m.byID[id] = next
	return cloneUser(next), nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// hookedUsers runs afterGet once, right after the first GetByID returns, to
// interleave another writer between a service's read and its write.
type hookedUsers struct {
	*memUsers
	afterGet func()
}

func (h *hookedUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := h.memUsers.GetByID(ctx, id)
	if f := h.afterGet; f != nil {
		h.afterGet = nil
		f()
	}
	return u, err
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("Delete"); err != nil {
		return err
	}
	if _, ok := m.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func setMember(set []string, id string, present bool) []string {
	has := slices.Contains(set, id)
	switch {
	case present && !has:
		return append(set, id)
	case !present && has:
		return slices.DeleteFunc(set, func(s string) bool { return s == id })
	}
	return set
}

func (m *memUsers) ToggleFollowing(_ context.Context, userID, targetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ToggleFollowing"); err != nil {
		return false, err
	}
	u, ok := m.byID[userID]
	if !ok {
		return false, repo.ErrNotFound
	}
	present := !slices.Contains(u.Following, targetID)
	u.Following = setMember(u.Following, targetID, present)
	return present, nil
}

func (m *memUsers) SetFollowing(_ context.Context, userID, targetID string, present bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("SetFollowing"); err != nil {
		return err
	}
	u, ok := m.byID[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.Following = setMember(u.Following, targetID, present)
	return nil
}

func (m *memUsers) MirrorFollower(_ context.Context, userID, followerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("MirrorFollower"); err != nil {
		return false, err
	}
	u, ok := m.byID[userID]
	if !ok {
		return false, repo.ErrNotFound
	}
	present := false
	if f, ok := m.byID[followerID]; ok {
		present = slices.Contains(f.Following, userID)
	}
	u.Followers = setMember(u.Followers, followerID, present)
	return present, nil
}

func (m *memUsers) ListReferencing(_ context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("ListReferencing"); err != nil {
		return nil, err
	}
	var out []string
	for _, u := range m.byID {
		if slices.Contains(u.Followers, id) || slices.Contains(u.Following, id) {
			out = append(out, u.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memUsers) RemoveReferences(_ context.Context, userID, refID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("RemoveReferences"); err != nil {
		return err
	}
	if u, ok := m.byID[userID]; ok {
		u.Followers = setMember(u.Followers, refID, false)
		u.Following = setMember(u.Following, refID, false)
	}
	return nil
}

// symmetric reports whether every edge is stored on both of its endpoints and
// no edge points at a missing record.
func (m *memUsers) symmetric() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		for _, f := range u.Following {
			t, ok := m.byID[f]
			if !ok || !slices.Contains(t.Followers, id) {
				return false
			}
		}
		for _, f := range u.Followers {
			t, ok := m.byID[f]
			if !ok || !slices.Contains(t.Following, id) {
				return false
			}
		}
	}
	return true
}

type memSessions struct {
	mu   sync.Mutex
	byID map[string]entity.Session
	ttl  map[string]time.Duration
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]entity.Session{}, ttl: map[string]time.Duration{}}
}

func (s *memSessions) Save(_ context.Context, sess entity.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sess.UserID] = sess
	s.ttl[sess.UserID] = ttl
	return nil
}

func (s *memSessions) Get(_ context.Context, userID string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &sess, nil
}

func (s *memSessions) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, userID)
	return nil
}

type memMedia struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func newMemMedia() *memMedia { return &memMedia{objects: map[string][]byte{}} }

func (m *memMedia) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[objectPath] = buf.Bytes()
	m.mu.Unlock()
	return "https://media.test/" + objectPath, nil
}

func (m *memMedia) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	delete(m.objects, objectPath)
	m.mu.Unlock()
	return nil
}

func (m *memMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type memPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *memPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *memPublisher) repairJobs() []RepairJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []RepairJob
	for _, j := range p.jobs {
		if rj, ok := j.(RepairJob); ok {
			out = append(out, rj)
		}
	}
	return out
}
