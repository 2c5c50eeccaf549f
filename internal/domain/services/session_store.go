package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"vdp-support-service/internal/domain/wizard"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("报修会话不存在或已过期")

const intakeSessionKeyPrefix = "vdp_support:intake:"

// IntakeSession 服务端保存的报修向导会话
type IntakeSession struct {
	ID        string         `json:"id"`
	Wizard    *wizard.Wizard `json:"wizard"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SessionStore 保存报修会话，Load 返回的是副本
type SessionStore interface {
	Save(ctx context.Context, session *IntakeSession) error
	Load(ctx context.Context, id string) (*IntakeSession, error)
	Delete(ctx context.Context, id string) error
}

type storedSession struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore 进程内会话存储，未配置 Redis 时使用
type MemorySessionStore struct {
	ttl time.Duration

	mu        sync.Mutex
	sessions  map[string]storedSession
	lastSweep time.Time
}

// NewMemorySessionStore 创建内存会话存储
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, sessions: make(map[string]storedSession)}
}

// Save 以 JSON 保存，过期时间从本次保存开始计算
func (s *MemorySessionStore) Save(ctx context.Context, session *IntakeSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = storedSession{data: data, expiresAt: s.expiry(now)}
	if now.Sub(s.lastSweep) > time.Minute {
		s.sweep(now)
	}
	return nil
}

func (s *MemorySessionStore) expiry(now time.Time) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(s.ttl)
}

func (s *MemorySessionStore) sweep(now time.Time) {
	for id, st := range s.sessions {
		if !st.expiresAt.IsZero() && now.After(st.expiresAt) {
			delete(s.sessions, id)
		}
	}
	s.lastSweep = now
}

// Load 读取会话，过期视为不存在
func (s *MemorySessionStore) Load(ctx context.Context, id string) (*IntakeSession, error) {
	s.mu.Lock()
	st, ok := s.sessions[id]
	if ok && !st.expiresAt.IsZero() && time.Now().After(st.expiresAt) {
		delete(s.sessions, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var session IntakeSession
	if err := json.Unmarshal(st.data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete 删除会话
func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len 当前保存的会话数，包括尚未清理的过期会话
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RedisSessionStore 基于 Redis 的会话存储，多实例部署时共享
type RedisSessionStore struct {
	Redis InterfaceRedisService
	TTL   time.Duration
}

// NewRedisSessionStore 创建 Redis 会话存储
func NewRedisSessionStore(redis InterfaceRedisService, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{Redis: redis, TTL: ttl}
}

// Save 写入并刷新过期时间
func (s *RedisSessionStore) Save(ctx context.Context, session *IntakeSession) error {
	return s.Redis.Set(ctx, intakeSessionKeyPrefix+session.ID, session, s.TTL)
}

// Load 读取会话，键不存在时返回 ErrSessionNotFound
func (s *RedisSessionStore) Load(ctx context.Context, id string) (*IntakeSession, error) {
	var session IntakeSession
	if err := s.Redis.Get(ctx, intakeSessionKeyPrefix+id, &session); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Delete 删除会话
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.Redis.Delete(ctx, intakeSessionKeyPrefix+id)
}
