package redis

import (
	"agenda/cmd/internal/domain/entity"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const opTimeout = 5 * time.Second

// SessionStore keeps sessions in Redis hashes ("session:<id>") with a
// per-user index set ("user_sessions:<user id>") so that every session
// of a deleted user can be dropped at once.
type SessionStore struct {
	client *goredis.Client
}

// OpenClient parses a redis:// URL, configures the pool and pings the server.
func OpenClient(url string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.DialTimeout = opTimeout
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := goredis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Create(session *entity.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().UnixMilli()
	}
	flashes, err := json.Marshal(session.Flashes)
	if err != nil {
		return err
	}

	key := sessionKey(session.ID)
	ttl := time.Until(time.UnixMilli(session.ExpiresAt))
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    session.UserID,
			"flashes":    string(flashes),
			"created_at": session.CreatedAt,
			"expires_at": session.ExpiresAt,
		})
		pipe.Expire(ctx, key, ttl)
		pipe.SAdd(ctx, userSessionsKey(session.UserID), key)
		// Sessions share one TTL, so the newest session outlives the
		// others and the index can expire with it.
		pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)
		return nil
	})
	return err
}

func (s *SessionStore) FindByID(id string) (*entity.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	session := &entity.Session{ID: id}
	if session.UserID, err = strconv.Atoi(data["user_id"]); err != nil {
		return nil, err
	}
	if session.CreatedAt, err = strconv.ParseInt(data["created_at"], 10, 64); err != nil {
		return nil, err
	}
	if session.ExpiresAt, err = strconv.ParseInt(data["expires_at"], 10, 64); err != nil {
		return nil, err
	}
	if raw := data["flashes"]; raw != "" {
		if err = json.Unmarshal([]byte(raw), &session.Flashes); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (s *SessionStore) SetFlashes(id string, flashes []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, err := json.Marshal(flashes)
	if err != nil {
		return err
	}

	key := sessionKey(id)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}
	return s.client.HSet(ctx, key, "flashes", string(raw)).Err()
}

func (s *SessionStore) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := sessionKey(id)
	userID, err := s.client.HGet(ctx, key, "user_id").Result()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.client.SRem(ctx, "user_sessions:"+userID, key).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, key).Err()
}

func (s *SessionStore) DeleteByUserID(userID int) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	index := userSessionsKey(userID)
	keys, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, index).Err()
}

func sessionKey(id string) string {
	return "session:" + id
}

func userSessionsKey(userID int) string {
	return "user_sessions:" + strconv.Itoa(userID)
}
