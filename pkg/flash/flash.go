// Package flash keeps one-shot user messages between a redirect and the
// page that follows it.
package flash

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Message levels, used as CSS classes by the templates.
const (
	Success = "success"
	Error   = "error"
	Info    = "info"
)

// CookieName holds the flash id.
const CookieName = "flash_id"

// Message is a single flash message.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Store keeps pending messages in memory keyed by a cookie id.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewStore returns a store whose messages expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{cache: cache.New(ttl, 2*ttl)}
}

// Add queues a message for the next page the client loads.
func (s *Store) Add(c *gin.Context, level, text string) {
	id := s.id(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	var msgs []Message
	if v, ok := s.cache.Get(id); ok {
		msgs = v.([]Message)
	}
	msgs = append(msgs, Message{Level: level, Text: text})
	s.cache.Set(id, msgs, cache.DefaultExpiration)
}

// Pop returns and clears the pending messages for the client.
func (s *Store) Pop(c *gin.Context) []Message {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(id)
	if !ok {
		return nil
	}
	s.cache.Delete(id)
	return v.([]Message)
}

func (s *Store) id(c *gin.Context) string {
	if id, err := c.Cookie(CookieName); err == nil && id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, 0, "/", "", false, true)
	// make the id visible to a Pop within the same request
	c.Request.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	return id
}
