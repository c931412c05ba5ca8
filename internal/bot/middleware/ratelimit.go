package middleware

import (
	"sync"
	"time"
)

// RateLimiter — скользящее окно на пользователя: не больше limit
// сообщений за window. Защита от спама командами в личке.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[int64][]time.Time
	limit  int
	window time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		hits:   make(map[int64][]time.Time),
		limit:  limit,
		window: window,
		stopCh: make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Close останавливает фоновую уборку. Вызывается на shutdown.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow сообщает, можно ли обработать очередное сообщение пользователя,
// и при положительном ответе сразу учитывает его в окне.
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	fresh := rl.trim(rl.hits[userID], now)

	if len(fresh) >= rl.limit {
		rl.hits[userID] = fresh
		return false
	}

	rl.hits[userID] = append(fresh, now)
	return true
}

// trim отбрасывает отметки, выпавшие из окна.
func (rl *RateLimiter) trim(times []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	for i, t := range times {
		if t.After(cutoff) {
			return times[i:]
		}
	}
	return nil
}

// janitor периодически вычищает пользователей, которые давно молчат,
// чтобы карта не росла бесконечно.
func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for userID, times := range rl.hits {
				fresh := rl.trim(times, now)
				if len(fresh) == 0 {
					delete(rl.hits, userID)
				} else {
					rl.hits[userID] = fresh
				}
			}
			rl.mu.Unlock()
		}
	}
}
