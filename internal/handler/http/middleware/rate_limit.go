package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// DeviceHeader identifies the scanner that sent a request.
const DeviceHeader = "X-Device-ID"

type deviceLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// deviceIdle is how long a device may stay silent before its bucket is dropped.
const deviceIdle = 10 * time.Minute

// DeviceRateLimiter keeps one token bucket per scanner device.
type DeviceRateLimiter struct {
	devices map[string]*deviceLimiter
	mu      sync.Mutex
	r       rate.Limit
	b       int
	now     func() time.Time
}

func NewDeviceRateLimiter(r rate.Limit, b int) *DeviceRateLimiter {
	return &DeviceRateLimiter{
		devices: make(map[string]*deviceLimiter),
		r:       r,
		b:       b,
		now:     time.Now,
	}
}

func (d *DeviceRateLimiter) GetLimiter(key string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, exists := d.devices[key]
	if !exists {
		entry = &deviceLimiter{limiter: rate.NewLimiter(d.r, d.b)}
		d.devices[key] = entry
	}
	entry.lastSeen = d.now()

	return entry.limiter
}

// Sweep forgets idle devices and returns how many were dropped.
func (d *DeviceRateLimiter) Sweep(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	dropped := 0
	for key, entry := range d.devices {
		if now.Sub(entry.lastSeen) > deviceIdle {
			delete(d.devices, key)
			dropped++
		}
	}
	return dropped
}

// Limit rejects requests once a device exceeds its budget. Requests without
// a device header are keyed by client address.
func (d *DeviceRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !d.GetLimiter(deviceKey(r)).Allow() {
			response.TooManyRequests(w, "Too many scans from this device")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deviceKey(r *http.Request) string {
	if id := r.Header.Get(DeviceHeader); id != "" {
		return "device:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
