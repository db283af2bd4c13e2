package log

import (
	"encoding/json"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LocalsSubject is the Fiber locals key holding the authenticated admin subject.
const LocalsSubject = "admin_sub"

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var minLevel atomic.Int32

func init() { minLevel.Store(int32(LevelInfo)) }

// ParseLevel maps debug|info|warn|error; ok is false for anything else.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// SetLevel drops entries below l. Audit entries are always written.
func SetLevel(l Level) { minLevel.Store(int32(l)) }

type entry struct {
	TS      string         `json:"ts"`
	Level   string         `json:"level"`
	ReqID   string         `json:"req_id,omitempty"`
	IP      string         `json:"ip,omitempty"`
	Method  string         `json:"method,omitempty"`
	Path    string         `json:"path,omitempty"`
	Subject string         `json:"subject,omitempty"`
	Action  string         `json:"action,omitempty"`
	Status  int            `json:"status,omitempty"`
	Err     string         `json:"err,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func write(lvl Level, name string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	if name != "audit" && lvl < Level(minLevel.Load()) {
		return
	}
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: name, Action: action, Fields: fields}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e.ReqID = rid
		}
		if sub, ok := c.Locals(LocalsSubject).(string); ok {
			e.Subject = sub
		}
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Debug(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelDebug, "debug", c, action, nil, fields)
}
func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelInfo, "info", c, action, nil, fields)
}
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelInfo, "audit", c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelWarn, "warn", c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(LevelError, "error", c, action, err, fields)
}
