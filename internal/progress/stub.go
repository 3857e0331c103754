package progress

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dfarias/aulatrack/internal/curriculum"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StubBackend is an in-memory implementation of the platform's progress
// endpoints. The dev harness mounts it in place of the real course platform
// and the RestBackend tests run against it; it is not a production server.
type StubBackend struct {
	mu        sync.Mutex
	positions map[string]int
	completed map[string]completionRecord
	modules   []wireModule
}

type completionRecord struct {
	completed bool
	seconds   int
	updatedAt time.Time
}

func NewStubBackend(modules []curriculum.Module) *StubBackend {
	s := &StubBackend{
		positions: make(map[string]int),
		completed: make(map[string]completionRecord),
	}

	for _, m := range modules {
		wm := wireModule{
			ID:           m.ID,
			Title:        m.Title,
			Duration:     m.DurationValue,
			DurationUnit: m.DurationUnit,
		}
		if wm.ID == "" {
			wm.ID = uuid.NewString()
		}

		for _, a := range m.Activities {
			wa := wireActivity{
				ID:           a.ID,
				Title:        a.Title,
				Kind:         string(a.Kind),
				Content:      a.Content,
				Duration:     a.DurationValue,
				DurationUnit: a.DurationUnit,
			}
			if wa.ID == "" {
				wa.ID = uuid.NewString()
			}
			wm.Activities = append(wm.Activities, wa)
		}

		s.modules = append(s.modules, wm)
	}

	return s
}

func (s *StubBackend) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("Stub backend request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"time", time.Since(start),
		)
	})

	router.GET("/progress/position", s.getPosition)
	router.POST("/progress/position", s.savePosition)
	router.POST("/progress/completion", s.toggleCompletion)
	router.GET("/enrollments/:id/curriculum", s.getCurriculum)
	return router
}

func positionKey(courseID, activityID string) string {
	return courseID + "|" + activityID
}

func (s *StubBackend) getPosition(c *gin.Context) {
	courseID := c.Query("course_id")
	activityID := c.Query("activity_id")
	if courseID == "" || activityID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	seconds, ok := s.positions[positionKey(courseID, activityID)]
	s.mu.Unlock()

	c.JSON(http.StatusOK, positionResponse{Seconds: float64(seconds), Exists: ok})
}

func (s *StubBackend) savePosition(c *gin.Context) {
	var req savePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CourseID == "" || req.ActivityID == "" || req.Seconds < 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	key := positionKey(req.CourseID, req.ActivityID)
	if req.Seconds > s.positions[key] {
		s.positions[key] = req.Seconds
	}
	s.mu.Unlock()

	c.Status(http.StatusNoContent)
}

func (s *StubBackend) toggleCompletion(c *gin.Context) {
	var req toggleCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CourseID == "" || req.ActivityID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.completed[positionKey(req.CourseID, req.ActivityID)] = completionRecord{
		completed: req.Completed,
		seconds:   req.Seconds,
		updatedAt: time.Now(),
	}
	s.mu.Unlock()

	c.Status(http.StatusNoContent)
}

func (s *StubBackend) getCurriculum(c *gin.Context) {
	// the stub keys progress by activity id alone, so any course id works
	s.mu.Lock()
	out := curriculumResponse{Curriculum: make([]wireModule, len(s.modules))}
	for mi, m := range s.modules {
		wm := m
		wm.Activities = make([]wireActivity, len(m.Activities))
		for ai, a := range m.Activities {
			for key, seconds := range s.positions {
				if strings.HasSuffix(key, "|"+a.ID) {
					a.Seconds = float64(seconds)
				}
			}
			for key, record := range s.completed {
				if strings.HasSuffix(key, "|"+a.ID) {
					a.Completed = record.completed
					a.UpdatedAt = record.updatedAt.Format(time.RFC3339)
				}
			}
			wm.Activities[ai] = a
		}
		out.Curriculum[mi] = wm
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

// CompletionState reports the stored completion record, for tests.
func (s *StubBackend) CompletionState(courseID, activityID string) (completed bool, seconds int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, found := s.completed[positionKey(courseID, activityID)]
	return record.completed, record.seconds, found
}
