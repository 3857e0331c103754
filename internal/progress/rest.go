package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dfarias/aulatrack/internal/curriculum"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RestBackend talks to the course platform's progress endpoints.
type RestBackend struct {
	client *resty.Client
}

func NewRestBackend(baseURL string, authToken string) *RestBackend {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)

	if authToken != "" {
		warnIfExpiring(authToken)
		client.SetAuthToken(authToken)
	}

	return &RestBackend{client: client}
}

// warnIfExpiring decodes the bearer token without verifying it, purely to
// log early when the session is about to go stale. Verification belongs to
// the platform, not this client.
func warnIfExpiring(token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		slog.Debug("Unable to decode auth token", "err", err)
		return
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}

	if until := time.Until(exp.Time); until < time.Hour {
		slog.Warn("Auth token close to expiry", "expiresIn", until)
	}
}

type positionResponse struct {
	Seconds float64 `json:"seconds"`
	Exists  bool    `json:"exists"`
}

type savePositionRequest struct {
	CourseID     string `json:"course_id"`
	ModuleID     string `json:"module_id"`
	ActivityID   string `json:"activity_id"`
	Seconds      int    `json:"seconds"`
	EnrollmentID string `json:"id_matricula,omitempty"`
}

type toggleCompletionRequest struct {
	CourseID     string `json:"course_id"`
	ModuleID     string `json:"module_id"`
	ActivityID   string `json:"activity_id"`
	Completed    bool   `json:"completed"`
	Seconds      int    `json:"seconds"`
	EnrollmentID string `json:"id_matricula,omitempty"`
}

type curriculumResponse struct {
	Curriculum []wireModule `json:"curriculum"`
}

type wireModule struct {
	ID           string         `json:"id"`
	Title        string         `json:"titulo"`
	Duration     float64        `json:"duracao"`
	DurationUnit string         `json:"unidade_duracao"`
	Activities   []wireActivity `json:"atividades"`
}

type wireActivity struct {
	ID           string  `json:"id"`
	Title        string  `json:"titulo"`
	Kind         string  `json:"tipo"`
	Content      string  `json:"conteudo"`
	Duration     float64 `json:"duracao"`
	DurationUnit string  `json:"unidade_duracao"`
	Seconds      float64 `json:"seconds"`
	Completed    bool    `json:"completed"`
	UpdatedAt    string  `json:"updated_at"`
}

func (b *RestBackend) Position(ctx context.Context, courseID, activityID, enrollmentID string) (Position, error) {
	var out positionResponse
	req := b.client.R().
		SetContext(ctx).
		SetQueryParam("course_id", courseID).
		SetQueryParam("activity_id", activityID).
		SetResult(&out)
	if enrollmentID != "" {
		req.SetQueryParam("id_matricula", enrollmentID)
	}

	resp, err := req.Get("/progress/position")
	if err != nil {
		return Position{}, err
	}
	if resp.IsError() {
		return Position{}, fmt.Errorf("position lookup failed: %s", resp.Status())
	}

	return Position{Seconds: int(out.Seconds), Exists: out.Exists}, nil
}

func (b *RestBackend) SavePosition(ctx context.Context, courseID, moduleID, activityID string, seconds int, enrollmentID string) error {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(savePositionRequest{
			CourseID:     courseID,
			ModuleID:     moduleID,
			ActivityID:   activityID,
			Seconds:      seconds,
			EnrollmentID: enrollmentID,
		}).
		Post("/progress/position")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("position save failed: %s", resp.Status())
	}

	return nil
}

func (b *RestBackend) ToggleCompletion(ctx context.Context, courseID, moduleID, activityID string, completed bool, seconds int, enrollmentID string) error {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(toggleCompletionRequest{
			CourseID:     courseID,
			ModuleID:     moduleID,
			ActivityID:   activityID,
			Completed:    completed,
			Seconds:      seconds,
			EnrollmentID: enrollmentID,
		}).
		Post("/progress/completion")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("completion toggle failed: %s", resp.Status())
	}

	return nil
}

func (b *RestBackend) Curriculum(ctx context.Context, enrollmentID string) ([]curriculum.Module, map[string]curriculum.Progress, error) {
	var out curriculumResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/enrollments/" + enrollmentID + "/curriculum")
	if err != nil {
		return nil, nil, err
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("curriculum fetch failed: %s", resp.Status())
	}

	modules := make([]curriculum.Module, 0, len(out.Curriculum))
	progress := make(map[string]curriculum.Progress)
	for mi, wm := range out.Curriculum {
		m := curriculum.Module{
			ID:            wm.ID,
			Title:         wm.Title,
			DurationValue: wm.Duration,
			DurationUnit:  wm.DurationUnit,
		}

		for ai, wa := range wm.Activities {
			activity := curriculum.Activity{
				ID:            wa.ID,
				Title:         wa.Title,
				Kind:          parseKind(wa.Kind),
				Content:       wa.Content,
				DurationValue: wa.Duration,
				DurationUnit:  wa.DurationUnit,
			}
			if activity.ID == "" {
				activity.ID = fmt.Sprintf("%d-%d", mi, ai)
			}
			m.Activities = append(m.Activities, activity)

			if wa.Seconds > 0 || wa.Completed {
				progress[activity.ID] = curriculum.Progress{
					Seconds:   int(wa.Seconds),
					Completed: wa.Completed,
				}
			}
		}

		modules = append(modules, m)
	}

	return modules, progress, nil
}

func parseKind(kind string) curriculum.ContentKind {
	switch curriculum.ContentKind(kind) {
	case curriculum.KindVideo, curriculum.KindDocument, curriculum.KindLink, curriculum.KindText:
		return curriculum.ContentKind(kind)
	}

	// legacy records use Portuguese labels
	switch kind {
	case "documento":
		return curriculum.KindDocument
	case "texto":
		return curriculum.KindText
	}

	return curriculum.KindVideo
}
