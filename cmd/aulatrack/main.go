package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"log/slog"

	"github.com/dfarias/aulatrack/internal/curriculum"
	"github.com/dfarias/aulatrack/internal/notify"
	"github.com/dfarias/aulatrack/internal/player"
	"github.com/dfarias/aulatrack/internal/progress"
	"github.com/dfarias/aulatrack/internal/session"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

// The harness stands in for the web shell: it runs the stub platform, loads
// the curriculum through the real REST client, and plays every activity with
// simulated media elements, logging what the session controller does.
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("(warn) Unable to load .env file, using process environment")
	}

	logLevel := slog.LevelDebug
	if levelStr, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if err := logLevel.UnmarshalText([]byte(levelStr)); err != nil {
			fmt.Println("(warn) Invalid value for LOG_LEVEL environment variable")
		}
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel,
	})))

	modules, err := loadCurriculum(os.Getenv("AULATRACK_CURRICULUM"))
	if err != nil {
		panic(err)
	}

	stub := progress.NewStubBackend(modules)
	addr, ok := os.LookupEnv("AULATRACK_STUB_ADDR")
	if !ok {
		addr = "localhost:8734"
		slog.Info("AULATRACK_STUB_ADDR not provided, using default '" + addr + "'")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		panic(err)
	}
	go func() {
		if err := http.Serve(listener, stub.Router()); err != nil {
			slog.Error("Stub platform stopped", "err", err)
		}
	}()
	slog.Info("Stub platform listening", slog.String("addr", addr))

	var mirror progress.LocalStore
	if path, ok := os.LookupEnv("AULATRACK_MIRROR_DB"); ok {
		store, err := progress.OpenSQLiteStore(path)
		if err != nil {
			panic(err)
		}
		defer store.Close()
		mirror = store
		slog.Info("Mirroring progress to sqlite", slog.String("path", path))
	} else {
		mirror = progress.NewMemoryStore()
	}

	courseID := envOr("AULATRACK_COURSE", "curso-demo")
	enrollmentID := envOr("AULATRACK_ENROLLMENT", uuid.NewString())

	backend := progress.NewRestBackend("http://"+addr, os.Getenv("AULATRACK_TOKEN"))
	store := progress.NewStore(backend, mirror)

	ctx := context.Background()
	remoteModules, remoteProgress, err := store.Curriculum(ctx, enrollmentID)
	if err != nil {
		panic(err)
	}
	items := curriculum.Flatten(remoteModules)
	if len(items) == 0 {
		panic("curriculum has no activities")
	}

	completed := progress.NewCompletionSet(mirror, courseID)
	completed.Reconcile(remoteProgress)

	rate := 60.0
	if raw, ok := os.LookupEnv("AULATRACK_RATE"); ok {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			rate = parsed
		}
	}
	rig := newSimRig(rate)

	controller := session.New(items, store, completed, rig.adapterFactory(), notify.LogNotifier{}, session.Config{
		CourseID:     courseID,
		EnrollmentID: enrollmentID,
	})
	defer controller.Dispose()

	advance := make(chan curriculum.Selection, 1)
	controller.OnAdvance = func(sel curriculum.Selection) { advance <- sel }

	sel := curriculum.InitialSelection(items, remoteProgress)
	sel = curriculum.AutoSkip(items, remoteProgress, sel)

	for {
		a := items[sel.Index]
		slog.Info("Opening activity",
			slog.Int("index", sel.Index),
			slog.String("module", a.ModuleTitle),
			slog.String("title", a.Title),
			slog.String("kind", string(a.Kind)),
		)
		controller.Select(sel.Index)

		if a.Kind == curriculum.KindVideo {
			rig.playLatest()
		}

		select {
		case sel = <-advance:
		case <-time.After(activityTimeout(a, rate)):
			if completed.Contains(a.ID) {
				slog.Info("Course finished", slog.Any("completed", completed.IDs()))
				return
			}
			slog.Warn("Activity never finished, stopping", slog.String("activity", a.ID))
			return
		}
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// activityTimeout bounds how long the harness waits for one activity: the
// simulated runtime plus slack for attach and save round trips.
func activityTimeout(a curriculum.Activity, rate float64) time.Duration {
	declared := a.DurationSeconds()
	if declared <= 0 {
		return 30 * time.Second
	}

	runtime := time.Duration(float64(declared)/rate*float64(time.Second)) + 10*time.Second
	if a.Kind != curriculum.KindVideo {
		// countdowns tick in real time
		runtime = time.Duration(declared)*time.Second + 10*time.Second
	}
	return runtime
}

// simRig owns the simulated media elements behind every provider surface the
// adapter factory needs. Each video activity gets a fresh element sized to
// its declared duration.
type simRig struct {
	rate float64

	mu           sync.Mutex
	nextDuration float64
	latest       *player.SimElement
}

func newSimRig(rate float64) *simRig {
	return &simRig{rate: rate}
}

func (r *simRig) newElement(string) *player.SimElement {
	r.mu.Lock()
	defer r.mu.Unlock()
	el := player.NewSimElement(r.nextDuration, r.rate)
	r.latest = el
	return el
}

func (r *simRig) adapterFactory() session.AdapterFactory {
	scripts := player.NewScriptCache(func(context.Context, string) (player.IFrameAPI, error) {
		return &player.SimIFrameAPI{NewElement: r.newElement}, nil
	})

	factory := &player.Factory{
		Scripts: scripts,
		SDK:     &player.SimSDKLoader{NewElement: r.newElement},
		NewElement: func(mediaURL string) player.MediaElement {
			return r.newElement(mediaURL)
		},
	}

	return func(a curriculum.Activity, hooks player.Hooks) player.Adapter {
		duration := float64(a.DurationSeconds())
		if _, err := os.Stat(a.Content); err == nil {
			// local media file: use its real length instead of the declared one
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			probed, err := player.ProbeDuration(ctx, a.Content)
			cancel()
			if err != nil {
				slog.Warn("Unable to probe media duration", "path", a.Content, "err", err)
			} else if probed > 0 {
				duration = probed
			}
		}

		r.mu.Lock()
		r.nextDuration = duration
		r.mu.Unlock()
		return factory.New(a.Content, hooks)
	}
}

// playLatest presses play on the most recently created element, waiting out
// the asynchronous attach.
func (r *simRig) playLatest() {
	for i := 0; i < 50; i++ {
		r.mu.Lock()
		el := r.latest
		r.latest = nil
		r.mu.Unlock()

		if el != nil {
			el.Play()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	slog.Warn("No media element appeared to play")
}

type fileModule struct {
	ID         string         `json:"id"`
	Title      string         `json:"titulo"`
	Activities []fileActivity `json:"atividades"`
}

type fileActivity struct {
	ID           string  `json:"id"`
	Title        string  `json:"titulo"`
	Kind         string  `json:"tipo"`
	Content      string  `json:"conteudo"`
	Duration     float64 `json:"duracao"`
	DurationUnit string  `json:"unidade_duracao"`
}

func loadCurriculum(path string) ([]curriculum.Module, error) {
	if path == "" {
		return sampleCurriculum(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fileModules []fileModule
	if err := json.Unmarshal(data, &fileModules); err != nil {
		return nil, fmt.Errorf("unable to parse curriculum file %s: %w", path, err)
	}

	modules := make([]curriculum.Module, 0, len(fileModules))
	for _, fm := range fileModules {
		m := curriculum.Module{ID: fm.ID, Title: fm.Title}
		for _, fa := range fm.Activities {
			m.Activities = append(m.Activities, curriculum.Activity{
				ID:            fa.ID,
				Title:         fa.Title,
				Kind:          contentKind(fa.Kind),
				Content:       fa.Content,
				DurationValue: fa.Duration,
				DurationUnit:  fa.DurationUnit,
			})
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func contentKind(kind string) curriculum.ContentKind {
	switch kind {
	case "document", "documento":
		return curriculum.KindDocument
	case "link":
		return curriculum.KindLink
	case "text", "texto":
		return curriculum.KindText
	}
	return curriculum.KindVideo
}

func sampleCurriculum() []curriculum.Module {
	return []curriculum.Module{
		{
			ID:    "mod-boas-vindas",
			Title: "Boas-vindas",
			Activities: []curriculum.Activity{
				{ID: "bv-1", Title: "Apresentação do curso", Kind: curriculum.KindVideo, Content: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", DurationValue: 3, DurationUnit: "min"},
				{ID: "bv-2", Title: "Como usar a plataforma", Kind: curriculum.KindText, Content: "<p>Leia com atenção.</p>", DurationValue: 15, DurationUnit: "seg"},
			},
		},
		{
			ID:    "mod-fundamentos",
			Title: "Fundamentos",
			Activities: []curriculum.Activity{
				{ID: "fd-1", Title: "Aula 1", Kind: curriculum.KindVideo, Content: "https://vimeo.com/76979871", DurationValue: 5, DurationUnit: "min"},
				{ID: "fd-2", Title: "Apostila", Kind: curriculum.KindDocument, Content: "https://example.com/apostila.pdf", DurationValue: 20, DurationUnit: "seg"},
				{ID: "fd-3", Title: "Aula 2", Kind: curriculum.KindVideo, Content: "https://cdn.example.com/aula2.mp4", DurationValue: 4, DurationUnit: "min"},
			},
		},
	}
}
