package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"soundboard/internal/testutil"
	"soundboard/pkg/domain"
	"soundboard/pkg/speech"
	"soundboard/pkg/storage"
	"soundboard/pkg/store"
)

type fakeSynth struct {
	calls atomic.Int32
	audio []byte
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, fmt.Errorf("%w: %w", speech.ErrSynthesis, f.err)
	}
	if f.audio != nil {
		return f.audio, nil
	}
	return []byte("ID3" + text), nil
}

// recordingObjects wraps MemoryStore, counting calls and failing checks on chosen keys.
type recordingObjects struct {
	*storage.MemoryStore
	mu         sync.Mutex
	puts       int
	deletes    []string
	failExists map[string]bool
	failPut    bool
	failDelete bool
}

func newRecordingObjects() *recordingObjects {
	return &recordingObjects{MemoryStore: storage.NewMemoryStore("https://blobs.example.com/sounds"), failExists: map[string]bool{}}
}

func (r *recordingObjects) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	r.mu.Lock()
	r.puts++
	fail := r.failPut
	r.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: upload refused", storage.ErrStorage)
	}
	return r.MemoryStore.Put(ctx, key, body, size, contentType)
}

func (r *recordingObjects) Exists(ctx context.Context, key string) (storage.Presence, error) {
	r.mu.Lock()
	fail := r.failExists[key]
	r.mu.Unlock()
	if fail {
		return storage.PresenceUnknown, fmt.Errorf("%w: stat timed out", storage.ErrStorage)
	}
	return r.MemoryStore.Exists(ctx, key)
}

func (r *recordingObjects) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	r.deletes = append(r.deletes, key)
	fail := r.failDelete
	r.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: delete refused", storage.ErrStorage)
	}
	return r.MemoryStore.Delete(ctx, key)
}

type failingSaveStore struct {
	store.Store
}

func (failingSaveStore) SaveSoundboard(domain.Soundboard) error {
	return errors.New("connection reset")
}

type harness struct {
	app     *App
	store   *store.GormStore
	objects *recordingObjects
	synth   *fakeSynth
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   testutil.NewSQLiteStore(t),
		objects: newRecordingObjects(),
		synth:   &fakeSynth{},
	}
	a, err := New(Config{Store: h.store, Objects: h.objects, Speech: h.synth})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	h.app = a
	return h
}

func TestNewRequiresClients(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without store")
	}
	st := testutil.NewSQLiteStore(t)
	if _, err := New(Config{Store: st}); err == nil {
		t.Fatalf("expected error without object store")
	}
	if _, err := New(Config{Store: st, Objects: storage.NewMemoryStore("")}); err == nil {
		t.Fatalf("expected error without synthesizer")
	}
}

func TestCreateSoundboardValidation(t *testing.T) {
	h := newHarness(t)
	cases := [][3]string{
		{"", "hello", "a@b.c"},
		{"t", "  ", "a@b.c"},
		{"t", "hello", ""},
	}
	for _, c := range cases {
		_, err := h.app.CreateSoundboard(context.Background(), c[0], c[1], c[2])
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("CreateSoundboard(%q) err = %v, want ErrInvalidInput", c, err)
		}
	}
	if n := h.synth.calls.Load(); n != 0 {
		t.Fatalf("synthesizer called %d times on invalid input", n)
	}
	if h.objects.puts != 0 {
		t.Fatalf("object store called %d times on invalid input", h.objects.puts)
	}
}

func TestCreateSoundboard(t *testing.T) {
	h := newHarness(t)
	sb, err := h.app.CreateSoundboard(context.Background(), " Greeting ", "hello world", "owner@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sb.Title != "Greeting" || sb.CreatedByEmail != "owner@example.com" {
		t.Fatalf("unexpected soundboard: %+v", sb)
	}
	if !strings.HasSuffix(sb.FileName, ".mp3") {
		t.Fatalf("file name %q should end in .mp3", sb.FileName)
	}
	if path.Base(sb.AudioURL) != sb.FileName {
		t.Fatalf("audio url %q does not end in file name %q", sb.AudioURL, sb.FileName)
	}
	data, contentType, ok := h.objects.Object(sb.FileName)
	if !ok || contentType != "audio/mpeg" || string(data) != "ID3hello world" {
		t.Fatalf("unexpected blob: ok=%v type=%q data=%q", ok, contentType, data)
	}
	stored, ok, err := h.store.GetSoundboard(sb.ID)
	if err != nil || !ok || stored.FileName != sb.FileName {
		t.Fatalf("stored soundboard = %+v, %v, %v", stored, ok, err)
	}
}

func TestCreateSoundboardFailures(t *testing.T) {
	t.Run("synthesis", func(t *testing.T) {
		h := newHarness(t)
		h.synth.err = errors.New("quota exceeded")
		_, err := h.app.CreateSoundboard(context.Background(), "t", "x", "a@b.c")
		if !errors.Is(err, ErrCreateSoundboard) || !errors.Is(err, speech.ErrSynthesis) {
			t.Fatalf("err = %v", err)
		}
		if h.objects.puts != 0 {
			t.Fatalf("upload attempted after synthesis failure")
		}
	})
	t.Run("upload", func(t *testing.T) {
		h := newHarness(t)
		h.objects.failPut = true
		_, err := h.app.CreateSoundboard(context.Background(), "t", "x", "a@b.c")
		if !errors.Is(err, ErrCreateSoundboard) || !errors.Is(err, storage.ErrStorage) {
			t.Fatalf("err = %v", err)
		}
		if rows, _ := h.store.ListSoundboardsByOwner("a@b.c"); len(rows) != 0 {
			t.Fatalf("row persisted after upload failure")
		}
	})
	t.Run("persist leaves blob", func(t *testing.T) {
		h := newHarness(t)
		a, err := New(Config{Store: failingSaveStore{h.store}, Objects: h.objects, Speech: h.synth})
		if err != nil {
			t.Fatalf("new app: %v", err)
		}
		_, err = a.CreateSoundboard(context.Background(), "t", "x", "a@b.c")
		if !errors.Is(err, ErrCreateSoundboard) || !errors.Is(err, ErrPersistence) {
			t.Fatalf("err = %v", err)
		}
		if h.objects.Len() != 1 {
			t.Fatalf("expected the orphaned blob to remain, have %d objects", h.objects.Len())
		}
	})
}

func TestListSoundboards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.app.ListSoundboards(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty owner err = %v, want ErrNotFound", err)
	}

	var created []domain.Soundboard
	for i := 0; i < 12; i++ {
		sb, err := h.app.CreateSoundboard(ctx, fmt.Sprintf("t%d", i), "text", "owner@example.com")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		created = append(created, sb)
	}
	if _, err := h.app.CreateSoundboard(ctx, "other", "text", "other@example.com"); err != nil {
		t.Fatalf("create other: %v", err)
	}

	// one confirmed missing, one whose check errors
	if err := h.objects.MemoryStore.Delete(ctx, created[0].FileName); err != nil {
		t.Fatalf("delete blob: %v", err)
	}
	h.objects.failExists[created[1].FileName] = true

	views, err := h.app.ListSoundboards(ctx, "owner@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != len(created) {
		t.Fatalf("got %d views, want %d", len(views), len(created))
	}
	if views[0].ID != created[len(created)-1].ID {
		t.Fatalf("expected newest first")
	}
	for _, v := range views {
		switch v.ID {
		case created[0].ID:
			if v.FileExists || v.FileStatus != domain.FileAbsent {
				t.Fatalf("deleted blob view = %+v", v)
			}
		case created[1].ID:
			if v.FileExists || v.FileStatus != domain.FileUnknown {
				t.Fatalf("failed check view = %+v", v)
			}
		default:
			if !v.FileExists || v.FileStatus != domain.FilePresent {
				t.Fatalf("present blob view = %+v", v)
			}
		}
	}
}

func TestDeleteSoundboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.app.DeleteSoundboard(ctx, "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(h.objects.deletes) != 0 {
		t.Fatalf("blob delete attempted for missing soundboard")
	}

	sb, err := h.app.CreateSoundboard(ctx, "t", "x", "a@b.c")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	h.objects.failDelete = true
	if err := h.app.DeleteSoundboard(ctx, sb.ID); err != nil {
		t.Fatalf("delete should succeed despite blob failure: %v", err)
	}
	if _, ok, _ := h.store.GetSoundboard(sb.ID); ok {
		t.Fatalf("row should be removed")
	}
	if len(h.objects.deletes) != 1 || h.objects.deletes[0] != sb.FileName {
		t.Fatalf("deletes = %v", h.objects.deletes)
	}
}

func TestHistoryLifecycle(t *testing.T) {
	h := newHarness(t)
	const email = "chat@example.com"

	if _, err := h.app.AppendMessage(email, "hi", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("append without history err = %v", err)
	}
	if msgs, _ := h.store.ListMessages(email); len(msgs) != 0 {
		t.Fatalf("message persisted without history")
	}
	if _, err := h.app.CreateHistory(email, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing title err = %v", err)
	}
	if _, err := h.app.CreateHistory(email, "Chat"); err != nil {
		t.Fatalf("create history: %v", err)
	}
	if _, err := h.app.CreateHistory(email, "Again"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate err = %v, want ErrAlreadyExists", err)
	}
	if _, err := h.app.AppendMessage(email, "", true); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty message err = %v", err)
	}
	if _, err := h.app.AppendMessage(email, "first", false); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := h.app.AppendMessage(email, "second", true); err != nil {
		t.Fatalf("append: %v", err)
	}

	conv, err := h.app.GetHistory(email)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if conv.History.Title != "Chat" {
		t.Fatalf("title = %q, only the first create should persist", conv.History.Title)
	}
	if len(conv.Messages) != 2 || conv.Messages[0].Message != "first" || !conv.Messages[1].IsSpeechToText {
		t.Fatalf("messages = %+v", conv.Messages)
	}

	if err := h.app.DeleteHistory(email); err != nil {
		t.Fatalf("delete history: %v", err)
	}
	if _, err := h.app.GetHistory(email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
	if err := h.app.DeleteHistory(email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestProfileLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	const email = "me@example.com"

	if _, err := h.app.GetProfile(email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing err = %v", err)
	}
	if _, err := h.app.CreateProfile("", email); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing name err = %v", err)
	}
	if _, err := h.app.CreateProfile("Me", email); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.app.CreateProfile("Me Again", email); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate err = %v", err)
	}

	p, err := h.app.UpdateProfile(ctx, email, "Renamed", nil)
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if p.Name != "Renamed" || p.ProfilePictureURL != "" {
		t.Fatalf("profile = %+v", p)
	}

	p, err = h.app.UpdateProfile(ctx, email, "Renamed", &ProfileImage{
		Filename: "my photo (1).PNG",
		Size:     4,
		Body:     strings.NewReader("\x89PNG"),
	})
	if err != nil {
		t.Fatalf("update image: %v", err)
	}
	if !strings.HasPrefix(p.ProfilePictureURL, "https://blobs.example.com/sounds/profiles/") ||
		!strings.HasSuffix(p.ProfilePictureURL, "-my_photo_1_.PNG") {
		t.Fatalf("picture url = %q", p.ProfilePictureURL)
	}
	key := strings.TrimPrefix(p.ProfilePictureURL, "https://blobs.example.com/sounds/")
	if _, ct, ok := h.objects.Object(key); !ok || ct != "image/png" {
		t.Fatalf("uploaded image ok=%v type=%q", ok, ct)
	}

	// name-only update keeps the picture
	p, err = h.app.UpdateProfile(ctx, email, "Final", nil)
	if err != nil || p.ProfilePictureURL == "" {
		t.Fatalf("picture dropped on name update: %+v, %v", p, err)
	}
}

func TestUpdateProfileMissingRemovesUpload(t *testing.T) {
	h := newHarness(t)
	_, err := h.app.UpdateProfile(context.Background(), "ghost@example.com", "Ghost", &ProfileImage{
		Filename: "g.jpg",
		Body:     strings.NewReader("jpg"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if h.objects.Len() != 0 {
		t.Fatalf("uploaded image should be removed, have %d objects", h.objects.Len())
	}
}

func TestSubmitFeedback(t *testing.T) {
	h := newHarness(t)
	for _, rating := range []int{0, 5, -1} {
		if _, err := h.app.SubmitFeedback("ok", rating); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("rating %d err = %v", rating, err)
		}
	}
	if _, err := h.app.SubmitFeedback(" ", 3); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty comment err = %v", err)
	}
	var lastID uint
	for rating := 1; rating <= 4; rating++ {
		f, err := h.app.SubmitFeedback("nice", rating)
		if err != nil {
			t.Fatalf("rating %d: %v", rating, err)
		}
		if f.ID <= lastID || f.Rating != rating {
			t.Fatalf("feedback = %+v", f)
		}
		lastID = f.ID
	}
}

func TestReports(t *testing.T) {
	h := newHarness(t)
	if _, err := h.app.CreateReport(""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty comment err = %v", err)
	}
	for i := 0; i < 25; i++ {
		if _, err := h.app.CreateReport(fmt.Sprintf("report %02d", i)); err != nil {
			t.Fatalf("create report: %v", err)
		}
	}

	page, err := h.app.ListReports(0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Reports) != 10 || page.Pagination.TotalPages != 3 || page.Pagination.Total != 25 || page.Pagination.Page != 1 {
		t.Fatalf("page 1 = %d rows, %+v", len(page.Reports), page.Pagination)
	}
	if page.Reports[0].Comment != "report 24" {
		t.Fatalf("expected newest first, got %q", page.Reports[0].Comment)
	}

	page, err = h.app.ListReports(3, 10)
	if err != nil || len(page.Reports) != 5 {
		t.Fatalf("page 3 = %d rows, %v", len(page.Reports), err)
	}

	page, err = h.app.ListReports(1, 500)
	if err != nil || page.Pagination.Limit != 100 || page.Pagination.TotalPages != 1 {
		t.Fatalf("capped page = %+v, %v", page.Pagination, err)
	}

	if _, err := h.app.ListReports(-1, 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative page err = %v", err)
	}
}

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) GenerateText(_ context.Context, _, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text + prompt, nil
}

func TestGenerate(t *testing.T) {
	h := newHarness(t)
	if _, err := h.app.Generate(context.Background(), "hi"); !errors.Is(err, ErrFeatureDisabled) {
		t.Fatalf("disabled err = %v", err)
	}

	h.app.generator = fakeGenerator{text: "echo: "}
	if _, err := h.app.Generate(context.Background(), " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty prompt err = %v", err)
	}
	got, err := h.app.Generate(context.Background(), "hi")
	if err != nil || got != "echo: hi" {
		t.Fatalf("generate = %q, %v", got, err)
	}

	h.app.generator = fakeGenerator{err: errors.New("upstream 500")}
	if _, err := h.app.Generate(context.Background(), "hi"); !errors.Is(err, ErrGeneration) {
		t.Fatalf("upstream err = %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"photo.png":        "photo.png",
		"  my photo.jpg ":  "my_photo.jpg",
		"../../etc/passwd": ".._.._etc_passwd",
		"тест.png":         ".png",
		"???":              "",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
