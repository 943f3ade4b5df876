package conversation_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chatpress/internal/config"
	"chatpress/internal/domain/apperrors"
	"chatpress/internal/domain/conversation"
	"chatpress/internal/domain/image"
)

func testConfig() *config.Config {
	return &config.Config{
		TagCatalogue:      []string{"A", "B", "C"},
		ImageMaxBytes:     10 * 1024 * 1024,
		ImageMaxDimension: 2048,
		ImageJPEGQuality:  85,
		ImagePathRoot:     "images",
	}
}

type fakeProcessor struct {
	processed *image.Processed
	err       error
}

func (f *fakeProcessor) Process(context.Context, []byte) (*image.Processed, error) {
	return f.processed, f.err
}

type fakeDownloader struct {
	data []byte
	err  error
}

func (f *fakeDownloader) DownloadMedia(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

type fakeTempStorage struct {
	uploads map[string][]byte
}

func newFakeTempStorage() *fakeTempStorage {
	return &fakeTempStorage{uploads: make(map[string][]byte)}
}

func (f *fakeTempStorage) Upload(_ context.Context, filename string, data []byte, _ string) (string, error) {
	key := "tmp/" + filename
	f.uploads[key] = data
	return key, nil
}

func (f *fakeTempStorage) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := f.uploads[key]
	if !ok {
		return nil, fmt.Errorf("no object %s", key)
	}
	return data, nil
}

func (f *fakeTempStorage) Cleanup(_ context.Context, key string) error {
	delete(f.uploads, key)
	return nil
}

func makeJPEG(t *testing.T, width, height, quality int) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func newTestDispatcher(proc conversation.Processor, dl conversation.MediaDownloader) *conversation.Dispatcher {
	return conversation.NewDispatcher(testConfig(), proc, dl, zerolog.Nop())
}

func stateAt(step conversation.Step, data conversation.PostData) *conversation.State {
	return &conversation.State{Step: step, Data: data}
}

func filledData() conversation.PostData {
	return conversation.PostData{
		Title:     "T",
		Content:   "C",
		ImageKey:  "tmp/img.jpeg",
		ImagePath: "images/2026/08/img.jpeg",
		Tags:      []string{"A"},
	}
}

func text(s string) conversation.Inbound {
	return conversation.Inbound{Type: conversation.InboundText, Text: s}
}

func firstReply(t *testing.T, res conversation.Result) string {
	t.Helper()
	if len(res.Replies) == 0 {
		t.Fatal("expected at least one reply")
	}
	return res.Replies[0].Text
}

func TestDispatch_UnsupportedType(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})
	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepIdle, conversation.PostData{}), conversation.Inbound{Type: conversation.InboundOther})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil {
		t.Error("unsupported type must not change state")
	}
	if got := firstReply(t, res); got != conversation.MsgUnsupportedType {
		t.Errorf("reply = %q, want %q", got, conversation.MsgUnsupportedType)
	}
}

func TestDispatch_StartCommand(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})

	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepIdle, conversation.PostData{}), text("/new"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State == nil || res.State.Step != conversation.StepWaitingTitle {
		t.Fatalf("start from idle must advance to waiting_title, got %+v", res.State)
	}

	res, err = d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingContent, conversation.PostData{Title: "T"}), text("/new"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil {
		t.Error("start mid-flow must not change state")
	}
	if got := firstReply(t, res); got != conversation.MsgAlreadyWriting {
		t.Errorf("reply = %q, want %q", got, conversation.MsgAlreadyWriting)
	}
}

func TestDispatch_HelpCommand_AnyStep(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})
	for _, st := range []*conversation.State{
		stateAt(conversation.StepIdle, conversation.PostData{}),
		stateAt(conversation.StepWaitingTitle, conversation.PostData{}),
		stateAt(conversation.StepConfirming, filledData()),
	} {
		res, err := d.Dispatch(context.Background(), "u1", st, text("help"))
		if err != nil {
			t.Fatalf("unexpected error at %s: %v", st.Step, err)
		}
		if res.State != nil {
			t.Errorf("help at %s must not change state", st.Step)
		}
		if got := firstReply(t, res); got != conversation.MsgHelp {
			t.Errorf("reply at %s = %q, want help text", st.Step, got)
		}
	}
}

func TestDispatch_CancelCommand(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})

	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepIdle, conversation.PostData{}), text("cancel"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil {
		t.Error("cancel at idle must not change state")
	}
	if got := firstReply(t, res); got != conversation.MsgNothingToCancel {
		t.Errorf("reply = %q, want %q", got, conversation.MsgNothingToCancel)
	}

	res, err = d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingTags, filledData()), text("/cancel"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State == nil || res.State.Step != conversation.StepIdle {
		t.Fatal("cancel mid-flow must reset to idle")
	}
	if res.State.Data.Title != "" || len(res.State.Data.Tags) != 0 {
		t.Error("cancel must clear accumulated data")
	}
	if len(res.CleanupKeys) != 1 || res.CleanupKeys[0] != "tmp/img.jpeg" {
		t.Errorf("cancel must release the temp image, got %v", res.CleanupKeys)
	}
}

func TestDispatch_TitleBoundaries(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})

	tests := []struct {
		name      string
		input     string
		wantReply string
		advanced  bool
	}{
		{"empty rejected", "", conversation.MsgTitleEmpty, false},
		{"whitespace only rejected", "   ", conversation.MsgTitleEmpty, false},
		{"101 chars rejected", strings.Repeat("x", 101), conversation.MsgTitleTooLong, false},
		{"100 chars accepted", strings.Repeat("x", 100), conversation.MsgAskContent, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingTitle, conversation.PostData{}), text(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := firstReply(t, res); got != tt.wantReply {
				t.Errorf("reply = %q, want %q", got, tt.wantReply)
			}
			if tt.advanced {
				if res.State == nil || res.State.Step != conversation.StepWaitingContent {
					t.Fatal("valid title must advance to waiting_content")
				}
				if res.State.Data.Title != strings.TrimSpace(tt.input) {
					t.Error("title not stored")
				}
			} else if res.State != nil {
				t.Error("invalid title must not change state")
			}
		})
	}
}

func TestDispatch_ContentBoundaries(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})
	st := stateAt(conversation.StepWaitingContent, conversation.PostData{Title: "T"})

	res, err := d.Dispatch(context.Background(), "u1", st, text(strings.Repeat("x", 5001)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil || firstReply(t, res) != conversation.MsgContentTooLong {
		t.Error("5001-char content must be rejected without state change")
	}

	res, err = d.Dispatch(context.Background(), "u1", st, text(strings.Repeat("x", 5000)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State == nil || res.State.Step != conversation.StepWaitingImage {
		t.Fatal("5000-char content must advance to waiting_image")
	}
}

func TestDispatch_TextDuringImageStep(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})
	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingImage, conversation.PostData{Title: "T", Content: "C"}), text("here you go"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil || firstReply(t, res) != conversation.MsgTextDuringImage {
		t.Error("text during image step must re-prompt without state change")
	}
}

func TestDispatch_ImageOutsideImageStep(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})
	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingTitle, conversation.PostData{}), conversation.Inbound{Type: conversation.InboundImage, MediaID: "m1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil || firstReply(t, res) != conversation.MsgImageOutsideStep {
		t.Error("image outside waiting_image must be rejected without state change")
	}
}

func TestDispatch_ImageSuccess(t *testing.T) {
	proc := &fakeProcessor{processed: &image.Processed{
		StorageKey:   "tmp/x.jpeg",
		RelativePath: "images/2026/08/x.jpeg",
	}}
	d := newTestDispatcher(proc, &fakeDownloader{data: []byte("raw")})

	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingImage, conversation.PostData{Title: "T", Content: "C"}), conversation.Inbound{Type: conversation.InboundImage, MediaID: "m1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State == nil || res.State.Step != conversation.StepWaitingTags {
		t.Fatal("image success must advance to waiting_tags")
	}
	if res.State.Data.ImageKey != "tmp/x.jpeg" || res.State.Data.ImagePath != "images/2026/08/x.jpeg" {
		t.Error("image reference not stored")
	}
	if len(res.Replies) != 2 || !strings.Contains(res.Replies[1].Text, "1. A") {
		t.Errorf("image success reply must include the tag menu, got %v", res.Replies)
	}
}

func TestDispatch_ImageValidationFailureSurfacesMessage(t *testing.T) {
	proc := &fakeProcessor{err: apperrors.NewValidation(image.MsgImageTooLarge)}
	d := newTestDispatcher(proc, &fakeDownloader{data: []byte("raw")})

	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingImage, conversation.PostData{Title: "T", Content: "C"}), conversation.Inbound{Type: conversation.InboundImage, MediaID: "m1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil {
		t.Error("validation failure must not change state")
	}
	if got := firstReply(t, res); got != image.MsgImageTooLarge {
		t.Errorf("reply = %q, want the validation message", got)
	}
}

func TestDispatch_ImageProcessingFailureIsGeneric(t *testing.T) {
	proc := &fakeProcessor{err: apperrors.NewProcessing("encode", errors.New("boom"))}
	d := newTestDispatcher(proc, &fakeDownloader{data: []byte("raw")})

	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingImage, conversation.PostData{Title: "T", Content: "C"}), conversation.Inbound{Type: conversation.InboundImage, MediaID: "m1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil || firstReply(t, res) != conversation.MsgImageFailed {
		t.Error("processing failure must yield the generic image reply without state change")
	}
}

func TestDispatch_TagSelection(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})
	data := conversation.PostData{Title: "T", Content: "C", ImageKey: "tmp/x.jpeg", ImagePath: "images/2026/08/x.jpeg"}

	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingTags, data), text("nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil {
		t.Error("empty tag selection must not change state")
	}
	if len(res.Replies) != 2 || !strings.Contains(res.Replies[1].Text, "2. B") {
		t.Error("empty selection must re-display the tag menu")
	}

	res, err = d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingTags, data), text("1,2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State == nil || res.State.Step != conversation.StepConfirming {
		t.Fatal("tag selection must advance to confirming")
	}
	confirm := firstReply(t, res)
	if !strings.Contains(confirm, "Title: T") || !strings.Contains(confirm, "Tags: A, B") {
		t.Errorf("confirmation screen incomplete: %q", confirm)
	}
}

func TestDispatch_ConfirmationScreenTruncatesContent(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})
	data := conversation.PostData{
		Title:    "T",
		Content:  strings.Repeat("y", 150),
		ImageKey: "tmp/x.jpeg",
	}
	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepWaitingTags, data), text("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	confirm := firstReply(t, res)
	if strings.Contains(confirm, strings.Repeat("y", 101)) {
		t.Error("content preview must be truncated to 100 characters")
	}
	if !strings.Contains(confirm, strings.Repeat("y", 100)+"…") {
		t.Error("truncated preview must end with an ellipsis")
	}
}

func TestDispatch_Confirmation(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})

	res, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepConfirming, filledData()), text("yes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State == nil || res.State.Step != conversation.StepIdle {
		t.Fatal("affirmative confirmation must reset to idle")
	}
	if res.Post == nil || res.Post.Title != "T" || len(res.Post.Tags) != 1 {
		t.Fatalf("affirmative confirmation must hand off the post, got %+v", res.Post)
	}
	if len(res.CleanupKeys) != 0 {
		t.Error("published post must keep its temp image for the downstream commit")
	}

	res, err = d.Dispatch(context.Background(), "u1", stateAt(conversation.StepConfirming, filledData()), text("no"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State == nil || res.State.Step != conversation.StepIdle || res.Post != nil {
		t.Fatal("negative confirmation must reset to idle without a post")
	}
	if len(res.CleanupKeys) != 1 {
		t.Error("negative confirmation must release the temp image")
	}

	res, err = d.Dispatch(context.Background(), "u1", stateAt(conversation.StepConfirming, filledData()), text("maybe"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != nil || firstReply(t, res) != conversation.MsgConfirmRetry {
		t.Error("ambiguous confirmation must re-prompt without state change")
	}
}

func TestDispatch_BrokenInvariantIsInternalFault(t *testing.T) {
	d := newTestDispatcher(&fakeProcessor{}, &fakeDownloader{})
	// A confirming state with no title can only exist through an invalid
	// transition; it must surface as a fault, not a user reply.
	_, err := d.Dispatch(context.Background(), "u1", stateAt(conversation.StepConfirming, conversation.PostData{Content: "C"}), text("yes"))
	if err == nil {
		t.Fatal("expected an internal fault")
	}
	var te *apperrors.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %T", err)
	}
}

// TestDispatch_EndToEnd drives the full flow through the real image pipeline:
// start, title, content, an oversized image that must be resized, tags, and
// an affirmative confirmation, ending back at idle after exactly six state
// changes.
func TestDispatch_EndToEnd(t *testing.T) {
	store := newFakeTempStorage()
	cfg := testConfig()
	pipeline := image.NewPipeline(cfg, store, zerolog.Nop())
	raw := makeJPEG(t, 3000, 2500, 100)
	d := conversation.NewDispatcher(cfg, pipeline, &fakeDownloader{data: raw}, zerolog.Nop())

	st := conversation.NewState(time.Now())
	inputs := []conversation.Inbound{
		text("/new"),
		text("T"),
		text("C"),
		{Type: conversation.InboundImage, MediaID: "m1"},
		text("1,2"),
		text("yes"),
	}

	var stateChanges int
	var imageKey string
	for i, in := range inputs {
		res, err := d.Dispatch(context.Background(), "u1", st, in)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if res.State == nil {
			t.Fatalf("step %d: expected a state change", i)
		}
		stateChanges++
		st = res.State
		if st.Data.ImageKey != "" {
			imageKey = st.Data.ImageKey
		}
	}

	if stateChanges != 6 {
		t.Errorf("state changes = %d, want 6", stateChanges)
	}
	if st.Step != conversation.StepIdle {
		t.Errorf("final step = %s, want idle", st.Step)
	}

	stored, err := store.Download(context.Background(), imageKey)
	if err != nil {
		t.Fatalf("stored image missing: %v", err)
	}
	cfgImg, _, err := stdimage.DecodeConfig(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("decode stored image: %v", err)
	}
	if cfgImg.Width > 2048 || cfgImg.Height > 2048 {
		t.Errorf("stored image %dx%d exceeds 2048", cfgImg.Width, cfgImg.Height)
	}
	if len(stored) > len(raw) {
		t.Error("re-encoded image must not be larger than the original")
	}
}
